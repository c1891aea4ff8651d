// Package grpcutil holds the pieces shared by the gRPC services: struct
// message accessors, domain error mapping and the logging interceptor.
package grpcutil

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Domenick1991/airops/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Int reads a required whole-number field.
func Int(msg *structpb.Struct, name string) (int, error) {
	value, ok := msg.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	number, ok := value.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	if number.NumberValue != math.Trunc(number.NumberValue) || math.Abs(number.NumberValue) > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number", name)
	}
	return int(number.NumberValue), nil
}

// String reads a required string field.
func String(msg *structpb.Struct, name string) (string, error) {
	value, ok := msg.GetFields()[name]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	text, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
	return text.StringValue, nil
}

// Struct builds a response message. Callers only pass JSON-like values.
func Struct(fields map[string]any) (*structpb.Struct, error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return msg, nil
}

// Error converts a domain error into a gRPC status. Internal failures keep
// their detail out of the response.
func Error(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	switch {
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidStatus):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrIllegalTransition), errors.Is(err, domain.ErrConstraintViolation):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrDuplicateReservationNumber), errors.Is(err, domain.ErrDuplicateReservation):
		code = codes.AlreadyExists
	case errors.Is(err, domain.ErrConflict):
		code = codes.Aborted
	case errors.Is(err, domain.ErrCapacityExceeded):
		code = codes.ResourceExhausted
	}
	if code == codes.Internal {
		return &internalError{cause: err}
	}
	return status.Error(code, err.Error())
}

// internalError reaches clients as a bare Internal status and keeps the cause
// for UnaryLogger.
type internalError struct {
	cause error
}

func (e *internalError) Error() string { return "internal error" }

func (e *internalError) Unwrap() error { return e.cause }

func (e *internalError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, "internal error")
}

// UnaryLogger logs every call with its resulting code.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		}
		if status.Code(err) == codes.Internal {
			fields = append(fields, zap.Error(err))
			var internal *internalError
			if errors.As(err, &internal) {
				fields = append(fields, zap.NamedError("cause", internal.cause))
			}
			logger.Error("grpc request", fields...)
		} else {
			logger.Info("grpc request", fields...)
		}
		return resp, err
	}
}
