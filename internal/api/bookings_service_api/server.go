package bookings_service_api

import (
	"context"
	"time"

	"github.com/Domenick1991/airops/internal/api/grpcutil"
	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/service/booking"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName    = "airops.v1.BookingService"
	bookMethodName = "/" + ServiceName + "/Book"
)

// BookingServiceServer is the server side of airops.v1.BookingService.
// Messages are google.protobuf.Struct with the same field names as the
// HTTP API.
type BookingServiceServer interface {
	Book(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Book", Handler: bookHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "airops/v1/booking.proto",
}

func RegisterBookingServiceServer(registrar grpc.ServiceRegistrar, srv BookingServiceServer) {
	registrar.RegisterService(&BookingServiceDesc, srv)
}

func bookHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingServiceServer).Book(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: bookMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BookingServiceServer).Book(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls airops.v1.BookingService over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Book(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, bookMethodName, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Server adapts the booking coordinator to the gRPC service.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

func (s *Server) Book(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := decodeBookRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := s.bookings.Book(ctx, in)
	if err != nil {
		return nil, grpcutil.Error(err)
	}
	return toPBBooking(result)
}

func decodeBookRequest(req *structpb.Struct) (booking.Request, error) {
	customerID, err := grpcutil.Int(req, "customer_id")
	if err != nil {
		return booking.Request{}, err
	}
	flightNumber, err := grpcutil.Int(req, "flight_number")
	if err != nil {
		return booking.Request{}, err
	}
	number, err := grpcutil.Int(req, "reservation_number")
	if err != nil {
		return booking.Request{}, err
	}
	rawDeparture, err := grpcutil.String(req, "departure")
	if err != nil {
		return booking.Request{}, err
	}
	rawStatus, err := grpcutil.String(req, "status")
	if err != nil {
		return booking.Request{}, err
	}

	departure, err := domain.ParseDeparture(rawDeparture)
	if err != nil {
		return booking.Request{}, grpcutil.Error(err)
	}
	status, err := domain.ParseReservationStatus(rawStatus)
	if err != nil {
		return booking.Request{}, grpcutil.Error(err)
	}

	return booking.Request{
		CustomerID:        customerID,
		FlightNumber:      flightNumber,
		Departure:         departure,
		ReservationNumber: number,
		Status:            status,
	}, nil
}

func toPBBooking(result *booking.Result) (*structpb.Struct, error) {
	r := result.Reservation
	fields := map[string]any{
		"reservation_number": r.Number,
		"customer_id":        r.CustomerID,
		"flight_number":      r.Flight.Number,
		"departure":          r.Flight.DepartureAt.UTC().Format(time.RFC3339),
		"status":             string(r.Status),
		"status_name":        r.Status.Name(),
		"available_seats":    result.AvailableSeats,
		"downgraded":         result.Downgraded,
		"outcome":            string(result.Outcome),
	}
	if result.PreviousStatus != "" {
		fields["previous_status"] = string(result.PreviousStatus)
	}
	return grpcutil.Struct(fields)
}

var _ BookingServiceServer = (*Server)(nil)
