package flights_service_api

import (
	"context"
	"time"

	"github.com/Domenick1991/airops/internal/api/grpcutil"
	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/service/flights"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName              = "airops.v1.FlightsService"
	listFlightsMethodName    = "/" + ServiceName + "/ListFlights"
	availableSeatsMethodName = "/" + ServiceName + "/AvailableSeats"
)

type FlightsServiceServer interface {
	ListFlights(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	AvailableSeats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var FlightsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListFlights", Handler: listFlightsHandler},
		{MethodName: "AvailableSeats", Handler: availableSeatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "airops/v1/flights.proto",
}

func RegisterFlightsServiceServer(registrar grpc.ServiceRegistrar, srv FlightsServiceServer) {
	registrar.RegisterService(&FlightsServiceDesc, srv)
}

func listFlightsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightsServiceServer).ListFlights(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listFlightsMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightsServiceServer).ListFlights(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func availableSeatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightsServiceServer).AvailableSeats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: availableSeatsMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightsServiceServer).AvailableSeats(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ListFlights(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listFlightsMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AvailableSeats(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, availableSeatsMethodName, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Server exposes the read side of the flight inventory over gRPC.
type Server struct {
	flights flights.FlightUseCase
}

func NewServer(flights flights.FlightUseCase) *Server {
	return &Server{flights: flights}
}

func (s *Server) ListFlights(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := s.flights.List(ctx)
	if err != nil {
		return nil, grpcutil.Error(err)
	}
	out := make([]any, 0, len(list))
	for _, f := range list {
		flight, err := toPBFlight(f)
		if err != nil {
			return nil, grpcutil.Error(err)
		}
		out = append(out, flight)
	}
	return grpcutil.Struct(map[string]any{"flights": out})
}

func (s *Server) AvailableSeats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	number, err := grpcutil.Int(req, "flight_number")
	if err != nil {
		return nil, err
	}
	rawDeparture, err := grpcutil.String(req, "departure")
	if err != nil {
		return nil, err
	}
	departure, err := domain.ParseDeparture(rawDeparture)
	if err != nil {
		return nil, grpcutil.Error(err)
	}

	key := domain.NewFlightKey(number, departure)
	available, err := s.flights.AvailableSeats(ctx, key)
	if err != nil {
		return nil, grpcutil.Error(err)
	}
	return grpcutil.Struct(map[string]any{
		"flight_number":   key.Number,
		"departure":       key.DepartureAt.Format(time.RFC3339),
		"available_seats": available,
	})
}

func toPBFlight(f domain.FlightInstance) (map[string]any, error) {
	available, err := f.AvailableSeats()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"flight_number":     f.Number,
		"departure":         f.DepartureAt.UTC().Format(time.RFC3339),
		"arrival":           f.ArrivalAt.UTC().Format(time.RFC3339),
		"departure_airport": f.DepartureAirport,
		"arrival_airport":   f.ArrivalAirport,
		"cost":              f.Cost,
		"stops":             f.Stops,
		"plane_id":          f.PlaneID,
		"capacity":          f.Capacity,
		"seats_sold":        f.SeatsSold,
		"available_seats":   available,
	}, nil
}

var _ FlightsServiceServer = (*Server)(nil)
