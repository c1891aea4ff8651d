package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/airops/api"
	"github.com/Domenick1991/airops/config"
	bookingsapi "github.com/Domenick1991/airops/internal/api/bookings_service_api"
	flightsapi "github.com/Domenick1991/airops/internal/api/flights_service_api"
	"github.com/Domenick1991/airops/internal/api/grpcutil"
	"github.com/Domenick1991/airops/internal/service/booking"
	"github.com/Domenick1991/airops/internal/service/flights"
	"github.com/Domenick1991/airops/internal/service/records"
	"github.com/Domenick1991/airops/internal/service/reports"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 5 * time.Second

// Services are the use cases exposed by both transports.
type Services struct {
	Bookings booking.BookingUseCase
	Flights  flights.FlightUseCase
	Records  records.RecordsUseCase
	Reports  reports.ReportsUseCase
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is cancelled or a
// server fails.
func Run(ctx context.Context, cfg *config.Config, services Services, logger *zap.Logger) error {
	s := NewServers(cfg, services, logger)

	grpcLis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("listen HTTP %s: %w", cfg.HTTP.Address, err)
	}
	return s.Serve(ctx, grpcLis, httpLis, logger)
}

func NewServers(cfg *config.Config, services Services, logger *zap.Logger) *Servers {
	if logger == nil {
		logger = zap.NewNop()
	}

	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcutil.UnaryLogger(logger)))
	bookingsapi.RegisterBookingServiceServer(grpcSrv, bookingsapi.NewServer(services.Bookings))
	flightsapi.RegisterFlightsServiceServer(grpcSrv, flightsapi.NewServer(services.Flights))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(bookingsapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(flightsapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcSrv)

	router := api.NewRouter(api.Handlers{
		Bookings: api.NewBookingHandler(services.Bookings),
		Flights:  api.NewFlightHandler(services.Flights),
		Records:  api.NewRecordsHandler(services.Records),
		Reports:  api.NewReportsHandler(services.Reports),
	}, cfg.HTTP.AllowedOrigins, logger)

	var handler http.Handler = router
	if timeout := cfg.Booking.RequestTimeout(); timeout > 0 {
		handler = http.TimeoutHandler(router, timeout, `{"error":"request timed out","code":"timeout"}`)
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		health: healthSrv,
	}
}

// Serve runs both servers on the given listeners until ctx is done.
func (s *Servers) Serve(ctx context.Context, grpcLis, httpLis net.Listener, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	errCh := make(chan error, 2)

	go func() {
		logger.Info("grpc server listening", zap.String("address", grpcLis.Addr().String()))
		errCh <- s.grpcServer.Serve(grpcLis)
	}()
	go func() {
		logger.Info("http server listening", zap.String("address", httpLis.Addr().String()))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		s.stop(logger)
		return err
	case <-ctx.Done():
		return s.stop(logger)
	}
}

func (s *Servers) stop(logger *zap.Logger) error {
	s.health.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("servers stopped")
	return nil
}
