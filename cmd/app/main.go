package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airops/config"
	"github.com/Domenick1991/airops/internal/bootstrap"
	"github.com/Domenick1991/airops/internal/cache"
	"github.com/Domenick1991/airops/internal/kafka"
	"github.com/Domenick1991/airops/internal/logging"
	"github.com/Domenick1991/airops/internal/rabbitmq"
	"github.com/Domenick1991/airops/internal/repository"
	"github.com/Domenick1991/airops/internal/service/booking"
	"github.com/Domenick1991/airops/internal/service/flights"
	"github.com/Domenick1991/airops/internal/service/records"
	"github.com/Domenick1991/airops/internal/service/reports"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return err
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.ApplySchema(ctx, pool); err != nil {
		return err
	}
	store := repository.NewPGStore(pool)

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheTTL())
	defer func() { _ = redisCache.Close() }()
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, serving from the database only", zap.Error(err))
	}

	flightService := flights.NewFlightService(store, redisCache, flights.WithLogger(logger))

	opts := []booking.BookingServiceOption{
		booking.WithCache(flightService),
		booking.WithMaxAttempts(cfg.Booking.MaxAttempts),
		booking.WithLogger(logger),
	}
	switch cfg.Events.Driver {
	case config.EventsDriverKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer func() { _ = producer.Close() }()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka unreachable at startup", zap.Error(err))
		}
		opts = append(opts,
			booking.WithProducer(producer.Retrying(cfg.Kafka.PublishRetries), cfg.Events.BookingTopic),
			booking.WithNotificationsTopic(cfg.Events.NotificationsTopic))
	case config.EventsDriverRabbitMQ:
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ, logger)
		if err != nil {
			return err
		}
		defer func() { _ = publisher.Close() }()
		opts = append(opts,
			booking.WithProducer(publisher, cfg.Events.BookingTopic),
			booking.WithNotificationsTopic(cfg.Events.NotificationsTopic))
	}
	bookingService := booking.NewBookingService(store, opts...)

	return bootstrap.Run(ctx, cfg, bootstrap.Services{
		Bookings: bookingService,
		Flights:  flightService,
		Records:  records.NewService(store, records.WithLogger(logger)),
		Reports:  reports.NewService(store, flightService),
	}, logger)
}
