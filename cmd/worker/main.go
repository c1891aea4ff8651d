package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airops/config"
	"github.com/Domenick1991/airops/internal/cache"
	"github.com/Domenick1991/airops/internal/kafka"
	"github.com/Domenick1991/airops/internal/logging"
	"github.com/Domenick1991/airops/internal/notify"
	"github.com/Domenick1991/airops/internal/rabbitmq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type consumer interface {
	Consume(ctx context.Context, handler func(context.Context, []byte) error) error
}

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

	var source consumer
	switch cfg.Events.Driver {
	case config.EventsDriverKafka:
		kafkaConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Events.NotificationsTopic)
		defer func() { _ = kafkaConsumer.Close() }()
		source = kafkaConsumer
	case config.EventsDriverRabbitMQ:
		source = rabbitmq.NewConsumer(cfg.RabbitMQ, cfg.Events.NotificationsTopic, logger)
	default:
		logger.Info("events driver disabled, nothing to consume", zap.String("driver", cfg.Events.Driver))
		return
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheTTL())
	defer func() { _ = redisCache.Close() }()

	dispatcher := notify.NewDispatcher(notify.NewSender(logger), redisCache, logger)
	handlerTimeout := cfg.Worker.HandlerTimeout()

	logger.Info("worker started", zap.String("driver", cfg.Events.Driver), zap.String("topic", cfg.Events.NotificationsTopic))
	err = source.Consume(ctx, func(ctx context.Context, body []byte) error {
		ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
		defer cancel()
		return dispatcher.Handle(ctx, body)
	})
	if err != nil {
		logger.Error("consumer stopped", zap.Error(err))
		return
	}
	logger.Info("worker stopped")
}
