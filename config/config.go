package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EventsDriverKafka    = "kafka"
	EventsDriverRabbitMQ = "rabbitmq"
	EventsDriverNone     = "none"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Events   EventsConfig   `yaml:"events"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	// URL takes precedence over the individual fields when set.
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, sslMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers        []string `yaml:"brokers"`
	GroupID        string   `yaml:"group_id"`
	PublishRetries int      `yaml:"publish_retries"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

// EventsConfig names the destinations for booking events. Kafka uses them as
// topics, RabbitMQ as routing keys.
type EventsConfig struct {
	Driver             string `yaml:"driver"`
	BookingTopic       string `yaml:"booking_topic"`
	NotificationsTopic string `yaml:"notifications_topic"`
}

type BookingConfig struct {
	MaxAttempts            int `yaml:"max_attempts"`
	FlightsCacheTTLSeconds int `yaml:"flights_cache_ttl_seconds"`
	RequestTimeoutSeconds  int `yaml:"request_timeout_seconds"`
}

func (b BookingConfig) FlightsCacheTTL() time.Duration {
	return time.Duration(b.FlightsCacheTTLSeconds) * time.Second
}

func (b BookingConfig) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

type WorkerConfig struct {
	HandlerTimeoutSeconds int `yaml:"handler_timeout_seconds"`
}

func (w WorkerConfig) HandlerTimeout() time.Duration {
	return time.Duration(w.HandlerTimeoutSeconds) * time.Second
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Events.Driver == "" {
		c.Events.Driver = EventsDriverKafka
	}
	if c.Kafka.PublishRetries == 0 {
		c.Kafka.PublishRetries = 3
	}
	if c.Booking.MaxAttempts == 0 {
		c.Booking.MaxAttempts = 2
	}
	if c.Booking.FlightsCacheTTLSeconds == 0 {
		c.Booking.FlightsCacheTTLSeconds = 30
	}
	if c.Booking.RequestTimeoutSeconds == 0 {
		c.Booking.RequestTimeoutSeconds = 5
	}
	if c.Worker.HandlerTimeoutSeconds == 0 {
		c.Worker.HandlerTimeoutSeconds = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := getenv("EVENTS_DRIVER"); v != "" {
		c.Events.Driver = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate reports every unusable setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" && c.Database.Host == "" {
		errs = append(errs, errors.New("database: url or host is required"))
	}
	if c.Booking.MaxAttempts < 1 {
		errs = append(errs, errors.New("booking: max_attempts must be positive"))
	}
	switch c.Events.Driver {
	case EventsDriverKafka:
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("kafka: at least one broker is required"))
		}
		if c.Kafka.PublishRetries < 1 {
			errs = append(errs, errors.New("kafka: publish_retries must be positive"))
		}
	case EventsDriverRabbitMQ:
		if c.RabbitMQ.URL == "" {
			errs = append(errs, errors.New("rabbitmq: url is required"))
		}
	case EventsDriverNone:
	default:
		errs = append(errs, fmt.Errorf("events: unknown driver %q", c.Events.Driver))
	}
	if c.Events.Driver != EventsDriverNone && c.Events.BookingTopic == "" {
		errs = append(errs, errors.New("events: booking_topic is required"))
	}
	return errors.Join(errs...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
