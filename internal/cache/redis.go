package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/airops/config"
	"github.com/Domenick1991/airops/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), ttl)
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFlights returns nil, nil on a miss.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.FlightInstance, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeFlights(data)
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.FlightInstance) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.ttl).Err()
}

// GetAvailableSeats reports ok=false on a miss.
func (c *RedisCache) GetAvailableSeats(ctx context.Context, key domain.FlightKey) (int, bool, error) {
	raw, err := c.client.Get(ctx, seatsKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	seats, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("cached seats for %s: %w", key, err)
	}
	return seats, true, nil
}

func (c *RedisCache) SetAvailableSeats(ctx context.Context, key domain.FlightKey, seats int) error {
	return c.client.Set(ctx, seatsKey(key), seats, c.ttl).Err()
}

// InvalidateFlight drops the instance's seat count and the flight list that embeds it.
func (c *RedisCache) InvalidateFlight(ctx context.Context, key domain.FlightKey) error {
	return c.client.Del(ctx, seatsKey(key), flightsKey()).Err()
}

func decodeFlights(data []byte) ([]domain.FlightInstance, error) {
	var flights []domain.FlightInstance
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func flightsKey() string {
	return "cache:flights"
}

func seatsKey(key domain.FlightKey) string {
	return fmt.Sprintf("cache:flight:%d:%d:seats", key.Number, key.DepartureAt.UTC().Unix())
}
