package flights

import (
	"context"
	"sync/atomic"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/repository"
	"github.com/Domenick1991/airops/internal/service/seats"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.FlightInstance, error)
	AvailableSeats(ctx context.Context, key domain.FlightKey) (int, error)
	InvalidateFlight(ctx context.Context, key domain.FlightKey) error
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.FlightInstance, error)
	SetFlights(ctx context.Context, flights []domain.FlightInstance) error
	GetAvailableSeats(ctx context.Context, key domain.FlightKey) (int, bool, error)
	SetAvailableSeats(ctx context.Context, key domain.FlightKey, seats int) error
	InvalidateFlight(ctx context.Context, key domain.FlightKey) error
}

// FlightService is a read-through cache in front of the flight rows. Cache
// failures are logged and fall back to the store. A read that overlaps an
// invalidation does not write its result back.
type FlightService struct {
	repo        repository.FlightRepository
	seats       *seats.Engine
	cache       FlightCache
	logger      *zap.Logger
	invalidated atomic.Uint64
}

type Option func(*FlightService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *FlightService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFlightService accepts a nil cache.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, opts ...Option) *FlightService {
	service := &FlightService{
		repo:   repo,
		seats:  seats.NewEngine(repo),
		cache:  cache,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *FlightService) List(ctx context.Context) ([]domain.FlightInstance, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.logger.Warn("read flights cache", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	generation := s.invalidated.Load()
	flights, err := s.repo.ListFlights(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && s.invalidated.Load() == generation {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.logger.Warn("write flights cache", zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) AvailableSeats(ctx context.Context, key domain.FlightKey) (int, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetAvailableSeats(ctx, key)
		if err != nil {
			s.logger.Warn("read seats cache", zap.Stringer("flight", key), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	generation := s.invalidated.Load()
	available, err := s.seats.Available(ctx, key)
	if err != nil {
		return 0, err
	}
	if s.cache != nil && s.invalidated.Load() == generation {
		if err := s.cache.SetAvailableSeats(ctx, key, available); err != nil {
			s.logger.Warn("write seats cache", zap.Stringer("flight", key), zap.Error(err))
		}
	}
	return available, nil
}

func (s *FlightService) InvalidateFlight(ctx context.Context, key domain.FlightKey) error {
	s.invalidated.Add(1)
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateFlight(ctx, key)
}

var _ FlightUseCase = (*FlightService)(nil)
