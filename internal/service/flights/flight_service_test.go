package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) ListFlights(ctx context.Context) ([]domain.FlightInstance, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.FlightInstance), args.Error(1)
}

func (m *MockFlightRepository) GetFlight(ctx context.Context, key domain.FlightKey) (*domain.FlightInstance, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightInstance), args.Error(1)
}

func (m *MockFlightRepository) LockFlight(ctx context.Context, key domain.FlightKey) (*domain.FlightInstance, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightInstance), args.Error(1)
}

func (m *MockFlightRepository) IncrementSeatsSold(ctx context.Context, key domain.FlightKey) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightRepository) DecrementSeatsSold(ctx context.Context, key domain.FlightKey) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.FlightInstance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightInstance), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.FlightInstance) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) GetAvailableSeats(ctx context.Context, key domain.FlightKey) (int, bool, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetAvailableSeats(ctx context.Context, key domain.FlightKey, seats int) error {
	args := m.Called(ctx, key, seats)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlight(ctx context.Context, key domain.FlightKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var (
	departure = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	flightKey = domain.NewFlightKey(4, departure)
	instances = []domain.FlightInstance{{
		Flight: domain.Flight{
			Number:           4,
			DepartureAirport: "SVO",
			ArrivalAirport:   "LED",
			DepartureAt:      departure,
			ArrivalAt:        departure.Add(time.Hour),
			SeatsSold:        30,
			PlaneID:          1,
		},
		Capacity: 150,
	}}
)

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(nil, nil).Once()
	mockRepo.On("ListFlights", ctx).Return(instances, nil).Once()
	mockCache.On("SetFlights", ctx, instances).Return(nil).Once()

	result, err := service.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, instances, result)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(instances, nil).Once()

	result, err := service.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, instances, result)
	mockRepo.AssertNotCalled(t, "ListFlights", mock.Anything)
}

func TestFlightService_List_CacheErrorFallsBack(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(nil, errors.New("redis down")).Once()
	mockRepo.On("ListFlights", ctx).Return(instances, nil).Once()
	mockCache.On("SetFlights", ctx, instances).Return(errors.New("redis down")).Once()

	result, err := service.List(ctx)

	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestFlightService_List_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)
	ctx := context.Background()

	expectedErr := errors.New("database error")
	mockRepo.On("ListFlights", ctx).Return([]domain.FlightInstance(nil), expectedErr).Once()

	result, err := service.List(ctx)

	assert.ErrorIs(t, err, expectedErr)
	assert.Nil(t, result)
}

func TestFlightService_AvailableSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		mockRepo := &MockFlightRepository{}
		mockCache := &MockCache{}
		mockCache.On("GetAvailableSeats", ctx, flightKey).Return(12, true, nil).Once()

		seats, err := NewFlightService(mockRepo, mockCache).AvailableSeats(ctx, flightKey)
		require.NoError(t, err)
		assert.Equal(t, 12, seats)
		mockRepo.AssertNotCalled(t, "GetFlight", mock.Anything, mock.Anything)
	})

	t.Run("cache miss", func(t *testing.T) {
		mockRepo := &MockFlightRepository{}
		mockCache := &MockCache{}
		mockCache.On("GetAvailableSeats", ctx, flightKey).Return(0, false, nil).Once()
		mockRepo.On("GetFlight", ctx, flightKey).Return(&instances[0], nil).Once()
		mockCache.On("SetAvailableSeats", ctx, flightKey, 120).Return(nil).Once()

		seats, err := NewFlightService(mockRepo, mockCache).AvailableSeats(ctx, flightKey)
		require.NoError(t, err)
		assert.Equal(t, 120, seats)
		mockCache.AssertExpectations(t)
	})

	t.Run("unknown flight is not cached", func(t *testing.T) {
		mockRepo := &MockFlightRepository{}
		mockCache := &MockCache{}
		mockCache.On("GetAvailableSeats", ctx, flightKey).Return(0, false, nil).Once()
		mockRepo.On("GetFlight", ctx, flightKey).Return(nil, domain.ErrFlightNotFound).Once()

		_, err := NewFlightService(mockRepo, mockCache).AvailableSeats(ctx, flightKey)
		assert.ErrorIs(t, err, domain.ErrFlightNotFound)
		mockCache.AssertNotCalled(t, "SetAvailableSeats", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFlightService_InvalidateFlight(t *testing.T) {
	ctx := context.Background()
	mockCache := &MockCache{}
	mockCache.On("InvalidateFlight", ctx, flightKey).Return(nil).Once()

	require.NoError(t, NewFlightService(&MockFlightRepository{}, mockCache).InvalidateFlight(ctx, flightKey))
	require.NoError(t, NewFlightService(&MockFlightRepository{}, nil).InvalidateFlight(ctx, flightKey))
	mockCache.AssertExpectations(t)
}

func TestFlightService_SkipsCacheWriteAfterConcurrentInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("available seats", func(t *testing.T) {
		mockRepo := &MockFlightRepository{}
		mockCache := &MockCache{}
		service := NewFlightService(mockRepo, mockCache)

		mockCache.On("GetAvailableSeats", ctx, flightKey).Return(0, false, nil).Once()
		mockCache.On("InvalidateFlight", ctx, flightKey).Return(nil).Once()
		mockRepo.On("GetFlight", ctx, flightKey).Run(func(mock.Arguments) {
			// a booking commits while the row is being read
			require.NoError(t, service.InvalidateFlight(ctx, flightKey))
		}).Return(&instances[0], nil).Once()

		seats, err := service.AvailableSeats(ctx, flightKey)
		require.NoError(t, err)
		assert.Equal(t, 120, seats)
		mockCache.AssertNotCalled(t, "SetAvailableSeats", mock.Anything, mock.Anything, mock.Anything)
		mockCache.AssertExpectations(t)
	})

	t.Run("flight list", func(t *testing.T) {
		mockRepo := &MockFlightRepository{}
		mockCache := &MockCache{}
		service := NewFlightService(mockRepo, mockCache)

		mockCache.On("GetFlights", ctx).Return(nil, nil).Once()
		mockCache.On("InvalidateFlight", ctx, flightKey).Return(nil).Once()
		mockRepo.On("ListFlights", ctx).Run(func(mock.Arguments) {
			require.NoError(t, service.InvalidateFlight(ctx, flightKey))
		}).Return(instances, nil).Once()

		result, err := service.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, instances, result)
		mockCache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything)
	})

	t.Run("later reads fill the cache again", func(t *testing.T) {
		mockRepo := &MockFlightRepository{}
		mockCache := &MockCache{}
		service := NewFlightService(mockRepo, mockCache)

		mockCache.On("InvalidateFlight", ctx, flightKey).Return(nil).Once()
		require.NoError(t, service.InvalidateFlight(ctx, flightKey))

		mockCache.On("GetAvailableSeats", ctx, flightKey).Return(0, false, nil).Once()
		mockRepo.On("GetFlight", ctx, flightKey).Return(&instances[0], nil).Once()
		mockCache.On("SetAvailableSeats", ctx, flightKey, 120).Return(nil).Once()

		_, err := service.AvailableSeats(ctx, flightKey)
		require.NoError(t, err)
		mockCache.AssertExpectations(t)
	})
}
