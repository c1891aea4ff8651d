package reservations

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

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) FindReservation(ctx context.Context, customerID int, key domain.FlightKey) (*domain.Reservation, error) {
	args := m.Called(ctx, customerID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) InsertReservation(ctx context.Context, reservation domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) UpdateReservationStatus(ctx context.Context, number int, from, to domain.ReservationStatus) (int64, error) {
	args := m.Called(ctx, number, from, to)
	return args.Get(0).(int64), args.Error(1)
}

var key = domain.NewFlightKey(101, time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC))

func TestMachineCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("new reservation", func(t *testing.T) {
		repo := new(MockReservationRepository)
		want := domain.Reservation{Number: 10, CustomerID: 1, Flight: key, Status: domain.ReservationStatusReserved}
		repo.On("FindReservation", ctx, 1, key).Return(nil, domain.ErrReservationNotFound)
		repo.On("InsertReservation", ctx, want).Return(nil)

		got, err := NewMachine(repo).Create(ctx, 10, 1, key, domain.ReservationStatusReserved)
		require.NoError(t, err)
		assert.Equal(t, want, *got)
		repo.AssertExpectations(t)
	})

	t.Run("invalid status", func(t *testing.T) {
		repo := new(MockReservationRepository)

		_, err := NewMachine(repo).Create(ctx, 10, 1, key, domain.ReservationStatus("X"))
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		repo.AssertNotCalled(t, "InsertReservation", mock.Anything, mock.Anything)
	})

	t.Run("existing row for pair", func(t *testing.T) {
		repo := new(MockReservationRepository)
		existing := &domain.Reservation{Number: 3, CustomerID: 1, Flight: key, Status: domain.ReservationStatusCancelled}
		repo.On("FindReservation", ctx, 1, key).Return(existing, nil)

		_, err := NewMachine(repo).Create(ctx, 10, 1, key, domain.ReservationStatusWaitlisted)
		assert.ErrorIs(t, err, domain.ErrDuplicateReservation)
		repo.AssertNotCalled(t, "InsertReservation", mock.Anything, mock.Anything)
	})

	t.Run("number collision", func(t *testing.T) {
		repo := new(MockReservationRepository)
		repo.On("FindReservation", ctx, 1, key).Return(nil, domain.ErrReservationNotFound)
		repo.On("InsertReservation", ctx, mock.Anything).Return(domain.ErrDuplicateReservationNumber)

		_, err := NewMachine(repo).Create(ctx, 10, 1, key, domain.ReservationStatusWaitlisted)
		assert.ErrorIs(t, err, domain.ErrDuplicateReservationNumber)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		repo := new(MockReservationRepository)
		boom := errors.New("connection reset")
		repo.On("FindReservation", ctx, 1, key).Return(nil, boom)

		_, err := NewMachine(repo).Create(ctx, 10, 1, key, domain.ReservationStatusWaitlisted)
		assert.ErrorIs(t, err, boom)
	})
}

func TestMachineTransition(t *testing.T) {
	ctx := context.Background()
	W, R, C := domain.ReservationStatusWaitlisted, domain.ReservationStatusReserved, domain.ReservationStatusCancelled

	legal := []struct{ from, to domain.ReservationStatus }{
		{W, R}, {W, C}, {R, C}, {R, W}, {C, W},
	}
	for _, tt := range legal {
		t.Run(tt.from.Name()+" to "+tt.to.Name(), func(t *testing.T) {
			repo := new(MockReservationRepository)
			repo.On("UpdateReservationStatus", ctx, 5, tt.from, tt.to).Return(int64(1), nil)

			got, err := NewMachine(repo).Transition(ctx, domain.Reservation{Number: 5, Status: tt.from}, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
		})
	}

	t.Run("cancelled to reserved is illegal", func(t *testing.T) {
		repo := new(MockReservationRepository)

		_, err := NewMachine(repo).Transition(ctx, domain.Reservation{Number: 5, Status: C}, R)
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
		repo.AssertNotCalled(t, "UpdateReservationStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("same state is a no-op", func(t *testing.T) {
		repo := new(MockReservationRepository)

		got, err := NewMachine(repo).Transition(ctx, domain.Reservation{Number: 5, Status: R}, R)
		require.NoError(t, err)
		assert.Equal(t, R, got.Status)
		repo.AssertNotCalled(t, "UpdateReservationStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("row moved underneath", func(t *testing.T) {
		repo := new(MockReservationRepository)
		repo.On("UpdateReservationStatus", ctx, 5, W, R).Return(int64(0), nil)

		_, err := NewMachine(repo).Transition(ctx, domain.Reservation{Number: 5, Status: W}, R)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("invalid target", func(t *testing.T) {
		_, err := NewMachine(new(MockReservationRepository)).Transition(ctx, domain.Reservation{Number: 5, Status: W}, "Z")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}
