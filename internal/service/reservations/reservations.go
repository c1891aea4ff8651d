package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/repository"
)

// Machine governs the lifecycle of one customer's reservation on a flight
// instance. Like seats.Engine it keeps no state of its own.
type Machine struct {
	reservations repository.ReservationRepository
}

func NewMachine(reservations repository.ReservationRepository) *Machine {
	return &Machine{reservations: reservations}
}

// Lookup returns the reservation for the pair or domain.ErrReservationNotFound.
func (m *Machine) Lookup(ctx context.Context, customerID int, key domain.FlightKey) (*domain.Reservation, error) {
	return m.reservations.FindReservation(ctx, customerID, key)
}

// Create inserts a new reservation. A pair keeps a single row for its whole
// life, so any existing row (cancelled included) is a duplicate.
func (m *Machine) Create(ctx context.Context, number, customerID int, key domain.FlightKey, status domain.ReservationStatus) (*domain.Reservation, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, string(status))
	}
	if number <= 0 {
		return nil, fmt.Errorf("%w: reservation number must be positive", domain.ErrValidation)
	}

	existing, err := m.reservations.FindReservation(ctx, customerID, key)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: reservation %d (%s)", domain.ErrDuplicateReservation, existing.Number, existing.Status.Name())
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	reservation := domain.Reservation{Number: number, CustomerID: customerID, Flight: key, Status: status}
	if err := m.reservations.InsertReservation(ctx, reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Transition moves reservation to next. Same-state moves return it untouched.
func (m *Machine) Transition(ctx context.Context, reservation domain.Reservation, next domain.ReservationStatus) (*domain.Reservation, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, string(next))
	}
	if reservation.Status == next {
		return &reservation, nil
	}
	if !reservation.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, reservation.Status.Name(), next.Name())
	}

	rows, err := m.reservations.UpdateReservationStatus(ctx, reservation.Number, reservation.Status, next)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: reservation %d left status %s", domain.ErrConflict, reservation.Number, reservation.Status.Name())
	}
	reservation.Status = next
	return &reservation, nil
}
