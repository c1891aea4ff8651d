package seats

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/repository"
)

// Engine reconciles sold seats against plane capacity. It holds no state:
// every call goes straight to the flight rows it was built over, so an
// Engine built on a transaction-bound store acts inside that transaction.
type Engine struct {
	flights repository.FlightRepository
}

func NewEngine(flights repository.FlightRepository) *Engine {
	return &Engine{flights: flights}
}

// Available returns capacity minus sold seats for the instance.
func (e *Engine) Available(ctx context.Context, key domain.FlightKey) (int, error) {
	instance, err := e.flights.GetFlight(ctx, key)
	if err != nil {
		return 0, err
	}
	return instance.AvailableSeats()
}

// Reserve sells one seat or fails with ErrCapacityExceeded when none is left.
func (e *Engine) Reserve(ctx context.Context, key domain.FlightKey) error {
	rows, err := e.flights.IncrementSeatsSold(ctx, key)
	if err != nil {
		return fmt.Errorf("reserve seat on %s: %w", key, err)
	}
	if rows > 0 {
		return nil
	}
	if _, err := e.flights.GetFlight(ctx, key); err != nil {
		return err
	}
	return fmt.Errorf("%w: flight %s", domain.ErrCapacityExceeded, key)
}

// Release gives back one sold seat. Nothing to release means a reservation
// was Reserved without a matching sold seat.
func (e *Engine) Release(ctx context.Context, key domain.FlightKey) error {
	rows, err := e.flights.DecrementSeatsSold(ctx, key)
	if err != nil {
		return fmt.Errorf("release seat on %s: %w", key, err)
	}
	if rows > 0 {
		return nil
	}
	if _, err := e.flights.GetFlight(ctx, key); err != nil {
		return err
	}
	return fmt.Errorf("%w: flight %s has no sold seat to release", domain.ErrDataIntegrity, key)
}
