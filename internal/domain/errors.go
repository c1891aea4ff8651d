package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound                   = errors.New("not found")
	ErrFlightNotFound             = fmt.Errorf("flight %w", ErrNotFound)
	ErrPlaneNotFound              = fmt.Errorf("plane %w", ErrNotFound)
	ErrReservationNotFound        = fmt.Errorf("reservation %w", ErrNotFound)
	ErrInvalidStatus              = errors.New("invalid reservation status")
	ErrIllegalTransition          = errors.New("illegal reservation transition")
	ErrCapacityExceeded           = errors.New("flight capacity exceeded")
	ErrDuplicateReservation       = errors.New("reservation already exists for customer and flight")
	ErrDuplicateReservationNumber = errors.New("reservation number already taken")
	ErrConstraintViolation        = errors.New("constraint violation")
	ErrConflict                   = errors.New("concurrent transaction conflict")
	ErrDataIntegrity              = errors.New("data integrity violation")
	ErrValidation                 = errors.New("validation failed")
)

// BookingError wraps a booking failure with the request it belongs to.
type BookingError struct {
	Op         string
	CustomerID int
	Flight     FlightKey
	Status     ReservationStatus
	Err        error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s customer=%d flight=%d departure=%s status=%s: %v",
		e.Op, e.CustomerID, e.Flight.Number, e.Flight.DepartureAt.UTC().Format(time.RFC3339), e.Status, e.Err)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// WrapBookingError returns nil for a nil err and never double-wraps.
func WrapBookingError(op string, customerID int, flight FlightKey, status ReservationStatus, err error) error {
	if err == nil {
		return nil
	}
	var existing *BookingError
	if errors.As(err, &existing) {
		return err
	}
	return &BookingError{Op: op, CustomerID: customerID, Flight: flight, Status: status, Err: err}
}

// Retryable reports whether a failed booking transaction may be re-run as a whole.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrDuplicateReservation)
}
