package repository

import (
	"context"

	"github.com/Domenick1991/airops/internal/domain"
)

type FlightRepository interface {
	ListFlights(ctx context.Context) ([]domain.FlightInstance, error)
	GetFlight(ctx context.Context, key domain.FlightKey) (*domain.FlightInstance, error)
	// LockFlight reads the instance and, inside a transaction, holds its row
	// until commit so concurrent bookings of the same flight queue up.
	LockFlight(ctx context.Context, key domain.FlightKey) (*domain.FlightInstance, error)
	// IncrementSeatsSold adds one sold seat only while seats_sold < capacity.
	IncrementSeatsSold(ctx context.Context, key domain.FlightKey) (int64, error)
	// DecrementSeatsSold removes one sold seat only while seats_sold > 0.
	DecrementSeatsSold(ctx context.Context, key domain.FlightKey) (int64, error)
}

type ReservationRepository interface {
	FindReservation(ctx context.Context, customerID int, key domain.FlightKey) (*domain.Reservation, error)
	InsertReservation(ctx context.Context, reservation domain.Reservation) error
	// UpdateReservationStatus moves the row only if it is still in status from.
	UpdateReservationStatus(ctx context.Context, number int, from, to domain.ReservationStatus) (int64, error)
}

type RecordsRepository interface {
	InsertPlane(ctx context.Context, plane domain.Plane) error
	GetPlane(ctx context.Context, id int) (*domain.Plane, error)
	InsertPilot(ctx context.Context, pilot domain.Pilot) error
	InsertFlight(ctx context.Context, flight domain.Flight) error
	InsertTechnician(ctx context.Context, technician domain.Technician) error
	InsertRepair(ctx context.Context, repair domain.Repair) error
}

type ReportsRepository interface {
	RepairsPerPlane(ctx context.Context) ([]domain.PlaneRepairCount, error)
	RepairsPerYear(ctx context.Context) ([]domain.YearRepairCount, error)
	CountPassengers(ctx context.Context, flightNumber int, status domain.ReservationStatus) (int, error)
}

// Store owns every persisted row. WithTx runs fn against a Store bound to a
// single transaction: fn returning an error rolls everything back.
type Store interface {
	FlightRepository
	ReservationRepository
	RecordsRepository
	ReportsRepository
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
