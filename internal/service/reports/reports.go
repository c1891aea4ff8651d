package reports

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/repository"
)

type ReportsUseCase interface {
	RepairsPerPlane(ctx context.Context) ([]domain.PlaneRepairCount, error)
	RepairsPerYear(ctx context.Context) ([]domain.YearRepairCount, error)
	PassengerCount(ctx context.Context, flightNumber int, status domain.ReservationStatus) (int, error)
	AvailableSeats(ctx context.Context, key domain.FlightKey) (int, error)
}

// SeatCounter answers availability for a single flight instance.
type SeatCounter interface {
	AvailableSeats(ctx context.Context, key domain.FlightKey) (int, error)
}

// Service runs read-only aggregations. It never writes.
type Service struct {
	repo  repository.ReportsRepository
	seats SeatCounter
}

func NewService(repo repository.ReportsRepository, seats SeatCounter) *Service {
	return &Service{repo: repo, seats: seats}
}

// RepairsPerPlane is ordered by repair count, most repaired first.
func (s *Service) RepairsPerPlane(ctx context.Context) ([]domain.PlaneRepairCount, error) {
	return s.repo.RepairsPerPlane(ctx)
}

// RepairsPerYear is ordered by repair count, quietest year first.
func (s *Service) RepairsPerYear(ctx context.Context) ([]domain.YearRepairCount, error) {
	return s.repo.RepairsPerYear(ctx)
}

// PassengerCount counts reservations in status across every departure of flightNumber.
func (s *Service) PassengerCount(ctx context.Context, flightNumber int, status domain.ReservationStatus) (int, error) {
	if flightNumber <= 0 {
		return 0, fmt.Errorf("%w: flight number must be positive", domain.ErrValidation)
	}
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, string(status))
	}
	return s.repo.CountPassengers(ctx, flightNumber, status)
}

func (s *Service) AvailableSeats(ctx context.Context, key domain.FlightKey) (int, error) {
	return s.seats.AvailableSeats(ctx, key)
}

var _ ReportsUseCase = (*Service)(nil)
