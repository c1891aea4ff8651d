package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/jackc/pgx/v5"
)

const selectFlightInstance = `SELECT f.fnum, f.cost, f.num_sold, f.num_stops, f.actual_departure_date, f.actual_arrival_date,
	f.arrival_airport, f.departure_airport, f.plane_id, p.seats
	FROM flights f JOIN planes p ON p.id = f.plane_id`

func (s *PGStore) ListFlights(ctx context.Context) ([]domain.FlightInstance, error) {
	rows, err := s.db.Query(ctx, selectFlightInstance+` ORDER BY f.actual_departure_date, f.fnum`)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", TranslatePGError(err))
	}
	defer rows.Close()

	flights := make([]domain.FlightInstance, 0)
	for rows.Next() {
		f, err := scanFlightInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (s *PGStore) GetFlight(ctx context.Context, key domain.FlightKey) (*domain.FlightInstance, error) {
	return s.getFlight(ctx, key, "")
}

func (s *PGStore) LockFlight(ctx context.Context, key domain.FlightKey) (*domain.FlightInstance, error) {
	return s.getFlight(ctx, key, " FOR UPDATE OF f")
}

func (s *PGStore) getFlight(ctx context.Context, key domain.FlightKey, suffix string) (*domain.FlightInstance, error) {
	row := s.db.QueryRow(ctx, selectFlightInstance+` WHERE f.fnum=$1 AND f.actual_departure_date=$2`+suffix, key.Number, key.DepartureAt)
	f, err := scanFlightInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("get flight %s: %w", key, TranslatePGError(err))
	}
	return f, nil
}

func (s *PGStore) IncrementSeatsSold(ctx context.Context, key domain.FlightKey) (int64, error) {
	res, err := s.db.Exec(ctx, `UPDATE flights f SET num_sold = f.num_sold + 1
		FROM planes p
		WHERE p.id = f.plane_id AND f.fnum=$1 AND f.actual_departure_date=$2 AND f.num_sold < p.seats`, key.Number, key.DepartureAt)
	if err != nil {
		return 0, fmt.Errorf("increment seats sold: %w", TranslatePGError(err))
	}
	return res.RowsAffected(), nil
}

func (s *PGStore) DecrementSeatsSold(ctx context.Context, key domain.FlightKey) (int64, error) {
	res, err := s.db.Exec(ctx, `UPDATE flights SET num_sold = num_sold - 1
		WHERE fnum=$1 AND actual_departure_date=$2 AND num_sold > 0`, key.Number, key.DepartureAt)
	if err != nil {
		return 0, fmt.Errorf("decrement seats sold: %w", TranslatePGError(err))
	}
	return res.RowsAffected(), nil
}

func scanFlightInstance(row pgx.Row) (*domain.FlightInstance, error) {
	var f domain.FlightInstance
	if err := row.Scan(&f.Number, &f.Cost, &f.SeatsSold, &f.Stops, &f.DepartureAt, &f.ArrivalAt,
		&f.ArrivalAirport, &f.DepartureAirport, &f.PlaneID, &f.Capacity); err != nil {
		return nil, err
	}
	f.DepartureAt = f.DepartureAt.UTC()
	f.ArrivalAt = f.ArrivalAt.UTC()
	return &f, nil
}
