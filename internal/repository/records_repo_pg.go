package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *PGStore) InsertPlane(ctx context.Context, p domain.Plane) error {
	_, err := s.db.Exec(ctx, `INSERT INTO planes (id, make, model, age, seats) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Make, p.Model, p.Age, p.Seats)
	if err != nil {
		return fmt.Errorf("insert plane %d: %w", p.ID, TranslatePGError(err))
	}
	return nil
}

func (s *PGStore) GetPlane(ctx context.Context, id int) (*domain.Plane, error) {
	var p domain.Plane
	err := s.db.QueryRow(ctx, `SELECT id, make, model, age, seats FROM planes WHERE id=$1`, id).
		Scan(&p.ID, &p.Make, &p.Model, &p.Age, &p.Seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlaneNotFound
		}
		return nil, fmt.Errorf("get plane %d: %w", id, TranslatePGError(err))
	}
	return &p, nil
}

func (s *PGStore) InsertPilot(ctx context.Context, p domain.Pilot) error {
	_, err := s.db.Exec(ctx, `INSERT INTO pilots (id, full_name, nationality) VALUES ($1, $2, $3)`, p.ID, p.Name, p.Nationality)
	if err != nil {
		return fmt.Errorf("insert pilot %d: %w", p.ID, TranslatePGError(err))
	}
	return nil
}

func (s *PGStore) InsertFlight(ctx context.Context, f domain.Flight) error {
	_, err := s.db.Exec(ctx, `INSERT INTO flights (fnum, cost, num_sold, num_stops, actual_departure_date, actual_arrival_date,
		arrival_airport, departure_airport, plane_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.Number, f.Cost, f.SeatsSold, f.Stops, f.DepartureAt.UTC(), f.ArrivalAt.UTC(), f.ArrivalAirport, f.DepartureAirport, f.PlaneID)
	if err != nil {
		return fmt.Errorf("insert flight %s: %w", f.Key(), TranslatePGError(err))
	}
	return nil
}

func (s *PGStore) InsertTechnician(ctx context.Context, t domain.Technician) error {
	_, err := s.db.Exec(ctx, `INSERT INTO technicians (id, full_name) VALUES ($1, $2)`, t.ID, t.FullName)
	if err != nil {
		return fmt.Errorf("insert technician %d: %w", t.ID, TranslatePGError(err))
	}
	return nil
}

func (s *PGStore) InsertRepair(ctx context.Context, r domain.Repair) error {
	_, err := s.db.Exec(ctx, `INSERT INTO repairs (rid, plane_id, repair_date) VALUES ($1, $2, $3)`, r.ID, r.PlaneID, r.RepairDate.UTC())
	if err != nil {
		return fmt.Errorf("insert repair %d: %w", r.ID, TranslatePGError(err))
	}
	return nil
}
