package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *PGStore) FindReservation(ctx context.Context, customerID int, key domain.FlightKey) (*domain.Reservation, error) {
	row := s.db.QueryRow(ctx, `SELECT rnum, cid, fnum, departure_date, status FROM reservations
		WHERE cid=$1 AND fnum=$2 AND departure_date=$3 FOR UPDATE`, customerID, key.Number, key.DepartureAt)
	var (
		r      domain.Reservation
		status string
	)
	if err := row.Scan(&r.Number, &r.CustomerID, &r.Flight.Number, &r.Flight.DepartureAt, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", TranslatePGError(err))
	}
	parsed, err := domain.ParseReservationStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: reservation %d: %v", domain.ErrDataIntegrity, r.Number, err)
	}
	r.Status = parsed
	r.Flight.DepartureAt = r.Flight.DepartureAt.UTC()
	return &r, nil
}

func (s *PGStore) InsertReservation(ctx context.Context, r domain.Reservation) error {
	_, err := s.db.Exec(ctx, `INSERT INTO reservations (rnum, cid, fnum, departure_date, status) VALUES ($1, $2, $3, $4, $5)`,
		r.Number, r.CustomerID, r.Flight.Number, r.Flight.DepartureAt, string(r.Status))
	if err != nil {
		return fmt.Errorf("insert reservation %d: %w", r.Number, TranslatePGError(err))
	}
	return nil
}

func (s *PGStore) UpdateReservationStatus(ctx context.Context, number int, from, to domain.ReservationStatus) (int64, error) {
	res, err := s.db.Exec(ctx, `UPDATE reservations SET status=$1 WHERE rnum=$2 AND status=$3`, string(to), number, string(from))
	if err != nil {
		return 0, fmt.Errorf("update reservation %d: %w", number, TranslatePGError(err))
	}
	return res.RowsAffected(), nil
}
