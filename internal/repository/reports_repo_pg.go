package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airops/internal/domain"
)

func (s *PGStore) RepairsPerPlane(ctx context.Context) ([]domain.PlaneRepairCount, error) {
	rows, err := s.db.Query(ctx, `SELECT p.id, count(r.rid) AS repairs
		FROM planes p JOIN repairs r ON r.plane_id = p.id
		GROUP BY p.id ORDER BY repairs DESC, p.id`)
	if err != nil {
		return nil, fmt.Errorf("repairs per plane: %w", TranslatePGError(err))
	}
	defer rows.Close()

	counts := make([]domain.PlaneRepairCount, 0)
	for rows.Next() {
		var c domain.PlaneRepairCount
		if err := rows.Scan(&c.PlaneID, &c.Repairs); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *PGStore) RepairsPerYear(ctx context.Context) ([]domain.YearRepairCount, error) {
	rows, err := s.db.Query(ctx, `SELECT EXTRACT(YEAR FROM repair_date)::int AS year, count(rid) AS repairs
		FROM repairs GROUP BY year ORDER BY repairs ASC, year`)
	if err != nil {
		return nil, fmt.Errorf("repairs per year: %w", TranslatePGError(err))
	}
	defer rows.Close()

	counts := make([]domain.YearRepairCount, 0)
	for rows.Next() {
		var c domain.YearRepairCount
		if err := rows.Scan(&c.Year, &c.Repairs); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *PGStore) CountPassengers(ctx context.Context, flightNumber int, status domain.ReservationStatus) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM reservations WHERE fnum=$1 AND status=$2`, flightNumber, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count passengers: %w", TranslatePGError(err))
	}
	return count, nil
}
