package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"

	constraintReservationNumber = "reservations_pkey"
	constraintCustomerFlight    = "reservations_customer_flight_key"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGStore struct {
	pool *pgxpool.Pool
	db   querier
	tx   pgx.Tx
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, db: pool}
}

// ApplySchema creates missing tables and indexes.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PGStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", TranslatePGError(err))
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &PGStore{pool: s.pool, db: tx, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", TranslatePGError(err))
	}
	return nil
}

// TranslatePGError maps PostgreSQL driver failures onto domain sentinels, keeping the
// driver message for context.
func TranslatePGError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintReservationNumber:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateReservationNumber, pgErr.Message)
		case constraintCustomerFlight:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateReservation, pgErr.Message)
		}
		return fmt.Errorf("%w: %s", domain.ErrConstraintViolation, pgErr.Message)
	case pgForeignKeyViolation, pgCheckViolation, pgNotNullViolation:
		return fmt.Errorf("%w: %s", domain.ErrConstraintViolation, pgErr.Message)
	case pgSerializationFail, pgDeadlockDetected:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Message)
	}
	return err
}

var _ Store = (*PGStore)(nil)
