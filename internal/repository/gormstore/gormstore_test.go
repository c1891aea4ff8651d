package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testDeparture = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(withForeignKeys(t.TempDir()+"/airops.db", "")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return New(db)
}

func seedFlight(t *testing.T, store *Store, seats, sold int) domain.FlightKey {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.InsertPlane(ctx, domain.Plane{ID: 1, Make: "Airbus", Model: "A320", Age: 4, Seats: seats}))
	flight := domain.Flight{
		Number:           101,
		Cost:             250,
		SeatsSold:        sold,
		DepartureAt:      testDeparture,
		ArrivalAt:        testDeparture.Add(3 * time.Hour),
		DepartureAirport: "SVO",
		ArrivalAirport:   "LED",
		PlaneID:          1,
	}
	require.NoError(t, store.InsertFlight(ctx, flight))
	return flight.Key()
}

func TestStoreFlights(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := seedFlight(t, store, 3, 1)

	flights, err := store.ListFlights(ctx)
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, 3, flights[0].Capacity)
	assert.Equal(t, 1, flights[0].SeatsSold)
	assert.True(t, flights[0].DepartureAt.Equal(testDeparture))

	got, err := store.GetFlight(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "LED", got.ArrivalAirport)

	_, err = store.GetFlight(ctx, domain.NewFlightKey(999, testDeparture))
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreSeatCountersRespectBounds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := seedFlight(t, store, 2, 0)

	rows, err := store.DecrementSeatsSold(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, rows)

	for i := 0; i < 2; i++ {
		rows, err = store.IncrementSeatsSold(ctx, key)
		require.NoError(t, err)
		assert.EqualValues(t, 1, rows)
	}
	rows, err = store.IncrementSeatsSold(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, rows, "increment past capacity must not apply")

	instance, err := store.GetFlight(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, instance.SeatsSold)

	rows, err = store.DecrementSeatsSold(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)
}

func TestStoreReservations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := seedFlight(t, store, 5, 0)

	_, err := store.FindReservation(ctx, 7, key)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)

	reservation := domain.Reservation{Number: 1, CustomerID: 7, Flight: key, Status: domain.ReservationStatusWaitlisted}
	require.NoError(t, store.InsertReservation(ctx, reservation))

	found, err := store.FindReservation(ctx, 7, key)
	require.NoError(t, err)
	assert.Equal(t, reservation.Number, found.Number)
	assert.Equal(t, domain.ReservationStatusWaitlisted, found.Status)
	assert.True(t, found.Flight.DepartureAt.Equal(testDeparture))

	err = store.InsertReservation(ctx, domain.Reservation{Number: 1, CustomerID: 8, Flight: key, Status: domain.ReservationStatusReserved})
	assert.ErrorIs(t, err, domain.ErrDuplicateReservationNumber)

	err = store.InsertReservation(ctx, domain.Reservation{Number: 2, CustomerID: 7, Flight: key, Status: domain.ReservationStatusReserved})
	assert.ErrorIs(t, err, domain.ErrDuplicateReservation)

	rows, err := store.UpdateReservationStatus(ctx, 1, domain.ReservationStatusReserved, domain.ReservationStatusCancelled)
	require.NoError(t, err)
	assert.Zero(t, rows, "stale from-status must not match")

	rows, err = store.UpdateReservationStatus(ctx, 1, domain.ReservationStatusWaitlisted, domain.ReservationStatusReserved)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	count, err := store.CountPassengers(ctx, key.Number, domain.ReservationStatusReserved)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStoreWithTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := seedFlight(t, store, 5, 0)
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		locked, err := tx.LockFlight(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 5, locked.Capacity)
		_, err = tx.IncrementSeatsSold(ctx, key)
		require.NoError(t, err)
		require.NoError(t, tx.InsertReservation(ctx, domain.Reservation{Number: 9, CustomerID: 1, Flight: key, Status: domain.ReservationStatusReserved}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	instance, err := store.GetFlight(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, instance.SeatsSold)
	_, err = store.FindReservation(ctx, 1, key)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestStoreReports(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedFlight(t, store, 5, 0)
	require.NoError(t, store.InsertPlane(ctx, domain.Plane{ID: 2, Make: "Boeing", Model: "737", Age: 10, Seats: 180}))

	repairs := []domain.Repair{
		{ID: 1, PlaneID: 1, RepairDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, PlaneID: 2, RepairDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, PlaneID: 2, RepairDate: time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)},
	}
	for _, r := range repairs {
		require.NoError(t, store.InsertRepair(ctx, r))
	}

	perPlane, err := store.RepairsPerPlane(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.PlaneRepairCount{{PlaneID: 2, Repairs: 2}, {PlaneID: 1, Repairs: 1}}, perPlane)

	perYear, err := store.RepairsPerYear(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.YearRepairCount{{Year: 2025, Repairs: 1}, {Year: 2024, Repairs: 2}}, perYear)

	plane, err := store.GetPlane(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Boeing", plane.Make)
	_, err = store.GetPlane(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrPlaneNotFound)
}

func TestStoreRejectsOrphanRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := seedFlight(t, store, 5, 0)

	err := store.InsertFlight(ctx, domain.Flight{
		Number:           202,
		Cost:             100,
		DepartureAt:      testDeparture,
		ArrivalAt:        testDeparture.Add(time.Hour),
		DepartureAirport: "SVO",
		ArrivalAirport:   "KZN",
		PlaneID:          777,
	})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation, "flight on a missing plane")

	err = store.InsertReservation(ctx, domain.Reservation{
		Number:     1,
		CustomerID: 1,
		Flight:     domain.NewFlightKey(42, testDeparture),
		Status:     domain.ReservationStatusReserved,
	})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation, "reservation on a missing flight")

	err = store.InsertReservation(ctx, domain.Reservation{
		Number:     2,
		CustomerID: 1,
		Flight:     domain.NewFlightKey(key.Number, testDeparture.Add(24*time.Hour)),
		Status:     domain.ReservationStatusReserved,
	})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation, "reservation on another date of an existing flight number")

	err = store.InsertRepair(ctx, domain.Repair{ID: 1, PlaneID: 999, RepairDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation, "repair on a missing plane")

	require.NoError(t, store.InsertReservation(ctx, domain.Reservation{Number: 3, CustomerID: 1, Flight: key, Status: domain.ReservationStatusReserved}))
	require.NoError(t, store.InsertRepair(ctx, domain.Repair{ID: 2, PlaneID: 1, RepairDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}))

	flights, err := store.ListFlights(ctx)
	require.NoError(t, err)
	assert.Len(t, flights, 1)
}

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		dsn        string
		wantDriver string
		wantTarget string
	}{
		{dsn: "postgres://u:p@localhost:5432/airops", wantDriver: DriverPostgres, wantTarget: "postgres://u:p@localhost:5432/airops"},
		{dsn: "mysql://u:p@tcp(localhost:3306)/airops", wantDriver: DriverMySQL, wantTarget: "u:p@tcp(localhost:3306)/airops?parseTime=true"},
		{dsn: "mysql://u:p@tcp(db)/airops?charset=utf8mb4", wantDriver: DriverMySQL, wantTarget: "u:p@tcp(db)/airops?charset=utf8mb4&parseTime=true"},
		{dsn: "sqlite://:memory:", wantDriver: DriverSQLite, wantTarget: ":memory:?_pragma=foreign_keys(1)"},
		{dsn: ":memory:", wantDriver: DriverSQLite, wantTarget: ":memory:?_pragma=foreign_keys(1)"},
		{dsn: ":memory:?_pragma=busy_timeout(5000)", wantDriver: DriverSQLite, wantTarget: ":memory:?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"},
		{dsn: ":memory:?_pragma=foreign_keys(0)", wantDriver: DriverSQLite, wantTarget: ":memory:?_pragma=foreign_keys(0)"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, target, err := ResolveDriver(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantTarget, target)
		})
	}

	_, _, err := ResolveDriver("mysql://")
	assert.Error(t, err)
}
