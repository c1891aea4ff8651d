package gormstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/repository"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	sqliteBusyCode       = 5
	sqliteConstraintCode = 19
	mysqlDuplicateEntry  = 1062
	mysqlForeignKey      = 1452
	mysqlCheckViolation  = 3819
	mysqlDeadlock        = 1213
	mysqlLockWaitTimeout = 1205
)

// Store implements repository.Store using GORM.
type Store struct {
	db   *gorm.DB
	inTx bool
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates every table the store uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// WithTx executes fn within a transaction. Nested calls reuse the outer one.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx, inTx: true})
	})
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) ListFlights(ctx context.Context) ([]domain.FlightInstance, error) {
	var rows []flightInstanceRow
	err := s.flightQuery(ctx).Order("f.actual_departure_date, f.fnum").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", translateError(err))
	}
	flights := make([]domain.FlightInstance, 0, len(rows))
	for _, row := range rows {
		flights = append(flights, toFlightInstance(row))
	}
	return flights, nil
}

func (s *Store) GetFlight(ctx context.Context, key domain.FlightKey) (*domain.FlightInstance, error) {
	return s.getFlight(ctx, key, false)
}

func (s *Store) LockFlight(ctx context.Context, key domain.FlightKey) (*domain.FlightInstance, error) {
	return s.getFlight(ctx, key, true)
}

func (s *Store) getFlight(ctx context.Context, key domain.FlightKey, lock bool) (*domain.FlightInstance, error) {
	query := s.flightQuery(ctx).Where("f.fnum = ? AND f.actual_departure_date = ?", key.Number, key.DepartureAt.UTC())
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "f"}})
	}
	var rows []flightInstanceRow
	if err := query.Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("get flight %s: %w", key, translateError(err))
	}
	if len(rows) == 0 {
		return nil, domain.ErrFlightNotFound
	}
	instance := toFlightInstance(rows[0])
	return &instance, nil
}

func (s *Store) flightQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("flights AS f").
		Select("f.fnum, f.cost, f.num_sold, f.num_stops, f.actual_departure_date, f.actual_arrival_date, " +
			"f.arrival_airport, f.departure_airport, f.plane_id, p.seats AS capacity").
		Joins("JOIN planes p ON p.id = f.plane_id")
}

func (s *Store) IncrementSeatsSold(ctx context.Context, key domain.FlightKey) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&Flight{}).
		Where("fnum = ? AND actual_departure_date = ?", key.Number, key.DepartureAt.UTC()).
		Where("num_sold < (SELECT seats FROM planes WHERE planes.id = flights.plane_id)").
		UpdateColumn("num_sold", gorm.Expr("num_sold + 1"))
	if result.Error != nil {
		return 0, fmt.Errorf("increment seats sold: %w", translateError(result.Error))
	}
	return result.RowsAffected, nil
}

func (s *Store) DecrementSeatsSold(ctx context.Context, key domain.FlightKey) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&Flight{}).
		Where("fnum = ? AND actual_departure_date = ? AND num_sold > 0", key.Number, key.DepartureAt.UTC()).
		UpdateColumn("num_sold", gorm.Expr("num_sold - 1"))
	if result.Error != nil {
		return 0, fmt.Errorf("decrement seats sold: %w", translateError(result.Error))
	}
	return result.RowsAffected, nil
}

func (s *Store) FindReservation(ctx context.Context, customerID int, key domain.FlightKey) (*domain.Reservation, error) {
	var model Reservation
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cid = ? AND fnum = ? AND departure_date = ?", customerID, key.Number, key.DepartureAt.UTC()).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", translateError(err))
	}
	status, err := domain.ParseReservationStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: reservation %d: %v", domain.ErrDataIntegrity, model.Number, err)
	}
	return &domain.Reservation{
		Number:     model.Number,
		CustomerID: model.CustomerID,
		Flight:     domain.NewFlightKey(model.FlightNumber, model.DepartureAt),
		Status:     status,
	}, nil
}

func (s *Store) InsertReservation(ctx context.Context, r domain.Reservation) error {
	var taken int64
	if err := s.db.WithContext(ctx).Model(&Reservation{}).Where("rnum = ?", r.Number).Count(&taken).Error; err != nil {
		return fmt.Errorf("check reservation number: %w", translateError(err))
	}
	if taken > 0 {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateReservationNumber, r.Number)
	}
	model := Reservation{
		Number:       r.Number,
		CustomerID:   r.CustomerID,
		FlightNumber: r.Flight.Number,
		DepartureAt:  r.Flight.DepartureAt.UTC(),
		Status:       string(r.Status),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		return fmt.Errorf("insert reservation %d: %w", r.Number, translateError(err))
	}
	return nil
}

func (s *Store) UpdateReservationStatus(ctx context.Context, number int, from, to domain.ReservationStatus) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("rnum = ? AND status = ?", number, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return 0, fmt.Errorf("update reservation %d: %w", number, translateError(result.Error))
	}
	return result.RowsAffected, nil
}

func (s *Store) InsertPlane(ctx context.Context, p domain.Plane) error {
	model := Plane{ID: p.ID, Make: p.Make, Model: p.Model, Age: p.Age, Seats: p.Seats}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("insert plane %d: %w", p.ID, translateError(err))
	}
	return nil
}

func (s *Store) GetPlane(ctx context.Context, id int) (*domain.Plane, error) {
	var model Plane
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlaneNotFound
		}
		return nil, fmt.Errorf("get plane %d: %w", id, translateError(err))
	}
	return &domain.Plane{ID: model.ID, Make: model.Make, Model: model.Model, Age: model.Age, Seats: model.Seats}, nil
}

func (s *Store) InsertPilot(ctx context.Context, p domain.Pilot) error {
	model := Pilot{ID: p.ID, Name: p.Name, Nationality: p.Nationality}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("insert pilot %d: %w", p.ID, translateError(err))
	}
	return nil
}

func (s *Store) InsertFlight(ctx context.Context, f domain.Flight) error {
	model := Flight{
		Number:           f.Number,
		DepartureAt:      f.DepartureAt.UTC(),
		Cost:             f.Cost,
		SeatsSold:        f.SeatsSold,
		Stops:            f.Stops,
		ArrivalAt:        f.ArrivalAt.UTC(),
		ArrivalAirport:   f.ArrivalAirport,
		DepartureAirport: f.DepartureAirport,
		PlaneID:          f.PlaneID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		return fmt.Errorf("insert flight %s: %w", f.Key(), translateError(err))
	}
	return nil
}

func (s *Store) InsertTechnician(ctx context.Context, t domain.Technician) error {
	model := Technician{ID: t.ID, FullName: t.FullName}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("insert technician %d: %w", t.ID, translateError(err))
	}
	return nil
}

func (s *Store) InsertRepair(ctx context.Context, r domain.Repair) error {
	model := Repair{ID: r.ID, PlaneID: r.PlaneID, RepairDate: r.RepairDate.UTC()}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		return fmt.Errorf("insert repair %d: %w", r.ID, translateError(err))
	}
	return nil
}

func (s *Store) RepairsPerPlane(ctx context.Context) ([]domain.PlaneRepairCount, error) {
	var counts []domain.PlaneRepairCount
	err := s.db.WithContext(ctx).
		Table("repairs AS r").
		Select("p.id AS plane_id, count(r.rid) AS repairs").
		Joins("JOIN planes p ON p.id = r.plane_id").
		Group("p.id").
		Order("repairs DESC, p.id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("repairs per plane: %w", translateError(err))
	}
	if counts == nil {
		counts = make([]domain.PlaneRepairCount, 0)
	}
	return counts, nil
}

// RepairsPerYear groups in Go: year extraction differs between every dialect GORM supports.
func (s *Store) RepairsPerYear(ctx context.Context) ([]domain.YearRepairCount, error) {
	var repairs []Repair
	if err := s.db.WithContext(ctx).Select("rid", "repair_date").Find(&repairs).Error; err != nil {
		return nil, fmt.Errorf("repairs per year: %w", translateError(err))
	}
	byYear := make(map[int]int)
	for _, r := range repairs {
		byYear[r.RepairDate.UTC().Year()]++
	}
	counts := make([]domain.YearRepairCount, 0, len(byYear))
	for year, n := range byYear {
		counts = append(counts, domain.YearRepairCount{Year: year, Repairs: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Repairs != counts[j].Repairs {
			return counts[i].Repairs < counts[j].Repairs
		}
		return counts[i].Year < counts[j].Year
	})
	return counts, nil
}

func (s *Store) CountPassengers(ctx context.Context, flightNumber int, status domain.ReservationStatus) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("fnum = ? AND status = ?", flightNumber, string(status)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count passengers: %w", translateError(err))
	}
	return int(count), nil
}

func toFlightInstance(row flightInstanceRow) domain.FlightInstance {
	return domain.FlightInstance{
		Flight: domain.Flight{
			Number:           row.Number,
			Cost:             row.Cost,
			SeatsSold:        row.SeatsSold,
			Stops:            row.Stops,
			DepartureAt:      row.DepartureAt.UTC(),
			ArrivalAt:        row.ArrivalAt.UTC(),
			ArrivalAirport:   row.ArrivalAirport,
			DepartureAirport: row.DepartureAirport,
			PlaneID:          row.PlaneID,
		},
		Capacity: row.Capacity,
	}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return repository.TranslatePGError(err)
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xFF {
		case sqliteConstraintCode:
			return constraintError(sqliteErr.Error(), "reservations.rnum", "reservations.cid")
		case sqliteBusyCode:
			return fmt.Errorf("%w: %s", domain.ErrConflict, sqliteErr.Error())
		}
		return err
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDuplicateEntry:
			return constraintError(mysqlErr.Message, "reservations.PRIMARY", "reservations_customer_flight_key")
		case mysqlForeignKey, mysqlCheckViolation:
			return fmt.Errorf("%w: %s", domain.ErrConstraintViolation, mysqlErr.Message)
		case mysqlDeadlock, mysqlLockWaitTimeout:
			return fmt.Errorf("%w: %s", domain.ErrConflict, mysqlErr.Message)
		}
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
	}
	return err
}

func constraintError(message, numberMarker, customerFlightMarker string) error {
	switch {
	case strings.Contains(message, numberMarker):
		return fmt.Errorf("%w: %s", domain.ErrDuplicateReservationNumber, message)
	case strings.Contains(message, customerFlightMarker):
		return fmt.Errorf("%w: %s", domain.ErrDuplicateReservation, message)
	}
	return fmt.Errorf("%w: %s", domain.ErrConstraintViolation, message)
}

var _ repository.Store = (*Store)(nil)
