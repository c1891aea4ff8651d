package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/repository"
	"github.com/Domenick1991/airops/internal/service/reservations"
	"github.com/Domenick1991/airops/internal/service/seats"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxAttempts = 2

type BookingUseCase interface {
	Book(ctx context.Context, req Request) (*Result, error)
}

// Cache drops whatever availability it holds for a flight instance.
type Cache interface {
	InvalidateFlight(ctx context.Context, key domain.FlightKey) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Request struct {
	CustomerID        int
	FlightNumber      int
	Departure         time.Time
	ReservationNumber int
	Status            domain.ReservationStatus
}

func (r Request) FlightKey() domain.FlightKey {
	return domain.NewFlightKey(r.FlightNumber, r.Departure)
}

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

type Result struct {
	Reservation    domain.Reservation
	PreviousStatus domain.ReservationStatus
	AvailableSeats int
	// Downgraded is set when Reserved was asked for but no seat was left.
	Downgraded bool
	Outcome    Outcome
}

type BookingService struct {
	store              repository.Store
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	maxAttempts        int
	logger             *zap.Logger
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithMaxAttempts bounds how many times a conflicting Book is run in total.
func WithMaxAttempts(attempts int) BookingServiceOption {
	return func(s *BookingService) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
	}
}

func WithLogger(logger *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBookingService(store repository.Store, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		store:       store,
		maxAttempts: defaultMaxAttempts,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book creates or moves the customer's reservation on one flight instance.
// Seat accounting and the reservation write commit together or not at all.
func (s *BookingService) Book(ctx context.Context, req Request) (*Result, error) {
	key := req.FlightKey()
	if err := validate(req); err != nil {
		return nil, domain.WrapBookingError("book", req.CustomerID, key, req.Status, err)
	}

	var (
		result *Result
		err    error
	)
	for attempt := 1; ; attempt++ {
		result, err = s.bookOnce(ctx, req, key)
		if err == nil || !domain.Retryable(err) || attempt >= s.maxAttempts {
			break
		}
		s.logger.Info("retrying booking",
			zap.Int("attempt", attempt),
			zap.Int("customer_id", req.CustomerID),
			zap.Stringer("flight", key),
			zap.Error(err))
	}

	if err != nil {
		s.logger.Warn("booking failed",
			zap.Int("customer_id", req.CustomerID),
			zap.Int("flight_number", key.Number),
			zap.Time("departure", key.DepartureAt),
			zap.String("desired_status", string(req.Status)),
			zap.Error(err))
		return nil, domain.WrapBookingError("book", req.CustomerID, key, req.Status, err)
	}

	s.logger.Info("booking settled",
		zap.Int("customer_id", req.CustomerID),
		zap.Int("flight_number", key.Number),
		zap.Time("departure", key.DepartureAt),
		zap.String("desired_status", string(req.Status)),
		zap.String("final_status", string(result.Reservation.Status)),
		zap.Bool("downgraded", result.Downgraded),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("available_seats", result.AvailableSeats))

	if result.Outcome != OutcomeUnchanged {
		s.afterCommit(ctx, result)
	}
	return result, nil
}

func validate(req Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customer id must be positive", domain.ErrValidation)
	}
	if req.FlightNumber <= 0 {
		return fmt.Errorf("%w: flight number must be positive", domain.ErrValidation)
	}
	if req.Departure.IsZero() {
		return fmt.Errorf("%w: departure is required", domain.ErrValidation)
	}
	if !req.Status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, string(req.Status))
	}
	return nil
}

func (s *BookingService) bookOnce(ctx context.Context, req Request, key domain.FlightKey) (*Result, error) {
	var result *Result
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.LockFlight(ctx, key); err != nil {
			return err
		}
		engine := seats.NewEngine(tx)
		machine := reservations.NewMachine(tx)

		existing, err := machine.Lookup(ctx, req.CustomerID, key)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			result, err = create(ctx, engine, machine, req, key)
		case err != nil:
			return err
		default:
			result, err = update(ctx, engine, machine, *existing, req.Status)
		}
		if err != nil {
			return err
		}

		available, err := engine.Available(ctx, key)
		if err != nil {
			return err
		}
		result.AvailableSeats = available
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func create(ctx context.Context, engine *seats.Engine, machine *reservations.Machine, req Request, key domain.FlightKey) (*Result, error) {
	status := req.Status
	downgraded := false
	if status == domain.ReservationStatusReserved {
		if err := engine.Reserve(ctx, key); err != nil {
			if !errors.Is(err, domain.ErrCapacityExceeded) {
				return nil, err
			}
			status = domain.ReservationStatusWaitlisted
			downgraded = true
		}
	}

	reservation, err := machine.Create(ctx, req.ReservationNumber, req.CustomerID, key, status)
	if err != nil {
		return nil, err
	}
	return &Result{Reservation: *reservation, Downgraded: downgraded, Outcome: OutcomeCreated}, nil
}

func update(ctx context.Context, engine *seats.Engine, machine *reservations.Machine, existing domain.Reservation, desired domain.ReservationStatus) (*Result, error) {
	current := existing.Status
	result := &Result{Reservation: existing, PreviousStatus: current, Outcome: OutcomeUnchanged}
	if current == desired {
		return result, nil
	}
	if !current.CanTransitionTo(desired) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, current.Name(), desired.Name())
	}

	switch {
	case desired.HoldsSeat():
		if err := engine.Reserve(ctx, existing.Flight); err != nil {
			if !errors.Is(err, domain.ErrCapacityExceeded) {
				return nil, err
			}
			// Only Waitlisted may move to Reserved, so the passenger simply stays queued.
			result.Downgraded = true
			return result, nil
		}
	case current.HoldsSeat():
		if err := engine.Release(ctx, existing.Flight); err != nil {
			return nil, err
		}
	}

	moved, err := machine.Transition(ctx, existing, desired)
	if err != nil {
		return nil, err
	}
	result.Reservation = *moved
	result.Outcome = OutcomeUpdated
	return result, nil
}

func (s *BookingService) afterCommit(ctx context.Context, result *Result) {
	flight := result.Reservation.Flight
	if s.cache != nil {
		if err := s.cache.InvalidateFlight(ctx, flight); err != nil {
			s.logger.Warn("invalidate flight cache", zap.Stringer("flight", flight), zap.Error(err))
		}
	}
	if err := s.publish(ctx, result); err != nil {
		s.logger.Warn("publish booking event",
			zap.Int("reservation_number", result.Reservation.Number),
			zap.Error(err))
	}
}

func (s *BookingService) publish(ctx context.Context, result *Result) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	eventType := domain.EventReservationUpdated
	if result.Outcome == OutcomeCreated {
		eventType = domain.EventReservationCreated
	}
	reservation := result.Reservation
	event := domain.BookingEvent{
		ID:                uuid.NewString(),
		Type:              eventType,
		ReservationNumber: reservation.Number,
		CustomerID:        reservation.CustomerID,
		FlightNumber:      reservation.Flight.Number,
		DepartureAt:       reservation.Flight.DepartureAt,
		PreviousStatus:    result.PreviousStatus,
		Status:            reservation.Status,
		Downgraded:        result.Downgraded,
		AvailableSeats:    result.AvailableSeats,
		OccurredAt:        s.now().UTC(),
	}
	messageKey := strconv.Itoa(reservation.Number)
	if err := s.producer.Publish(ctx, s.bookingTopic, messageKey, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, messageKey, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
