package notify

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/airops/internal/domain"
	"go.uber.org/zap"
)

// Sender tells a passenger what happened to their reservation. Delivery
// goes to the structured log until a real channel is configured.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event domain.BookingEvent) error {
	s.logger.Info("passenger notification",
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.Int("customer_id", event.CustomerID),
		zap.Int("reservation_number", event.ReservationNumber),
		zap.Stringer("flight", event.FlightKey()),
		zap.String("status", event.Status.Name()),
		zap.Bool("downgraded", event.Downgraded))
	return nil
}

type Notifier interface {
	Send(ctx context.Context, event domain.BookingEvent) error
}

type Invalidator interface {
	InvalidateFlight(ctx context.Context, key domain.FlightKey) error
}

// Dispatcher turns raw broker messages into notifications.
type Dispatcher struct {
	notifier    Notifier
	invalidator Invalidator
	logger      *zap.Logger
}

// NewDispatcher accepts a nil invalidator.
func NewDispatcher(notifier Notifier, invalidator Invalidator, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{notifier: notifier, invalidator: invalidator, logger: logger}
}

// Handle drops undecodable messages rather than blocking the stream on them.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) error {
	var event domain.BookingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		d.logger.Warn("decode booking event", zap.Error(err))
		return nil
	}

	if d.invalidator != nil {
		if err := d.invalidator.InvalidateFlight(ctx, event.FlightKey()); err != nil {
			d.logger.Warn("invalidate flight cache", zap.Stringer("flight", event.FlightKey()), zap.Error(err))
		}
	}
	return d.notifier.Send(ctx, event)
}
