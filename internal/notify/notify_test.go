package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, event domain.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateFlight(ctx context.Context, key domain.FlightKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var event = domain.BookingEvent{
	ID:                "evt-1",
	Type:              domain.EventReservationCreated,
	ReservationNumber: 42,
	CustomerID:        7,
	FlightNumber:      101,
	DepartureAt:       time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
	Status:            domain.ReservationStatusWaitlisted,
	Downgraded:        true,
}

func TestDispatcher_Handle(t *testing.T) {
	ctx := context.Background()
	body, err := json.Marshal(event)
	require.NoError(t, err)

	notifier := &MockNotifier{}
	invalidator := &MockInvalidator{}
	notifier.On("Send", ctx, event).Return(nil).Once()
	invalidator.On("InvalidateFlight", ctx, event.FlightKey()).Return(errors.New("redis down")).Once()

	require.NoError(t, NewDispatcher(notifier, invalidator, nil).Handle(ctx, body))
	notifier.AssertExpectations(t)
	invalidator.AssertExpectations(t)
}

func TestDispatcher_HandleSkipsGarbage(t *testing.T) {
	notifier := &MockNotifier{}

	require.NoError(t, NewDispatcher(notifier, nil, nil).Handle(context.Background(), []byte("not json")))
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSender_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	require.NoError(t, NewSender(zap.New(core)).Send(context.Background(), event))

	entries := logs.FilterMessage("passenger notification").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(7), fields["customer_id"])
	assert.Equal(t, "Waitlisted", fields["status"])
	assert.Equal(t, true, fields["downgraded"])
}
