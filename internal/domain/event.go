package domain

import "time"

const (
	EventReservationCreated = "reservation_created"
	EventReservationUpdated = "reservation_updated"
)

// BookingEvent is published after a booking commits a change.
type BookingEvent struct {
	ID                string            `json:"id"`
	Type              string            `json:"type"`
	ReservationNumber int               `json:"reservation_number"`
	CustomerID        int               `json:"customer_id"`
	FlightNumber      int               `json:"flight_number"`
	DepartureAt       time.Time         `json:"departure_at"`
	PreviousStatus    ReservationStatus `json:"previous_status,omitempty"`
	Status            ReservationStatus `json:"status"`
	Downgraded        bool              `json:"downgraded"`
	AvailableSeats    int               `json:"available_seats"`
	OccurredAt        time.Time         `json:"occurred_at"`
}

func (e BookingEvent) FlightKey() FlightKey {
	return NewFlightKey(e.FlightNumber, e.DepartureAt)
}
