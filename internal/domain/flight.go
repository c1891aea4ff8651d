package domain

import (
	"fmt"
	"strings"
	"time"
)

// DepartureLayout is the operator-facing departure format ("YYYY-MM-DD hh:mm").
const DepartureLayout = "2006-01-02 15:04"

// FlightKey identifies one scheduled instance of a flight number.
type FlightKey struct {
	Number      int
	DepartureAt time.Time
}

func NewFlightKey(number int, departureAt time.Time) FlightKey {
	return FlightKey{Number: number, DepartureAt: departureAt.UTC()}
}

func (k FlightKey) String() string {
	return fmt.Sprintf("%d@%s", k.Number, k.DepartureAt.UTC().Format(DepartureLayout))
}

// ParseDeparture accepts DepartureLayout or RFC3339 and returns the instant in UTC.
func ParseDeparture(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: departure is required", ErrValidation)
	}
	if t, err := time.ParseInLocation(DepartureLayout, trimmed, time.UTC); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: departure %q must be %q or RFC3339", ErrValidation, raw, DepartureLayout)
	}
	return t.UTC(), nil
}

type Flight struct {
	Number           int
	Cost             int64
	SeatsSold        int
	Stops            int
	DepartureAt      time.Time
	ArrivalAt        time.Time
	ArrivalAirport   string
	DepartureAirport string
	PlaneID          int
}

func (f Flight) Key() FlightKey {
	return NewFlightKey(f.Number, f.DepartureAt)
}

// FlightInstance is a flight joined with the capacity of the plane flying it.
type FlightInstance struct {
	Flight
	Capacity int
}

// AvailableSeats returns capacity minus sold. A negative result means the
// stored rows already violate the overbooking invariant.
func (f FlightInstance) AvailableSeats() (int, error) {
	available := f.Capacity - f.SeatsSold
	if available < 0 {
		return 0, fmt.Errorf("%w: flight %s sold %d seats on a %d seat plane", ErrDataIntegrity, f.Key(), f.SeatsSold, f.Capacity)
	}
	return available, nil
}

// DateLayout is the calendar-day format used for repair dates.
const DateLayout = "2006-01-02"

func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be %q", ErrValidation, raw, DateLayout)
	}
	return t, nil
}
