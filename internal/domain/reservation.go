package domain

import (
	"fmt"
	"strings"
)

// ReservationStatus is the closed set of states a reservation can be in.
type ReservationStatus string

const (
	ReservationStatusWaitlisted ReservationStatus = "W"
	ReservationStatusReserved   ReservationStatus = "R"
	ReservationStatusCancelled  ReservationStatus = "C"
)

// ParseReservationStatus accepts the one-letter codes and the full names, case-insensitively.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "W", "WAITLISTED":
		return ReservationStatusWaitlisted, nil
	case "R", "RESERVED":
		return ReservationStatusReserved, nil
	case "C", "CANCELLED", "CANCELED":
		return ReservationStatusCancelled, nil
	}
	return "", fmt.Errorf("%w: %q (expected W, R or C)", ErrInvalidStatus, raw)
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusWaitlisted, ReservationStatusReserved, ReservationStatusCancelled:
		return true
	}
	return false
}

// Active reports whether the status still claims a place on the flight.
func (s ReservationStatus) Active() bool {
	return s == ReservationStatusWaitlisted || s == ReservationStatusReserved
}

// HoldsSeat reports whether the status occupies a sold seat.
func (s ReservationStatus) HoldsSeat() bool {
	return s == ReservationStatusReserved
}

func (s ReservationStatus) Name() string {
	switch s {
	case ReservationStatusWaitlisted:
		return "Waitlisted"
	case ReservationStatusReserved:
		return "Reserved"
	case ReservationStatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// Cancelled -> Reserved is absent: a cancelled passenger re-enters through Waitlisted.
var transitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusWaitlisted: {ReservationStatusReserved, ReservationStatusCancelled},
	ReservationStatusReserved:   {ReservationStatusCancelled, ReservationStatusWaitlisted},
	ReservationStatusCancelled:  {ReservationStatusWaitlisted},
}

// CanTransitionTo reports whether moving to next is legal. Same-state moves are always legal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Reservation struct {
	Number     int
	CustomerID int
	Flight     FlightKey
	Status     ReservationStatus
}
