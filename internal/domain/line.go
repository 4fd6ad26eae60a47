package domain

import (
	"fmt"
	"strings"
)

// LineKind is the type of entry shown on a user's booking list.
type LineKind string

const (
	LineMission LineKind = "MISSION"
	LineBooking LineKind = "SERVICE_BOOKING"
)

// ParseLineKind turns the raw boundary value into a LineKind.
func ParseLineKind(raw string) (LineKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "MISSION":
		return LineMission, nil
	case "SERVICE_BOOKING", "BOOKING":
		return LineBooking, nil
	default:
		return "", fmt.Errorf("%w: unknown line type %q", ErrValidation, raw)
	}
}

// LineRef points at a mission (LineMission) or a single booking (LineBooking).
type LineRef struct {
	Kind LineKind
	ID   string
}

// LineDetails is what a party sees when opening a line.
type LineDetails struct {
	Kind     LineKind
	Mission  *Mission
	Bookings []Booking
	Booking  *BookingDetails
}
