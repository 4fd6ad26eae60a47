package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type MissionStatus string

const (
	MissionStatusOpen      MissionStatus = "OPEN"
	MissionStatusAssigned  MissionStatus = "ASSIGNED"
	MissionStatusCompleted MissionStatus = "COMPLETED"
	MissionStatusCancelled MissionStatus = "CANCELLED"
)

// Window is a time range whose end is strictly after its start.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrValidation)
	}
	if !w.End.After(w.Start) {
		return fmt.Errorf("%w: end must be after start", ErrValidation)
	}
	return nil
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether the window intersects the closed range [from, to].
func (w Window) Overlaps(from, to time.Time) bool {
	return !w.Start.After(to) && !w.End.Before(from)
}

type Mission struct {
	ID         string
	ClientID   string
	Title      string
	Window     Window
	HourlyRate decimal.Decimal
	Location   string
	Status     MissionStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsClosed reports whether the mission no longer accepts any status change.
func (m *Mission) IsClosed() bool {
	return m.Status == MissionStatusCompleted || m.Status == MissionStatusCancelled
}
