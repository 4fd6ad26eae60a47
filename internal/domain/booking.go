package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending                  BookingStatus = "PENDING"
	BookingStatusConfirmed                BookingStatus = "CONFIRMED"
	BookingStatusCompletedAwaitingPayment BookingStatus = "COMPLETED_AWAITING_PAYMENT"
	BookingStatusPaid                     BookingStatus = "PAID"
	BookingStatusCancelled                BookingStatus = "CANCELLED"
)

// MissionSweepStatuses are the booking statuses cancelled together with their mission.
var MissionSweepStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusPaid,
}

// AllowedTransitions is the booking state machine. Terminal states have no entry.
var AllowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:                  {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:                {BookingStatusCompletedAwaitingPayment, BookingStatusCancelled},
	BookingStatusCompletedAwaitingPayment: {BookingStatusPaid},
}

func CanTransition(from, to BookingStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusPaid || s == BookingStatusCancelled
}

type Booking struct {
	ID          string
	ClientID    string
	WorkerID    string
	MissionID   *string
	ServiceID   *string
	QuoteID     *string
	ScheduledAt time.Time
	Status      BookingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsParty reports whether the user is the client or the worker of the booking.
func (b *Booking) IsParty(userID string) bool {
	return userID != "" && (b.ClientID == userID || b.WorkerID == userID)
}
