package memrepo

import (
	"context"
	"fmt"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/repository"
)

type bookingRepo struct{ db *DB }

func (r bookingRepo) Apply(_ context.Context, b *domain.Booking) error {
	if b.MissionID == nil {
		return fmt.Errorf("%w: candidacy without mission", domain.ErrValidation)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.missions[*b.MissionID]
	if !ok {
		return fmt.Errorf("%w: mission %s", domain.ErrNotFound, *b.MissionID)
	}
	if m.Status != domain.MissionStatusOpen {
		return fmt.Errorf("%w: mission %s is %s, applications require OPEN", domain.ErrInvalidState, m.ID, m.Status)
	}
	return r.db.insertBooking(b)
}

func (r bookingRepo) Create(_ context.Context, b *domain.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.insertBooking(b)
}

func (r bookingRepo) GetDetails(_ context.Context, id string) (*domain.BookingDetails, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b, ok := r.db.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, id)
	}
	details := &domain.BookingDetails{Booking: cloneBooking(b)}
	if b.MissionID != nil {
		m, ok := r.db.missions[*b.MissionID]
		if !ok {
			return nil, fmt.Errorf("%w: mission %s", domain.ErrNotFound, *b.MissionID)
		}
		details.Mission = &m
	}
	if b.ServiceID != nil {
		o, ok := r.db.offers[*b.ServiceID]
		if !ok {
			return nil, fmt.Errorf("%w: service %s", domain.ErrNotFound, *b.ServiceID)
		}
		details.Service = &o
	}
	if b.QuoteID != nil {
		q, ok := r.db.quotes[*b.QuoteID]
		if !ok {
			return nil, fmt.Errorf("%w: quote %s", domain.ErrNotFound, *b.QuoteID)
		}
		q = cloneQuote(q)
		details.Quote = &q
	}
	if inv, ok := r.db.invoices[id]; ok {
		details.Invoice = &inv
	}
	return details, nil
}

func (r bookingRepo) ListForUser(_ context.Context, userID string) ([]domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Booking, 0)
	for _, b := range r.db.bookings {
		if b.IsParty(userID) {
			out = append(out, cloneBooking(b))
		}
	}
	sortBookings(out, func(a, b domain.Booking) bool {
		if a.ScheduledAt.Equal(b.ScheduledAt) {
			return a.ID < b.ID
		}
		return a.ScheduledAt.After(b.ScheduledAt)
	})
	return out, nil
}

func (r bookingRepo) ListByMission(_ context.Context, missionID string) ([]domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Booking, 0)
	for _, b := range r.db.bookings {
		if b.MissionID != nil && *b.MissionID == missionID {
			out = append(out, cloneBooking(b))
		}
	}
	sortBookings(out, func(a, b domain.Booking) bool {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, nil
}

func (r bookingRepo) Transition(_ context.Context, cmd repository.TransitionCommand) (*domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	// Validate everything before the first write so a failure changes nothing.
	b, ok := r.db.bookings[cmd.BookingID]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, cmd.BookingID)
	}
	if b.Status != cmd.From {
		return nil, fmt.Errorf("%w: booking %s is no longer %s", domain.ErrConflict, cmd.BookingID, cmd.From)
	}

	var mission domain.Mission
	updateMission := false
	if cmd.Mission != nil {
		mission, ok = r.db.missions[cmd.Mission.MissionID]
		if !ok {
			return nil, fmt.Errorf("%w: mission %s", domain.ErrNotFound, cmd.Mission.MissionID)
		}
		updateMission = containsMissionStatus(cmd.Mission.From, mission.Status)
		if !updateMission && cmd.Mission.Required {
			return nil, fmt.Errorf("%w: mission %s is %s", domain.ErrInvalidState, mission.ID, mission.Status)
		}
	}
	if cmd.Invoice != nil {
		if _, exists := r.db.invoices[cmd.Invoice.BookingID]; exists {
			return nil, fmt.Errorf("%w: booking %s is already invoiced", domain.ErrConflict, cmd.Invoice.BookingID)
		}
	}

	now := r.db.now()
	if updateMission {
		mission.Status = cmd.Mission.To
		mission.UpdatedAt = now
		r.db.missions[mission.ID] = mission
	}

	b.Status = cmd.To
	b.UpdatedAt = now
	r.db.bookings[b.ID] = b

	if cmd.Mission != nil && cmd.Mission.CancelPending {
		for id, other := range r.db.bookings {
			if id == b.ID || other.MissionID == nil || *other.MissionID != cmd.Mission.MissionID || other.Status != domain.BookingStatusPending {
				continue
			}
			other.Status = domain.BookingStatusCancelled
			other.UpdatedAt = now
			r.db.bookings[id] = other
		}
	}

	if cmd.Invoice != nil {
		cmd.Invoice.CreatedAt = now
		r.db.invoices[cmd.Invoice.BookingID] = *cmd.Invoice
	}

	updated := cloneBooking(b)
	return &updated, nil
}

func (r bookingRepo) GetInvoice(_ context.Context, bookingID string) (*domain.Invoice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	inv, ok := r.db.invoices[bookingID]
	if !ok {
		return nil, fmt.Errorf("%w: invoice for booking %s", domain.ErrNotFound, bookingID)
	}
	return &inv, nil
}

func containsMissionStatus(set []domain.MissionStatus, s domain.MissionStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

var _ repository.BookingRepository = bookingRepo{}
