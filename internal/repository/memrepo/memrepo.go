// Package memrepo keeps every repository in process memory. Each command runs
// under one lock, which gives it the same all-or-nothing behaviour as a
// PostgreSQL transaction. It backs the service tests and local runs without a database.
package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/repository"
)

type DB struct {
	mu       sync.Mutex
	now      func() time.Time
	missions map[string]domain.Mission
	offers   map[string]domain.ServiceOffer
	quotes   map[string]domain.Quote
	bookings map[string]domain.Booking
	invoices map[string]domain.Invoice // by booking id
}

func New() *DB {
	return &DB{
		now:      time.Now,
		missions: make(map[string]domain.Mission),
		offers:   make(map[string]domain.ServiceOffer),
		quotes:   make(map[string]domain.Quote),
		bookings: make(map[string]domain.Booking),
		invoices: make(map[string]domain.Invoice),
	}
}

func (db *DB) Missions() repository.MissionRepository { return missionRepo{db} }
func (db *DB) Bookings() repository.BookingRepository { return bookingRepo{db} }
func (db *DB) Quotes() repository.QuoteRepository     { return quoteRepo{db} }
func (db *DB) Offers() repository.OfferRepository     { return offerRepo{db} }

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneBooking(b domain.Booking) domain.Booking {
	b.MissionID = clonePtr(b.MissionID)
	b.ServiceID = clonePtr(b.ServiceID)
	b.QuoteID = clonePtr(b.QuoteID)
	return b
}

func cloneQuote(q domain.Quote) domain.Quote {
	q.MissionID = clonePtr(q.MissionID)
	return q
}

// checkUnique mirrors the partial unique indexes on bookings.
func (db *DB) checkUnique(b *domain.Booking) error {
	for _, other := range db.bookings {
		if other.Status == domain.BookingStatusCancelled || other.ID == b.ID {
			continue
		}
		if b.MissionID != nil && other.MissionID != nil && *b.MissionID == *other.MissionID && b.WorkerID == other.WorkerID {
			return fmt.Errorf("%w: worker %s already holds a booking for this mission", domain.ErrConflict, b.WorkerID)
		}
		if b.ServiceID != nil && other.ServiceID != nil && *b.ServiceID == *other.ServiceID && b.ScheduledAt.Equal(other.ScheduledAt) {
			return fmt.Errorf("%w: service %s is already booked at %s", domain.ErrConflict, *b.ServiceID, b.ScheduledAt.Format(time.RFC3339))
		}
		if b.QuoteID != nil && other.QuoteID != nil && *b.QuoteID == *other.QuoteID {
			return fmt.Errorf("%w: quote %s already produced a booking", domain.ErrConflict, *b.QuoteID)
		}
	}
	return nil
}

func (db *DB) insertBooking(b *domain.Booking) error {
	if _, ok := db.bookings[b.ID]; ok {
		return fmt.Errorf("%w: booking %s already exists", domain.ErrConflict, b.ID)
	}
	if b.MissionID != nil {
		if _, ok := db.missions[*b.MissionID]; !ok {
			return fmt.Errorf("%w: booking references an unknown record", domain.ErrNotFound)
		}
	}
	if b.ServiceID != nil {
		if _, ok := db.offers[*b.ServiceID]; !ok {
			return fmt.Errorf("%w: booking references an unknown record", domain.ErrNotFound)
		}
	}
	if err := db.checkUnique(b); err != nil {
		return err
	}
	now := db.now()
	b.CreatedAt, b.UpdatedAt = now, now
	db.bookings[b.ID] = cloneBooking(*b)
	return nil
}

func sortBookings(bookings []domain.Booking, less func(a, b domain.Booking) bool) {
	sort.Slice(bookings, func(i, j int) bool { return less(bookings[i], bookings[j]) })
}

type missionRepo struct{ db *DB }

func (r missionRepo) Create(_ context.Context, m *domain.Mission) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.missions[m.ID]; ok {
		return fmt.Errorf("%w: mission %s already exists", domain.ErrConflict, m.ID)
	}
	now := r.db.now()
	m.CreatedAt, m.UpdatedAt = now, now
	r.db.missions[m.ID] = *m
	return nil
}

func (r missionRepo) GetByID(_ context.Context, id string) (*domain.Mission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.missions[id]
	if !ok {
		return nil, fmt.Errorf("%w: mission %s", domain.ErrNotFound, id)
	}
	return &m, nil
}

func (r missionRepo) ListOpen(_ context.Context) ([]domain.Mission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Mission, 0)
	for _, m := range r.db.missions {
		if m.Status == domain.MissionStatusOpen {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Window.Start.Equal(out[j].Window.Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Window.Start.Before(out[j].Window.Start)
	})
	return out, nil
}

func (r missionRepo) Cancel(_ context.Context, id string) ([]domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.missions[id]
	if !ok {
		return nil, fmt.Errorf("%w: mission %s", domain.ErrNotFound, id)
	}
	if m.Status != domain.MissionStatusOpen && m.Status != domain.MissionStatusAssigned {
		return nil, fmt.Errorf("%w: mission %s is %s and can no longer be cancelled", domain.ErrInvalidState, id, m.Status)
	}

	now := r.db.now()
	m.Status = domain.MissionStatusCancelled
	m.UpdatedAt = now
	r.db.missions[id] = m

	cancelled := make([]domain.Booking, 0)
	for bid, b := range r.db.bookings {
		if b.MissionID == nil || *b.MissionID != id || !inSweep(b.Status) {
			continue
		}
		b.Status = domain.BookingStatusCancelled
		b.UpdatedAt = now
		r.db.bookings[bid] = b
		cancelled = append(cancelled, cloneBooking(b))
	}
	sortBookings(cancelled, func(a, b domain.Booking) bool { return a.ID < b.ID })
	return cancelled, nil
}

func inSweep(s domain.BookingStatus) bool {
	for _, v := range domain.MissionSweepStatuses {
		if v == s {
			return true
		}
	}
	return false
}

var _ repository.MissionRepository = missionRepo{}
