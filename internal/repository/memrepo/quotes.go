package memrepo

import (
	"context"
	"fmt"
	"sort"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/repository"
)

type quoteRepo struct{ db *DB }

func (r quoteRepo) Create(_ context.Context, q *domain.Quote) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.quotes[q.ID]; ok {
		return fmt.Errorf("%w: quote %s already exists", domain.ErrConflict, q.ID)
	}
	if q.MissionID != nil {
		if _, ok := r.db.missions[*q.MissionID]; !ok {
			return fmt.Errorf("%w: mission referenced by quote", domain.ErrNotFound)
		}
	}
	now := r.db.now()
	q.CreatedAt, q.UpdatedAt = now, now
	r.db.quotes[q.ID] = cloneQuote(*q)
	return nil
}

func (r quoteRepo) GetByID(_ context.Context, id string) (*domain.Quote, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	q, ok := r.db.quotes[id]
	if !ok {
		return nil, fmt.Errorf("%w: quote %s", domain.ErrNotFound, id)
	}
	q = cloneQuote(q)
	return &q, nil
}

func (r quoteRepo) ListForUser(_ context.Context, userID string) ([]domain.Quote, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Quote, 0)
	for _, q := range r.db.quotes {
		if q.EstablishmentID == userID || q.FreelanceID == userID {
			out = append(out, cloneQuote(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r quoteRepo) pending(id string) (domain.Quote, error) {
	q, ok := r.db.quotes[id]
	if !ok {
		return q, fmt.Errorf("%w: quote %s", domain.ErrNotFound, id)
	}
	if q.Status != domain.QuoteStatusPending {
		return q, fmt.Errorf("%w: quote %s is %s, only PENDING quotes can be answered", domain.ErrInvalidState, id, q.Status)
	}
	return q, nil
}

func (r quoteRepo) Accept(_ context.Context, quoteID string, b *domain.Booking) (*domain.Quote, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	q, err := r.pending(quoteID)
	if err != nil {
		return nil, err
	}
	if err := r.db.insertBooking(b); err != nil {
		return nil, err
	}
	q.Status = domain.QuoteStatusAccepted
	q.UpdatedAt = r.db.now()
	r.db.quotes[quoteID] = q

	q = cloneQuote(q)
	return &q, nil
}

func (r quoteRepo) Reject(_ context.Context, quoteID string) (*domain.Quote, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	q, err := r.pending(quoteID)
	if err != nil {
		return nil, err
	}
	q.Status = domain.QuoteStatusRejected
	q.UpdatedAt = r.db.now()
	r.db.quotes[quoteID] = q

	q = cloneQuote(q)
	return &q, nil
}

var _ repository.QuoteRepository = quoteRepo{}
