package memrepo

import (
	"context"
	"fmt"
	"sort"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/repository"
)

type offerRepo struct{ db *DB }

func (r offerRepo) Create(_ context.Context, o *domain.ServiceOffer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.offers[o.ID]; ok {
		return fmt.Errorf("%w: service %s already exists", domain.ErrConflict, o.ID)
	}
	o.CreatedAt = r.db.now()
	r.db.offers[o.ID] = *o
	return nil
}

func (r offerRepo) GetByID(_ context.Context, id string) (*domain.ServiceOffer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	o, ok := r.db.offers[id]
	if !ok {
		return nil, fmt.Errorf("%w: service %s", domain.ErrNotFound, id)
	}
	return &o, nil
}

func (r offerRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.ServiceOffer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.ServiceOffer, 0)
	for _, o := range r.db.offers {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ repository.OfferRepository = offerRepo{}
