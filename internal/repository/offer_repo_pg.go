package repository

import (
	"context"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferRepository interface {
	Create(ctx context.Context, offer *domain.ServiceOffer) error
	GetByID(ctx context.Context, id string) (*domain.ServiceOffer, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.ServiceOffer, error)
}

type PGOfferRepository struct {
	db *pgxpool.Pool
}

func NewOfferRepository(db *pgxpool.Pool) OfferRepository {
	return &PGOfferRepository{db: db}
}

const offerColumns = `id, owner_id, title, description, price::text, created_at`

func scanOffer(row pgx.Row) (*domain.ServiceOffer, error) {
	var o domain.ServiceOffer
	var price string
	if err := row.Scan(&o.ID, &o.OwnerID, &o.Title, &o.Description, &price, &o.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := parseAmount(price)
	if err != nil {
		return nil, err
	}
	o.Price = parsed
	return &o, nil
}

func getOffer(ctx context.Context, q querier, id string) (*domain.ServiceOffer, error) {
	o, err := scanOffer(q.QueryRow(ctx, `SELECT `+offerColumns+` FROM service_offers WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "service", id)
	}
	return o, nil
}

func (r *PGOfferRepository) Create(ctx context.Context, o *domain.ServiceOffer) error {
	return r.db.QueryRow(ctx, `INSERT INTO service_offers (id, owner_id, title, description, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		o.ID, o.OwnerID, o.Title, o.Description, o.Price.String()).
		Scan(&o.CreatedAt)
}

func (r *PGOfferRepository) GetByID(ctx context.Context, id string) (*domain.ServiceOffer, error) {
	return getOffer(ctx, r.db, id)
}

func (r *PGOfferRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.ServiceOffer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+offerColumns+` FROM service_offers WHERE owner_id=$1 ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]domain.ServiceOffer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

var _ OfferRepository = (*PGOfferRepository)(nil)
