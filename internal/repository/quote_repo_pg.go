package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Quote, error)
	// Accept marks the quote ACCEPTED and stores the booking it produces, atomically.
	Accept(ctx context.Context, quoteID string, booking *domain.Booking) (*domain.Quote, error)
	Reject(ctx context.Context, quoteID string) (*domain.Quote, error)
}

type PGQuoteRepository struct {
	db *pgxpool.Pool
}

func NewQuoteRepository(db *pgxpool.Pool) QuoteRepository {
	return &PGQuoteRepository{db: db}
}

const quoteColumns = `id, establishment_id, freelance_id, mission_id, amount::text, description, start_at, end_at, status, proposed_by, created_at, updated_at`

func scanQuote(row pgx.Row) (*domain.Quote, error) {
	var q domain.Quote
	var amount string
	if err := row.Scan(&q.ID, &q.EstablishmentID, &q.FreelanceID, &q.MissionID, &amount, &q.Description, &q.Window.Start, &q.Window.End, &q.Status, &q.ProposedBy, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	q.Amount = parsed
	return &q, nil
}

func getQuote(ctx context.Context, q querier, id string) (*domain.Quote, error) {
	quote, err := scanQuote(q.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "quote", id)
	}
	return quote, nil
}

func (r *PGQuoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	err := r.db.QueryRow(ctx, `INSERT INTO quotes (id, establishment_id, freelance_id, mission_id, amount, description, start_at, end_at, status, proposed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		q.ID, q.EstablishmentID, q.FreelanceID, q.MissionID, q.Amount.String(), q.Description, q.Window.Start, q.Window.End, q.Status, q.ProposedBy).
		Scan(&q.CreatedAt, &q.UpdatedAt)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: mission referenced by quote", domain.ErrNotFound)
	}
	return err
}

func (r *PGQuoteRepository) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	return getQuote(ctx, r.db, id)
}

func (r *PGQuoteRepository) ListForUser(ctx context.Context, userID string) ([]domain.Quote, error) {
	rows, err := r.db.Query(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE establishment_id=$1 OR freelance_id=$1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := make([]domain.Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}

// settle moves a PENDING quote to status inside tx.
func settle(ctx context.Context, q querier, id string, status domain.QuoteStatus) (*domain.Quote, error) {
	quote, err := scanQuote(q.QueryRow(ctx, `UPDATE quotes SET status=$1, updated_at=now()
		WHERE id=$2 AND status=$3
		RETURNING `+quoteColumns, status, id, domain.QuoteStatusPending))
	if err == nil {
		return quote, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	current, getErr := getQuote(ctx, q, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: quote %s is %s, only PENDING quotes can be answered", domain.ErrInvalidState, id, current.Status)
}

func (r *PGQuoteRepository) Accept(ctx context.Context, quoteID string, b *domain.Booking) (*domain.Quote, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	quote, err := settle(ctx, tx, quoteID, domain.QuoteStatusAccepted)
	if err != nil {
		return nil, err
	}
	if err := insertBooking(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *PGQuoteRepository) Reject(ctx context.Context, quoteID string) (*domain.Quote, error) {
	return settle(ctx, r.db, quoteID, domain.QuoteStatusRejected)
}

var _ QuoteRepository = (*PGQuoteRepository)(nil)
