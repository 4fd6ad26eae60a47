package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MissionUpdate closes or assigns the booking's mission inside a transition.
type MissionUpdate struct {
	MissionID string
	From      []domain.MissionStatus
	To        domain.MissionStatus
	// Required fails the transition when the mission is not in From.
	Required bool
	// CancelPending cancels the other PENDING candidacies on the mission.
	CancelPending bool
}

// TransitionCommand is one state machine step, applied atomically.
type TransitionCommand struct {
	BookingID string
	From      domain.BookingStatus
	To        domain.BookingStatus
	Mission   *MissionUpdate
	Invoice   *domain.Invoice
}

type BookingRepository interface {
	// Apply records a candidacy; the mission must still be OPEN when the row is written.
	Apply(ctx context.Context, booking *domain.Booking) error
	Create(ctx context.Context, booking *domain.Booking) error
	GetDetails(ctx context.Context, id string) (*domain.BookingDetails, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListByMission(ctx context.Context, missionID string) ([]domain.Booking, error)
	Transition(ctx context.Context, cmd TransitionCommand) (*domain.Booking, error)
	GetInvoice(ctx context.Context, bookingID string) (*domain.Invoice, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, client_id, worker_id, mission_id, service_id, quote_id, scheduled_at, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.ClientID, &b.WorkerID, &b.MissionID, &b.ServiceID, &b.QuoteID, &b.ScheduledAt, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func insertBooking(ctx context.Context, q querier, b *domain.Booking) error {
	err := q.QueryRow(ctx, `INSERT INTO bookings (id, client_id, worker_id, mission_id, service_id, quote_id, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		b.ID, b.ClientID, b.WorkerID, b.MissionID, b.ServiceID, b.QuoteID, b.ScheduledAt, b.Status).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		if b.ServiceID != nil {
			return fmt.Errorf("%w: service %s is already booked at %s", domain.ErrConflict, *b.ServiceID, b.ScheduledAt.Format("2006-01-02T15:04Z07:00"))
		}
		return fmt.Errorf("%w: worker %s already holds a booking for this mission", domain.ErrConflict, b.WorkerID)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: booking references an unknown record", domain.ErrNotFound)
	default:
		return err
	}
}

func (r *PGBookingRepository) Apply(ctx context.Context, b *domain.Booking) error {
	if b.MissionID == nil {
		return fmt.Errorf("%w: candidacy without mission", domain.ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status domain.MissionStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM missions WHERE id=$1 FOR SHARE`, *b.MissionID).Scan(&status); err != nil {
		return notFound(err, "mission", *b.MissionID)
	}
	if status != domain.MissionStatusOpen {
		return fmt.Errorf("%w: mission %s is %s, applications require OPEN", domain.ErrInvalidState, *b.MissionID, status)
	}

	if err := insertBooking(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return insertBooking(ctx, r.db, b)
}

func (r *PGBookingRepository) GetDetails(ctx context.Context, id string) (*domain.BookingDetails, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}

	details := &domain.BookingDetails{Booking: *b}
	if b.MissionID != nil {
		if details.Mission, err = getMission(ctx, r.db, *b.MissionID); err != nil {
			return nil, err
		}
	}
	if b.ServiceID != nil {
		if details.Service, err = getOffer(ctx, r.db, *b.ServiceID); err != nil {
			return nil, err
		}
	}
	if b.QuoteID != nil {
		if details.Quote, err = getQuote(ctx, r.db, *b.QuoteID); err != nil {
			return nil, err
		}
	}
	if details.Invoice, err = optionalInvoice(r.GetInvoice(ctx, b.ID)); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *PGBookingRepository) ListForUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE client_id=$1 OR worker_id=$1 ORDER BY scheduled_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListByMission(ctx context.Context, missionID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE mission_id=$1 ORDER BY created_at, id`, missionID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) Transition(ctx context.Context, cmd TransitionCommand) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Mission row first, in the same order as mission cancellation.
	if cmd.Mission != nil {
		var status domain.MissionStatus
		if err := tx.QueryRow(ctx, `SELECT status FROM missions WHERE id=$1 FOR UPDATE`, cmd.Mission.MissionID).Scan(&status); err != nil {
			return nil, notFound(err, "mission", cmd.Mission.MissionID)
		}
		if containsMissionStatus(cmd.Mission.From, status) {
			if _, err := tx.Exec(ctx, `UPDATE missions SET status=$1, updated_at=now() WHERE id=$2`, cmd.Mission.To, cmd.Mission.MissionID); err != nil {
				return nil, err
			}
		} else if cmd.Mission.Required {
			return nil, fmt.Errorf("%w: mission %s is %s", domain.ErrInvalidState, cmd.Mission.MissionID, status)
		}
	}

	updated, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE id=$2 AND status=$3
		RETURNING `+bookingColumns, cmd.To, cmd.BookingID, cmd.From))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id=$1)`, cmd.BookingID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, cmd.BookingID)
		}
		return nil, fmt.Errorf("%w: booking %s is no longer %s", domain.ErrConflict, cmd.BookingID, cmd.From)
	}

	if cmd.Mission != nil && cmd.Mission.CancelPending {
		if _, err := tx.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE mission_id=$2 AND id<>$3 AND status=$4`,
			domain.BookingStatusCancelled, cmd.Mission.MissionID, cmd.BookingID, domain.BookingStatusPending); err != nil {
			return nil, err
		}
	}

	if inv := cmd.Invoice; inv != nil {
		err := tx.QueryRow(ctx, `INSERT INTO invoices (id, booking_id, amount, url) VALUES ($1, $2, $3, $4) RETURNING created_at`,
			inv.ID, inv.BookingID, inv.Amount.StringFixed(2), inv.URL).Scan(&inv.CreatedAt)
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: booking %s is already invoiced", domain.ErrConflict, inv.BookingID)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PGBookingRepository) GetInvoice(ctx context.Context, bookingID string) (*domain.Invoice, error) {
	var inv domain.Invoice
	var amount string
	err := r.db.QueryRow(ctx, `SELECT id, booking_id, amount::text, url, created_at FROM invoices WHERE booking_id=$1`, bookingID).
		Scan(&inv.ID, &inv.BookingID, &amount, &inv.URL, &inv.CreatedAt)
	if err != nil {
		return nil, notFound(err, "invoice for booking", bookingID)
	}
	if inv.Amount, err = parseAmount(amount); err != nil {
		return nil, err
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

var _ BookingRepository = (*PGBookingRepository)(nil)
