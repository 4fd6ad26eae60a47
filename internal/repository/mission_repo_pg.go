package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MissionRepository interface {
	Create(ctx context.Context, mission *domain.Mission) error
	GetByID(ctx context.Context, id string) (*domain.Mission, error)
	ListOpen(ctx context.Context) ([]domain.Mission, error)
	// Cancel closes the mission and cancels its live bookings in one transaction.
	Cancel(ctx context.Context, id string) ([]domain.Booking, error)
}

type PGMissionRepository struct {
	db *pgxpool.Pool
}

func NewMissionRepository(db *pgxpool.Pool) MissionRepository {
	return &PGMissionRepository{db: db}
}

const missionColumns = `id, client_id, title, start_at, end_at, hourly_rate::text, location, status, created_at, updated_at`

func scanMission(row pgx.Row) (*domain.Mission, error) {
	var m domain.Mission
	var rate string
	if err := row.Scan(&m.ID, &m.ClientID, &m.Title, &m.Window.Start, &m.Window.End, &rate, &m.Location, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	amount, err := parseAmount(rate)
	if err != nil {
		return nil, err
	}
	m.HourlyRate = amount
	return &m, nil
}

func (r *PGMissionRepository) Create(ctx context.Context, m *domain.Mission) error {
	return r.db.QueryRow(ctx, `INSERT INTO missions (id, client_id, title, start_at, end_at, hourly_rate, location, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		m.ID, m.ClientID, m.Title, m.Window.Start, m.Window.End, m.HourlyRate.String(), m.Location, m.Status).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *PGMissionRepository) GetByID(ctx context.Context, id string) (*domain.Mission, error) {
	return getMission(ctx, r.db, id)
}

func getMission(ctx context.Context, q querier, id string) (*domain.Mission, error) {
	m, err := scanMission(q.QueryRow(ctx, `SELECT `+missionColumns+` FROM missions WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "mission", id)
	}
	return m, nil
}

func (r *PGMissionRepository) ListOpen(ctx context.Context) ([]domain.Mission, error) {
	rows, err := r.db.Query(ctx, `SELECT `+missionColumns+` FROM missions WHERE status=$1 ORDER BY start_at, id`, domain.MissionStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	missions := make([]domain.Mission, 0)
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		missions = append(missions, *m)
	}
	return missions, rows.Err()
}

func (r *PGMissionRepository) Cancel(ctx context.Context, id string) ([]domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE missions SET status=$1, updated_at=now() WHERE id=$2 AND status = ANY($3)`,
		domain.MissionStatusCancelled, id, []string{string(domain.MissionStatusOpen), string(domain.MissionStatusAssigned)})
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		current, err := getMission(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: mission %s is %s and can no longer be cancelled", domain.ErrInvalidState, id, current.Status)
	}

	rows, err := tx.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE mission_id=$2 AND status = ANY($3)
		RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, id, statusStrings(domain.MissionSweepStatuses))
	if err != nil {
		return nil, err
	}
	cancelled, err := collectBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cancelled, nil
}

var _ MissionRepository = (*PGMissionRepository)(nil)
