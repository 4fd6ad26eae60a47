package missions

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type MissionUseCase interface {
	CreateMission(ctx context.Context, actor domain.Actor, input CreateMissionInput) (*domain.Mission, error)
	ListOpenMissions(ctx context.Context, filter ListFilter) ([]domain.Mission, error)
	GetMission(ctx context.Context, id string) (*domain.Mission, error)
}

// Cache holds the unfiltered list of OPEN missions. Every invalidation moves
// the cache version; SetOpenMissions is dropped when the version it was given
// is no longer current, so a read that raced a status change is not cached.
type Cache interface {
	GetOpenMissions(ctx context.Context) ([]domain.Mission, int64, error)
	SetOpenMissions(ctx context.Context, version int64, missions []domain.Mission) error
	InvalidateOpenMissions(ctx context.Context) error
}

type CreateMissionInput struct {
	Title      string          `json:"title"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Address    string          `json:"address"`
}

// ListFilter narrows the OPEN missions. Date matches every mission whose window
// touches that UTC day; Location is a case-insensitive substring.
type ListFilter struct {
	Date     *time.Time
	Location string
	Limit    int
	Offset   int
}

type MissionService struct {
	repo     repository.MissionRepository
	cache    Cache
	maxLimit int
}

type MissionServiceOption func(*MissionService)

// WithMaxLimit caps the page size of ListOpenMissions.
func WithMaxLimit(n int) MissionServiceOption {
	return func(s *MissionService) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

func NewMissionService(repo repository.MissionRepository, cache Cache, opts ...MissionServiceOption) *MissionService {
	s := &MissionService{repo: repo, cache: cache, maxLimit: MaxLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MissionService) CreateMission(ctx context.Context, actor domain.Actor, input CreateMissionInput) (*domain.Mission, error) {
	if actor.Role != domain.RoleClient && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only clients publish missions", domain.ErrForbidden)
	}
	title := strings.TrimSpace(input.Title)
	address := strings.TrimSpace(input.Address)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", domain.ErrValidation)
	}
	window := domain.Window{Start: input.Start.UTC(), End: input.End.UTC()}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount("hourly rate", input.HourlyRate); err != nil {
		return nil, err
	}

	mission := &domain.Mission{
		ID:         uuid.NewString(),
		ClientID:   actor.ID,
		Title:      title,
		Window:     window,
		HourlyRate: input.HourlyRate,
		Location:   address,
		Status:     domain.MissionStatusOpen,
	}
	if err := s.repo.Create(ctx, mission); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return mission, nil
}

func (s *MissionService) ListOpenMissions(ctx context.Context, filter ListFilter) ([]domain.Mission, error) {
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrValidation)
	}
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrValidation)
	}
	limit := filter.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	open, err := s.openMissions(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Mission, 0, len(open))
	for _, m := range open {
		if filter.Date != nil {
			day := filter.Date.UTC()
			dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
			dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)
			if !m.Window.Overlaps(dayStart, dayEnd) {
				continue
			}
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(m.Location), strings.ToLower(filter.Location)) {
			continue
		}
		matched = append(matched, m)
	}

	if filter.Offset >= len(matched) {
		return []domain.Mission{}, nil
	}
	end := filter.Offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], nil
}

func (s *MissionService) GetMission(ctx context.Context, id string) (*domain.Mission, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: mission id is required", domain.ErrValidation)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *MissionService) openMissions(ctx context.Context) ([]domain.Mission, error) {
	var version int64
	if s.cache != nil {
		cached, v, err := s.cache.GetOpenMissions(ctx)
		if err != nil {
			log.Printf("WARNING: Failed to read open missions cache: %v", err)
		} else if cached != nil {
			return cached, nil
		}
		version = v
	}

	open, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetOpenMissions(ctx, version, open); err != nil {
			log.Printf("WARNING: Failed to cache open missions: %v", err)
		}
	}
	return open, nil
}

func (s *MissionService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOpenMissions(ctx); err != nil {
		log.Printf("WARNING: Failed to invalidate open missions cache: %v", err)
	}
}

var _ MissionUseCase = (*MissionService)(nil)
