package booking

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/kafka"
	"github.com/Domenick1991/carestaff/internal/render"
	"github.com/Domenick1991/carestaff/internal/repository"
)

type BookingUseCase interface {
	Apply(ctx context.Context, actor domain.Actor, missionID string) (*domain.Booking, error)
	BookService(ctx context.Context, actor domain.Actor, input BookServiceInput) (*domain.Booking, error)
	CancelLine(ctx context.Context, actor domain.Actor, ref domain.LineRef) (*domain.LineDetails, error)
	Confirm(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error)
	Complete(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error)
	AuthorizePayment(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, *domain.Invoice, error)
	ListForActor(ctx context.Context, actor domain.Actor) ([]domain.LineDetails, error)
	GetLineDetails(ctx context.Context, actor domain.Actor, ref domain.LineRef) (*domain.LineDetails, error)
	GetInvoice(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Invoice, error)
	RenderInvoice(ctx context.Context, actor domain.Actor, bookingID string) ([]byte, string, error)
}

// Notifier receives user-facing messages. Failures are logged and dropped.
type Notifier interface {
	Enqueue(ctx context.Context, userID, message string, severity domain.Severity) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// MissionCache is invalidated whenever a transition changes a mission status.
type MissionCache interface {
	InvalidateOpenMissions(ctx context.Context) error
}

type BookingService struct {
	bookings repository.BookingRepository
	missions repository.MissionRepository
	offers   repository.OfferRepository
	notifier Notifier
	renderer render.Renderer

	producer    Producer
	eventsTopic string
	cache       MissionCache

	closeMissionOnConfirm bool
	sideEffectTimeout     time.Duration
	now                   func() time.Time
}

// DefaultSideEffectTimeout bounds each notification, event or cache call made
// after a transition has committed.
const DefaultSideEffectTimeout = 2 * time.Second

type BookingServiceOption func(*BookingService)

func WithEvents(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithMissionCache(cache MissionCache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

// WithCloseMissionOnConfirm makes the first confirmation move its mission to
// ASSIGNED, after which the mission no longer takes applications.
func WithCloseMissionOnConfirm(enabled bool) BookingServiceOption {
	return func(s *BookingService) {
		s.closeMissionOnConfirm = enabled
	}
}

func WithRenderer(r render.Renderer) BookingServiceOption {
	return func(s *BookingService) {
		s.renderer = r
	}
}

// WithSideEffectTimeout overrides DefaultSideEffectTimeout.
func WithSideEffectTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.sideEffectTimeout = d
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	missions repository.MissionRepository,
	offers repository.OfferRepository,
	notifier Notifier,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		missions: missions,
		offers:   offers,
		notifier: notifier,
		renderer: render.NewTextRenderer(),
		now:      time.Now,

		sideEffectTimeout: DefaultSideEffectTimeout,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// sideEffectContext outlives a cancelled request but not the timeout.
func (s *BookingService) sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTimeout)
}

func (s *BookingService) notify(ctx context.Context, userID, message string, severity domain.Severity) {
	if s.notifier == nil || userID == "" {
		return
	}
	ctx, cancel := s.sideEffectContext(ctx)
	defer cancel()
	if err := s.notifier.Enqueue(ctx, userID, message, severity); err != nil {
		log.Printf("WARNING: Failed to notify user %s: %v", userID, err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, actor domain.Actor) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.LifecycleEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		WorkerID:   booking.WorkerID,
		Status:     string(booking.Status),
		ActorID:    actor.ID,
		OccurredAt: s.now().UTC(),
	}
	if booking.MissionID != nil {
		event.MissionID = *booking.MissionID
	}
	if booking.QuoteID != nil {
		event.QuoteID = *booking.QuoteID
	}
	ctx, cancel := s.sideEffectContext(ctx)
	defer cancel()
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.ID, event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for booking %s: %v", eventType, booking.ID, err)
	}
}

func (s *BookingService) publishMission(ctx context.Context, eventType string, mission *domain.Mission, actor domain.Actor) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.LifecycleEvent{
		Type:       eventType,
		MissionID:  mission.ID,
		ClientID:   mission.ClientID,
		Status:     string(mission.Status),
		ActorID:    actor.ID,
		OccurredAt: s.now().UTC(),
	}
	ctx, cancel := s.sideEffectContext(ctx)
	defer cancel()
	if err := s.producer.Publish(ctx, s.eventsTopic, mission.ID, event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for mission %s: %v", eventType, mission.ID, err)
	}
}

func (s *BookingService) invalidateMissions(ctx context.Context) {
	if s.cache == nil {
		return
	}
	ctx, cancel := s.sideEffectContext(ctx)
	defer cancel()
	if err := s.cache.InvalidateOpenMissions(ctx); err != nil {
		log.Printf("WARNING: Failed to invalidate open missions cache: %v", err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
