package quotes

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/kafka"
	"github.com/Domenick1991/carestaff/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuoteUseCase interface {
	Propose(ctx context.Context, actor domain.Actor, input ProposeInput) (*domain.Quote, error)
	Accept(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, *domain.Booking, error)
	Reject(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, error)
	Get(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, error)
	ListForActor(ctx context.Context, actor domain.Actor) ([]domain.Quote, error)
}

type Notifier interface {
	Enqueue(ctx context.Context, userID, message string, severity domain.Severity) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ProposeInput struct {
	EstablishmentID string          `json:"establishment_id"`
	FreelanceID     string          `json:"freelance_id"`
	MissionID       *string         `json:"mission_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Start           time.Time       `json:"start"`
	End             time.Time       `json:"end"`
}

type QuoteService struct {
	quotes   repository.QuoteRepository
	missions repository.MissionRepository
	notifier Notifier

	producer          Producer
	eventsTopic       string
	sideEffectTimeout time.Duration
	now               func() time.Time
}

// DefaultSideEffectTimeout bounds each notification or event published after
// a quote has been stored.
const DefaultSideEffectTimeout = 2 * time.Second

type QuoteServiceOption func(*QuoteService)

func WithEvents(producer Producer, topic string) QuoteServiceOption {
	return func(s *QuoteService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

// WithSideEffectTimeout overrides DefaultSideEffectTimeout.
func WithSideEffectTimeout(d time.Duration) QuoteServiceOption {
	return func(s *QuoteService) {
		if d > 0 {
			s.sideEffectTimeout = d
		}
	}
}

func NewQuoteService(quotes repository.QuoteRepository, missions repository.MissionRepository, notifier Notifier, opts ...QuoteServiceOption) *QuoteService {
	service := &QuoteService{
		quotes:            quotes,
		missions:          missions,
		notifier:          notifier,
		sideEffectTimeout: DefaultSideEffectTimeout,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *QuoteService) Propose(ctx context.Context, actor domain.Actor, input ProposeInput) (*domain.Quote, error) {
	if input.EstablishmentID == "" || input.FreelanceID == "" {
		return nil, fmt.Errorf("%w: establishment_id and freelance_id are required", domain.ErrValidation)
	}
	if input.EstablishmentID == input.FreelanceID {
		return nil, fmt.Errorf("%w: a quote needs two distinct parties", domain.ErrValidation)
	}
	if err := domain.ValidateAmount("amount", input.Amount); err != nil {
		return nil, err
	}
	window := domain.Window{Start: input.Start.UTC(), End: input.End.UTC()}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if actor.ID != input.EstablishmentID && actor.ID != input.FreelanceID {
		return nil, fmt.Errorf("%w: only a party to the quote may propose it", domain.ErrForbidden)
	}
	if input.MissionID != nil {
		if _, err := s.missions.GetByID(ctx, *input.MissionID); err != nil {
			return nil, err
		}
	}

	quote := &domain.Quote{
		ID:              uuid.NewString(),
		EstablishmentID: input.EstablishmentID,
		FreelanceID:     input.FreelanceID,
		MissionID:       input.MissionID,
		Amount:          input.Amount,
		Description:     strings.TrimSpace(input.Description),
		Window:          window,
		Status:          domain.QuoteStatusPending,
		ProposedBy:      actor.ID,
	}
	if err := s.quotes.Create(ctx, quote); err != nil {
		return nil, err
	}

	s.publish(ctx, "quote_proposed", quote, actor)
	s.notify(ctx, quote.Counterparty(), fmt.Sprintf("New quote proposal of %s: %s", quote.Amount.StringFixed(2), quote.Description), domain.SeverityInfo)
	return quote, nil
}

// Accept turns the quote into a booking that starts CONFIRMED.
func (s *QuoteService) Accept(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, *domain.Booking, error) {
	current, err := s.answerable(ctx, actor, quoteID)
	if err != nil {
		return nil, nil, err
	}

	booking := &domain.Booking{
		ID:          uuid.NewString(),
		ClientID:    current.EstablishmentID,
		WorkerID:    current.FreelanceID,
		MissionID:   current.MissionID,
		QuoteID:     &current.ID,
		ScheduledAt: current.Window.Start,
		Status:      domain.BookingStatusConfirmed,
	}
	accepted, err := s.quotes.Accept(ctx, current.ID, booking)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, "quote_accepted", accepted, actor)
	s.notify(ctx, accepted.FreelanceID, fmt.Sprintf("Your quote \"%s\" was accepted", accepted.Description), domain.SeveritySuccess)
	return accepted, booking, nil
}

func (s *QuoteService) Reject(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, error) {
	if _, err := s.answerable(ctx, actor, quoteID); err != nil {
		return nil, err
	}
	rejected, err := s.quotes.Reject(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "quote_rejected", rejected, actor)
	s.notify(ctx, rejected.FreelanceID, fmt.Sprintf("Your quote \"%s\" was rejected", rejected.Description), domain.SeverityWarning)
	return rejected, nil
}

func (s *QuoteService) Get(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != quote.EstablishmentID && actor.ID != quote.FreelanceID {
		return nil, fmt.Errorf("%w: user %s is not a party to quote %s", domain.ErrForbidden, actor.ID, quote.ID)
	}
	return quote, nil
}

func (s *QuoteService) ListForActor(ctx context.Context, actor domain.Actor) ([]domain.Quote, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("%w: actor id is required", domain.ErrValidation)
	}
	return s.quotes.ListForUser(ctx, actor.ID)
}

// answerable loads a quote the actor may accept or reject.
func (s *QuoteService) answerable(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, error) {
	if quoteID == "" {
		return nil, fmt.Errorf("%w: quote id is required", domain.ErrValidation)
	}
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if actor.ID == "" || actor.ID != quote.EstablishmentID {
		return nil, fmt.Errorf("%w: only establishment %s may answer quote %s", domain.ErrForbidden, quote.EstablishmentID, quote.ID)
	}
	if quote.Status != domain.QuoteStatusPending {
		return nil, fmt.Errorf("%w: quote %s is %s, only PENDING quotes can be answered", domain.ErrInvalidState, quote.ID, quote.Status)
	}
	return quote, nil
}

func (s *QuoteService) notify(ctx context.Context, userID, message string, severity domain.Severity) {
	if s.notifier == nil || userID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTimeout)
	defer cancel()
	if err := s.notifier.Enqueue(ctx, userID, message, severity); err != nil {
		log.Printf("WARNING: Failed to notify user %s: %v", userID, err)
	}
}

func (s *QuoteService) publish(ctx context.Context, eventType string, quote *domain.Quote, actor domain.Actor) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.LifecycleEvent{
		Type:       eventType,
		QuoteID:    quote.ID,
		ClientID:   quote.EstablishmentID,
		WorkerID:   quote.FreelanceID,
		Status:     string(quote.Status),
		ActorID:    actor.ID,
		OccurredAt: s.now().UTC(),
	}
	if quote.MissionID != nil {
		event.MissionID = *quote.MissionID
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTimeout)
	defer cancel()
	if err := s.producer.Publish(ctx, s.eventsTopic, quote.ID, event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for quote %s: %v", eventType, quote.ID, err)
	}
}

var _ QuoteUseCase = (*QuoteService)(nil)
