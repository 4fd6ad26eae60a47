package offers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OfferUseCase interface {
	Create(ctx context.Context, actor domain.Actor, input CreateOfferInput) (*domain.ServiceOffer, error)
	Get(ctx context.Context, id string) (*domain.ServiceOffer, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.ServiceOffer, error)
}

type CreateOfferInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type OfferService struct {
	repo repository.OfferRepository
}

func NewOfferService(repo repository.OfferRepository) *OfferService {
	return &OfferService{repo: repo}
}

// Create publishes a fixed-price service owned by the acting worker.
func (s *OfferService) Create(ctx context.Context, actor domain.Actor, input CreateOfferInput) (*domain.ServiceOffer, error) {
	if actor.Role != domain.RoleWorker {
		return nil, fmt.Errorf("%w: only workers publish services", domain.ErrForbidden)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if err := domain.ValidateAmount("price", input.Price); err != nil {
		return nil, err
	}

	offer := &domain.ServiceOffer{
		ID:          uuid.NewString(),
		OwnerID:     actor.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
	}
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *OfferService) Get(ctx context.Context, id string) (*domain.ServiceOffer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OfferService) ListByOwner(ctx context.Context, ownerID string) ([]domain.ServiceOffer, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

var _ OfferUseCase = (*OfferService)(nil)
