package api

import (
	"context"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/service/booking"
	"github.com/Domenick1991/carestaff/internal/service/missions"
	"github.com/Domenick1991/carestaff/internal/service/offers"
	"github.com/Domenick1991/carestaff/internal/service/quotes"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Apply(ctx context.Context, actor domain.Actor, missionID string) (*domain.Booking, error) {
	args := m.Called(ctx, actor, missionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) BookService(ctx context.Context, actor domain.Actor, input booking.BookServiceInput) (*domain.Booking, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelLine(ctx context.Context, actor domain.Actor, ref domain.LineRef) (*domain.LineDetails, error) {
	args := m.Called(ctx, actor, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LineDetails), args.Error(1)
}

func (m *MockBookingUseCase) Confirm(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Complete(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) AuthorizePayment(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, *domain.Invoice, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Get(1).(*domain.Invoice), args.Error(2)
}

func (m *MockBookingUseCase) ListForActor(ctx context.Context, actor domain.Actor) ([]domain.LineDetails, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.LineDetails), args.Error(1)
}

func (m *MockBookingUseCase) GetLineDetails(ctx context.Context, actor domain.Actor, ref domain.LineRef) (*domain.LineDetails, error) {
	args := m.Called(ctx, actor, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LineDetails), args.Error(1)
}

func (m *MockBookingUseCase) GetInvoice(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Invoice, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockBookingUseCase) RenderInvoice(ctx context.Context, actor domain.Actor, bookingID string) ([]byte, string, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockMissionUseCase struct {
	mock.Mock
}

func (m *MockMissionUseCase) CreateMission(ctx context.Context, actor domain.Actor, input missions.CreateMissionInput) (*domain.Mission, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mission), args.Error(1)
}

func (m *MockMissionUseCase) ListOpenMissions(ctx context.Context, filter missions.ListFilter) ([]domain.Mission, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Mission), args.Error(1)
}

func (m *MockMissionUseCase) GetMission(ctx context.Context, id string) (*domain.Mission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mission), args.Error(1)
}

type MockQuoteUseCase struct {
	mock.Mock
}

func (m *MockQuoteUseCase) Propose(ctx context.Context, actor domain.Actor, input quotes.ProposeInput) (*domain.Quote, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteUseCase) Accept(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, *domain.Booking, error) {
	args := m.Called(ctx, actor, quoteID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Quote), args.Get(1).(*domain.Booking), args.Error(2)
}

func (m *MockQuoteUseCase) Reject(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, error) {
	args := m.Called(ctx, actor, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteUseCase) Get(ctx context.Context, actor domain.Actor, quoteID string) (*domain.Quote, error) {
	args := m.Called(ctx, actor, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteUseCase) ListForActor(ctx context.Context, actor domain.Actor) ([]domain.Quote, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Quote), args.Error(1)
}

type MockOfferUseCase struct {
	mock.Mock
}

func (m *MockOfferUseCase) Create(ctx context.Context, actor domain.Actor, input offers.CreateOfferInput) (*domain.ServiceOffer, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceOffer), args.Error(1)
}

func (m *MockOfferUseCase) Get(ctx context.Context, id string) (*domain.ServiceOffer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceOffer), args.Error(1)
}

func (m *MockOfferUseCase) ListByOwner(ctx context.Context, ownerID string) ([]domain.ServiceOffer, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.ServiceOffer), args.Error(1)
}

type MockInbox struct {
	mock.Mock
}

func (m *MockInbox) Notifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(token string) (domain.Actor, error) {
	args := m.Called(token)
	return args.Get(0).(domain.Actor), args.Error(1)
}
