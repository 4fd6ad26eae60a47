package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/render"
)

// ListForActor returns the actor's booking list. Bookings on the same mission
// are grouped into one MISSION line; everything else is a SERVICE_BOOKING line.
func (s *BookingService) ListForActor(ctx context.Context, actor domain.Actor) ([]domain.LineDetails, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("%w: actor id is required", domain.ErrValidation)
	}
	bookings, err := s.bookings.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.LineDetails, 0, len(bookings))
	byMission := make(map[string]int)
	for _, b := range bookings {
		if b.MissionID != nil && b.QuoteID == nil {
			if idx, ok := byMission[*b.MissionID]; ok {
				lines[idx].Bookings = append(lines[idx].Bookings, b)
				continue
			}
			mission, err := s.missions.GetByID(ctx, *b.MissionID)
			if err != nil {
				return nil, err
			}
			byMission[mission.ID] = len(lines)
			lines = append(lines, domain.LineDetails{Kind: domain.LineMission, Mission: mission, Bookings: []domain.Booking{b}})
			continue
		}

		d, err := s.bookings.GetDetails(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.LineDetails{Kind: domain.LineBooking, Booking: d})
	}
	return lines, nil
}

// GetLineDetails opens one line. The mission's client sees every candidacy,
// a worker only their own.
func (s *BookingService) GetLineDetails(ctx context.Context, actor domain.Actor, ref domain.LineRef) (*domain.LineDetails, error) {
	if ref.ID == "" {
		return nil, fmt.Errorf("%w: line id is required", domain.ErrValidation)
	}
	switch ref.Kind {
	case domain.LineMission:
		mission, err := s.missions.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if actor.ID == mission.ClientID || actor.IsAdmin() {
			return s.missionLine(ctx, mission, nil)
		}
		line, err := s.missionLine(ctx, mission, func(b domain.Booking) bool { return b.WorkerID == actor.ID })
		if err != nil {
			return nil, err
		}
		if len(line.Bookings) == 0 {
			return nil, fmt.Errorf("%w: user %s has no booking on mission %s", domain.ErrForbidden, actor.ID, mission.ID)
		}
		return line, nil
	case domain.LineBooking:
		d, err := s.load(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if !actor.IsAdmin() {
			if err := requireParty(&d.Booking, actor); err != nil {
				return nil, err
			}
		}
		return &domain.LineDetails{Kind: domain.LineBooking, Booking: d}, nil
	default:
		return nil, fmt.Errorf("%w: unknown line type %q", domain.ErrValidation, ref.Kind)
	}
}

func (s *BookingService) GetInvoice(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Invoice, error) {
	d, err := s.invoiced(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	return d.Invoice, nil
}

// RenderInvoice produces the downloadable document for a PAID booking.
func (s *BookingService) RenderInvoice(ctx context.Context, actor domain.Actor, bookingID string) ([]byte, string, error) {
	d, err := s.invoiced(ctx, actor, bookingID)
	if err != nil {
		return nil, "", err
	}
	if s.renderer == nil {
		return nil, "", errors.New("no invoice renderer configured")
	}
	return s.renderer.Render(render.InvoiceDocument{
		InvoiceID:   d.Invoice.ID,
		BookingID:   d.Booking.ID,
		Amount:      d.Invoice.Amount,
		Description: d.Description(),
		ClientID:    d.Booking.ClientID,
		WorkerID:    d.Booking.WorkerID,
		IssuedAt:    d.Invoice.CreatedAt,
	})
}

func (s *BookingService) invoiced(ctx context.Context, actor domain.Actor, bookingID string) (*domain.BookingDetails, error) {
	d, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if err := requireParty(&d.Booking, actor); err != nil {
			return nil, err
		}
	}
	if d.Invoice == nil {
		return nil, fmt.Errorf("%w: booking %s has no invoice until it is PAID", domain.ErrNotFound, d.Booking.ID)
	}
	return d, nil
}
