package booking

import (
	"context"
	"fmt"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/repository"
	"github.com/Domenick1991/carestaff/internal/settlement"
	"github.com/google/uuid"
)

func (s *BookingService) load(ctx context.Context, bookingID string) (*domain.BookingDetails, error) {
	if bookingID == "" {
		return nil, fmt.Errorf("%w: booking id is required", domain.ErrValidation)
	}
	return s.bookings.GetDetails(ctx, bookingID)
}

// Confirm selects a candidate: PENDING -> CONFIRMED.
func (s *BookingService) Confirm(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	d, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthority(d, actor, "confirm"); err != nil {
		return nil, err
	}
	if err := requireTransition(&d.Booking, domain.BookingStatusPending, domain.BookingStatusConfirmed); err != nil {
		return nil, err
	}

	cmd := repository.TransitionCommand{
		BookingID: d.Booking.ID,
		From:      domain.BookingStatusPending,
		To:        domain.BookingStatusConfirmed,
	}
	if s.closeMissionOnConfirm && d.Origin() == domain.OriginMission {
		cmd.Mission = &repository.MissionUpdate{
			MissionID: d.Mission.ID,
			From:      []domain.MissionStatus{domain.MissionStatusOpen},
			To:        domain.MissionStatusAssigned,
			Required:  true,
		}
	}

	updated, err := s.bookings.Transition(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if cmd.Mission != nil {
		s.invalidateMissions(ctx)
	}

	s.publish(ctx, "booking_confirmed", updated, actor)
	s.notify(ctx, updated.WorkerID, fmt.Sprintf("You have been recruited for %s", d.Description()), domain.SeveritySuccess)
	return updated, nil
}

// Complete marks the work done: CONFIRMED -> COMPLETED_AWAITING_PAYMENT. A
// mission-backed booking also closes its mission and drops the remaining candidacies.
func (s *BookingService) Complete(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	d, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthority(d, actor, "complete"); err != nil {
		return nil, err
	}
	if err := requireTransition(&d.Booking, domain.BookingStatusConfirmed, domain.BookingStatusCompletedAwaitingPayment); err != nil {
		return nil, err
	}

	cmd := repository.TransitionCommand{
		BookingID: d.Booking.ID,
		From:      domain.BookingStatusConfirmed,
		To:        domain.BookingStatusCompletedAwaitingPayment,
	}
	if d.Origin() == domain.OriginMission {
		cmd.Mission = &repository.MissionUpdate{
			MissionID:     d.Mission.ID,
			From:          []domain.MissionStatus{domain.MissionStatusOpen, domain.MissionStatusAssigned},
			To:            domain.MissionStatusCompleted,
			CancelPending: true,
		}
	}

	updated, err := s.bookings.Transition(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if cmd.Mission != nil {
		s.invalidateMissions(ctx)
	}

	s.publish(ctx, "booking_completed", updated, actor)
	s.notify(ctx, updated.WorkerID, fmt.Sprintf("%s is completed and awaiting payment", d.Description()), domain.SeverityInfo)
	return updated, nil
}

// AuthorizePayment settles the booking: COMPLETED_AWAITING_PAYMENT -> PAID,
// writing its invoice in the same store command.
func (s *BookingService) AuthorizePayment(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, *domain.Invoice, error) {
	d, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireClient(&d.Booking, actor, "authorize its payment"); err != nil {
		return nil, nil, err
	}
	if err := requireTransition(&d.Booking, domain.BookingStatusCompletedAwaitingPayment, domain.BookingStatusPaid); err != nil {
		return nil, nil, err
	}

	amount, err := settlement.ComputeAmount(d)
	if err != nil {
		return nil, nil, err
	}
	invoice := &domain.Invoice{
		ID:        uuid.NewString(),
		BookingID: d.Booking.ID,
		Amount:    amount,
		URL:       settlement.InvoiceURL(d.Booking.ID),
	}

	updated, err := s.bookings.Transition(ctx, repository.TransitionCommand{
		BookingID: d.Booking.ID,
		From:      domain.BookingStatusCompletedAwaitingPayment,
		To:        domain.BookingStatusPaid,
		Invoice:   invoice,
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, "booking_paid", updated, actor)
	s.notify(ctx, updated.WorkerID, fmt.Sprintf("Payment validated for %s, amount %s", d.Description(), amount.StringFixed(settlement.Places)), domain.SeveritySuccess)
	return updated, invoice, nil
}
