package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/repository"
	"github.com/google/uuid"
)

type BookServiceInput struct {
	ServiceID   string    `json:"service_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Apply records a worker's candidacy on an OPEN mission.
func (s *BookingService) Apply(ctx context.Context, actor domain.Actor, missionID string) (*domain.Booking, error) {
	if missionID == "" {
		return nil, fmt.Errorf("%w: mission id is required", domain.ErrValidation)
	}
	mission, err := s.missions.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleWorker {
		return nil, fmt.Errorf("%w: only workers apply to missions", domain.ErrForbidden)
	}
	if mission.Status != domain.MissionStatusOpen {
		return nil, fmt.Errorf("%w: mission %s is %s, applications require OPEN", domain.ErrInvalidState, mission.ID, mission.Status)
	}

	booking := &domain.Booking{
		ID:          uuid.NewString(),
		ClientID:    mission.ClientID,
		WorkerID:    actor.ID,
		MissionID:   &mission.ID,
		ScheduledAt: mission.Window.Start,
		Status:      domain.BookingStatusPending,
	}
	// The store re-checks OPEN and the one-candidacy-per-worker index atomically.
	if err := s.bookings.Apply(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking, actor)
	s.notify(ctx, mission.ClientID, fmt.Sprintf("New application for %s", mission.Title), domain.SeverityInfo)
	return booking, nil
}

// BookService reserves a slot of a worker's service offer. The offer owner
// confirms it later.
func (s *BookingService) BookService(ctx context.Context, actor domain.Actor, input BookServiceInput) (*domain.Booking, error) {
	if input.ServiceID == "" {
		return nil, fmt.Errorf("%w: service id is required", domain.ErrValidation)
	}
	if input.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_at is required", domain.ErrValidation)
	}
	offer, err := s.offers.GetByID(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if actor.ID == "" || actor.ID == offer.OwnerID {
		return nil, fmt.Errorf("%w: a service cannot be booked by its owner", domain.ErrForbidden)
	}

	booking := &domain.Booking{
		ID:          uuid.NewString(),
		ClientID:    actor.ID,
		WorkerID:    offer.OwnerID,
		ServiceID:   &offer.ID,
		ScheduledAt: input.ScheduledAt.UTC(),
		Status:      domain.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking, actor)
	s.notify(ctx, offer.OwnerID, fmt.Sprintf("New booking request for %s", offer.Title), domain.SeverityInfo)
	return booking, nil
}

// CancelLine cancels whatever the line points at, depending on who asks.
func (s *BookingService) CancelLine(ctx context.Context, actor domain.Actor, ref domain.LineRef) (*domain.LineDetails, error) {
	if ref.ID == "" {
		return nil, fmt.Errorf("%w: line id is required", domain.ErrValidation)
	}
	switch ref.Kind {
	case domain.LineMission:
		return s.cancelMissionLine(ctx, actor, ref.ID)
	case domain.LineBooking:
		return s.cancelBookingLine(ctx, actor, ref.ID)
	default:
		return nil, fmt.Errorf("%w: unknown line type %q", domain.ErrValidation, ref.Kind)
	}
}

// cancelMissionLine: the mission's client (or an admin) cancels the whole
// mission with its bookings; a worker holding a booking on it withdraws only
// that booking.
func (s *BookingService) cancelMissionLine(ctx context.Context, actor domain.Actor, missionID string) (*domain.LineDetails, error) {
	mission, err := s.missions.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	if actor.ID != mission.ClientID && !actor.IsAdmin() {
		return s.withdraw(ctx, actor, mission)
	}

	switch mission.Status {
	case domain.MissionStatusCancelled:
		return s.missionLine(ctx, mission, nil)
	case domain.MissionStatusCompleted:
		return nil, fmt.Errorf("%w: mission %s is COMPLETED and cancellation is not retroactive", domain.ErrInvalidState, mission.ID)
	}

	cancelled, err := s.missions.Cancel(ctx, mission.ID)
	if err != nil {
		return nil, err
	}
	s.invalidateMissions(ctx)

	mission.Status = domain.MissionStatusCancelled
	s.publishMission(ctx, "mission_cancelled", mission, actor)
	for i := range cancelled {
		s.publish(ctx, "booking_cancelled", &cancelled[i], actor)
	}
	return s.missionLine(ctx, mission, nil)
}

func (s *BookingService) withdraw(ctx context.Context, actor domain.Actor, mission *domain.Mission) (*domain.LineDetails, error) {
	all, err := s.bookings.ListByMission(ctx, mission.ID)
	if err != nil {
		return nil, err
	}

	var held *domain.Booking
	for i := range all {
		b := &all[i]
		if b.WorkerID != actor.ID {
			continue
		}
		// A live booking wins over earlier cancelled ones.
		if held == nil || held.Status == domain.BookingStatusCancelled {
			held = b
		}
	}
	if held == nil || actor.Role != domain.RoleWorker {
		return nil, fmt.Errorf("%w: only the mission's client or a worker holding a booking on it may cancel mission %s", domain.ErrForbidden, mission.ID)
	}
	if held.Status == domain.BookingStatusCancelled {
		return s.missionLine(ctx, mission, func(b domain.Booking) bool { return b.WorkerID == actor.ID })
	}
	if err := requireCancellable(held); err != nil {
		return nil, err
	}

	updated, err := s.bookings.Transition(ctx, repository.TransitionCommand{
		BookingID: held.ID,
		From:      held.Status,
		To:        domain.BookingStatusCancelled,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_cancelled", updated, actor)
	s.notify(ctx, mission.ClientID, fmt.Sprintf("A worker withdrew from %s", mission.Title), domain.SeverityWarning)
	return s.missionLine(ctx, mission, func(b domain.Booking) bool { return b.WorkerID == actor.ID })
}

func (s *BookingService) cancelBookingLine(ctx context.Context, actor domain.Actor, bookingID string) (*domain.LineDetails, error) {
	d, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireParty(&d.Booking, actor); err != nil {
		return nil, err
	}
	if d.Booking.Status == domain.BookingStatusCancelled {
		return &domain.LineDetails{Kind: domain.LineBooking, Booking: d}, nil
	}
	if err := requireCancellable(&d.Booking); err != nil {
		return nil, err
	}

	updated, err := s.bookings.Transition(ctx, repository.TransitionCommand{
		BookingID: d.Booking.ID,
		From:      d.Booking.Status,
		To:        domain.BookingStatusCancelled,
	})
	if err != nil {
		return nil, err
	}
	d.Booking = *updated

	s.publish(ctx, "booking_cancelled", updated, actor)
	other := updated.ClientID
	if actor.ID == updated.ClientID {
		other = updated.WorkerID
	}
	s.notify(ctx, other, fmt.Sprintf("%s was cancelled", d.Description()), domain.SeverityWarning)
	return &domain.LineDetails{Kind: domain.LineBooking, Booking: d}, nil
}

// missionLine reloads the mission with its bookings, keeping those accepted by
// keep (all when keep is nil).
func (s *BookingService) missionLine(ctx context.Context, mission *domain.Mission, keep func(domain.Booking) bool) (*domain.LineDetails, error) {
	current, err := s.missions.GetByID(ctx, mission.ID)
	if err != nil {
		return nil, err
	}
	all, err := s.bookings.ListByMission(ctx, mission.ID)
	if err != nil {
		return nil, err
	}
	bookings := make([]domain.Booking, 0, len(all))
	for _, b := range all {
		if keep == nil || keep(b) {
			bookings = append(bookings, b)
		}
	}
	return &domain.LineDetails{Kind: domain.LineMission, Mission: current, Bookings: bookings}, nil
}
