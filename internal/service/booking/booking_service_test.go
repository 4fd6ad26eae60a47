package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/kafka"
	"github.com/Domenick1991/carestaff/internal/repository/memrepo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enqueue(ctx context.Context, userID, message string, severity domain.Severity) error {
	args := m.Called(ctx, userID, message, severity)
	return args.Error(0)
}

func (m *MockNotifier) messagesFor(userID string) []string {
	out := make([]string, 0)
	for _, call := range m.Calls {
		if call.Method == "Enqueue" && call.Arguments.String(1) == userID {
			out = append(out, call.Arguments.String(2))
		}
	}
	return out
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockMissionCache struct {
	mock.Mock
}

func (m *MockMissionCache) InvalidateOpenMissions(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// stalledBroker blocks every call until its context ends, like a writer
// retrying against an unreachable broker.
type stalledBroker struct {
	deadlines []bool
}

func (b *stalledBroker) wait(ctx context.Context) error {
	_, ok := ctx.Deadline()
	b.deadlines = append(b.deadlines, ok)
	<-ctx.Done()
	return ctx.Err()
}

func (b *stalledBroker) Publish(ctx context.Context, _, _ string, _ interface{}) error {
	return b.wait(ctx)
}

func (b *stalledBroker) Enqueue(ctx context.Context, _, _ string, _ domain.Severity) error {
	return b.wait(ctx)
}

var (
	client   = domain.Actor{ID: "client-1", Role: domain.RoleClient}
	client2  = domain.Actor{ID: "client-2", Role: domain.RoleClient}
	worker1  = domain.Actor{ID: "worker-1", Role: domain.RoleWorker}
	worker2  = domain.Actor{ID: "worker-2", Role: domain.RoleWorker}
	worker3  = domain.Actor{ID: "worker-3", Role: domain.RoleWorker}
	stranger = domain.Actor{ID: "worker-9", Role: domain.RoleWorker}
	admin    = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
)

func at(h int) time.Time {
	return time.Date(2026, 3, 2, h, 0, 0, 0, time.UTC)
}

type fixture struct {
	ctx      context.Context
	db       *memrepo.DB
	notifier *MockNotifier
	service  *BookingService
}

func newFixture(t *testing.T, opts ...BookingServiceOption) *fixture {
	t.Helper()
	db := memrepo.New()
	notifier := &MockNotifier{}
	notifier.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return &fixture{
		ctx:      context.Background(),
		db:       db,
		notifier: notifier,
		service:  NewBookingService(db.Bookings(), db.Missions(), db.Offers(), notifier, opts...),
	}
}

func (f *fixture) mission(t *testing.T, id, rate string, start, end time.Time) *domain.Mission {
	t.Helper()
	m := &domain.Mission{
		ID:         id,
		ClientID:   client.ID,
		Title:      "Day shift",
		Window:     domain.Window{Start: start, End: end},
		HourlyRate: decimal.RequireFromString(rate),
		Location:   "Lyon",
		Status:     domain.MissionStatusOpen,
	}
	require.NoError(t, f.db.Missions().Create(f.ctx, m))
	return m
}

func (f *fixture) offer(t *testing.T, id string, owner domain.Actor, price string) *domain.ServiceOffer {
	t.Helper()
	o := &domain.ServiceOffer{ID: id, OwnerID: owner.ID, Title: "First aid workshop", Price: decimal.RequireFromString(price)}
	require.NoError(t, f.db.Offers().Create(f.ctx, o))
	return o
}

// acceptedQuote stores an accepted quote and its CONFIRMED booking.
func (f *fixture) acceptedQuote(t *testing.T, id string, worker domain.Actor, amount string, missionID *string) *domain.Booking {
	t.Helper()
	q := &domain.Quote{
		ID:              id,
		EstablishmentID: client.ID,
		FreelanceID:     worker.ID,
		MissionID:       missionID,
		Amount:          decimal.RequireFromString(amount),
		Description:     "Night cover",
		Window:          domain.Window{Start: at(20), End: at(23)},
		Status:          domain.QuoteStatusPending,
		ProposedBy:      worker.ID,
	}
	require.NoError(t, f.db.Quotes().Create(f.ctx, q))
	b := &domain.Booking{
		ID:          "booking-" + id,
		ClientID:    client.ID,
		WorkerID:    worker.ID,
		MissionID:   missionID,
		QuoteID:     &q.ID,
		ScheduledAt: q.Window.Start,
		Status:      domain.BookingStatusConfirmed,
	}
	_, err := f.db.Quotes().Accept(f.ctx, q.ID, b)
	require.NoError(t, err)
	return b
}

func (f *fixture) status(t *testing.T, bookingID string) domain.BookingStatus {
	t.Helper()
	d, err := f.db.Bookings().GetDetails(f.ctx, bookingID)
	require.NoError(t, err)
	return d.Booking.Status
}

func (f *fixture) missionStatus(t *testing.T, missionID string) domain.MissionStatus {
	t.Helper()
	m, err := f.db.Missions().GetByID(f.ctx, missionID)
	require.NoError(t, err)
	return m.Status
}

func TestBookingService_MissionLifecycle(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))

	b, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, b.Status)
	assert.Equal(t, client.ID, b.ClientID)
	assert.Equal(t, at(9), b.ScheduledAt)

	b, err = f.service.Confirm(f.ctx, client, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)

	b, err = f.service.Complete(f.ctx, client, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompletedAwaitingPayment, b.Status)
	assert.Equal(t, domain.MissionStatusCompleted, f.missionStatus(t, "m1"))

	b, invoice, err := f.service.AuthorizePayment(f.ctx, client, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPaid, b.Status)
	assert.Equal(t, "270.00", invoice.Amount.StringFixed(2))
	assert.Equal(t, "/invoices/"+b.ID+"/download", invoice.URL)

	stored, err := f.service.GetInvoice(f.ctx, worker1, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(270)))

	assert.Equal(t, []string{
		"You have been recruited for Day shift",
		"Day shift is completed and awaiting payment",
		"Payment validated for Day shift, amount 270.00",
	}, f.notifier.messagesFor(worker1.ID))
	assert.Equal(t, []string{"New application for Day shift"}, f.notifier.messagesFor(client.ID))
}

func TestBookingService_ApplyAfterConfirm_MissionStaysOpen(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))

	first, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	_, err = f.service.Confirm(f.ctx, client, first.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.MissionStatusOpen, f.missionStatus(t, "m1"))
	second, err := f.service.Apply(f.ctx, worker2, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, second.Status)
}

func TestBookingService_CloseMissionOnConfirm(t *testing.T) {
	cache := &MockMissionCache{}
	cache.On("InvalidateOpenMissions", mock.Anything).Return(nil)
	f := newFixture(t, WithCloseMissionOnConfirm(true), WithMissionCache(cache))
	f.mission(t, "m1", "30", at(9), at(18))

	first, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	second, err := f.service.Apply(f.ctx, worker2, "m1")
	require.NoError(t, err)

	_, err = f.service.Confirm(f.ctx, client, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MissionStatusAssigned, f.missionStatus(t, "m1"))
	cache.AssertNumberOfCalls(t, "InvalidateOpenMissions", 1)

	_, err = f.service.Apply(f.ctx, worker3, "m1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.service.Confirm(f.ctx, client, second.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, domain.BookingStatusPending, f.status(t, second.ID))

	_, err = f.service.Complete(f.ctx, client, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MissionStatusCompleted, f.missionStatus(t, "m1"))
	assert.Equal(t, domain.BookingStatusCancelled, f.status(t, second.ID))
}

func TestBookingService_Apply_Errors(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))
	cancelled := f.mission(t, "m2", "30", at(9), at(18))
	_, err := f.db.Missions().Cancel(f.ctx, cancelled.ID)
	require.NoError(t, err)

	_, err = f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		actor     domain.Actor
		missionID string
		want      error
	}{
		{"unknown mission", worker1, "missing", domain.ErrNotFound},
		{"client cannot apply", client2, "m1", domain.ErrForbidden},
		{"mission not open", worker2, "m2", domain.ErrInvalidState},
		{"duplicate application", worker1, "m1", domain.ErrConflict},
		{"empty id", worker1, "", domain.ErrValidation},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := f.service.Apply(f.ctx, tc.actor, tc.missionID)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBookingService_ReapplyAfterWithdrawal(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))

	b, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	_, err = f.service.CancelLine(f.ctx, worker1, domain.LineRef{Kind: domain.LineMission, ID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, f.status(t, b.ID))

	again, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	assert.NotEqual(t, b.ID, again.ID)
}

func TestBookingService_GuardsLeaveStateUnchanged(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))
	b, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)

	testCases := []struct {
		name string
		call func() error
		want error
	}{
		{"worker confirms own candidacy", func() error { _, err := f.service.Confirm(f.ctx, worker1, b.ID); return err }, domain.ErrForbidden},
		{"other client confirms", func() error { _, err := f.service.Confirm(f.ctx, client2, b.ID); return err }, domain.ErrForbidden},
		{"admin confirms", func() error { _, err := f.service.Confirm(f.ctx, admin, b.ID); return err }, domain.ErrForbidden},
		{"complete from PENDING", func() error { _, err := f.service.Complete(f.ctx, client, b.ID); return err }, domain.ErrInvalidState},
		{"pay from PENDING", func() error { _, _, err := f.service.AuthorizePayment(f.ctx, client, b.ID); return err }, domain.ErrInvalidState},
		{"worker pays", func() error { _, _, err := f.service.AuthorizePayment(f.ctx, worker1, b.ID); return err }, domain.ErrForbidden},
		{"stranger completes", func() error { _, err := f.service.Complete(f.ctx, stranger, b.ID); return err }, domain.ErrForbidden},
		{"unknown booking", func() error { _, err := f.service.Confirm(f.ctx, client, "missing"); return err }, domain.ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.call(), tc.want)
			assert.Equal(t, domain.BookingStatusPending, f.status(t, b.ID))
			assert.Equal(t, domain.MissionStatusOpen, f.missionStatus(t, "m1"))
		})
	}

	_, err = f.service.Confirm(f.ctx, client, b.ID)
	require.NoError(t, err)
	_, err = f.service.Confirm(f.ctx, client, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, _, err = f.service.AuthorizePayment(f.ctx, client, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, domain.BookingStatusConfirmed, f.status(t, b.ID))
}

func TestBookingService_ServiceLifecycle_InverseAuthority(t *testing.T) {
	f := newFixture(t)
	f.offer(t, "s1", worker1, "150.5")

	b, err := f.service.BookService(f.ctx, client, BookServiceInput{ServiceID: "s1", ScheduledAt: at(14)})
	require.NoError(t, err)
	assert.Equal(t, worker1.ID, b.WorkerID)
	assert.Equal(t, client.ID, b.ClientID)
	assert.Equal(t, []string{"New booking request for First aid workshop"}, f.notifier.messagesFor(worker1.ID))

	// the offer owner confirms the client's reservation
	_, err = f.service.Confirm(f.ctx, client, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.service.Confirm(f.ctx, worker1, b.ID)
	require.NoError(t, err)
	_, err = f.service.Complete(f.ctx, worker1, b.ID)
	require.NoError(t, err)

	// payment stays with the client
	_, _, err = f.service.AuthorizePayment(f.ctx, worker1, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, invoice, err := f.service.AuthorizePayment(f.ctx, client, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "150.50", invoice.Amount.StringFixed(2))
}

func TestBookingService_BookService_Errors(t *testing.T) {
	f := newFixture(t)
	f.offer(t, "s1", worker1, "80")

	_, err := f.service.BookService(f.ctx, client, BookServiceInput{ServiceID: "s1", ScheduledAt: at(10)})
	require.NoError(t, err)

	testCases := []struct {
		name  string
		actor domain.Actor
		input BookServiceInput
		want  error
	}{
		{"slot taken", client2, BookServiceInput{ServiceID: "s1", ScheduledAt: at(10)}, domain.ErrConflict},
		{"owner books own offer", worker1, BookServiceInput{ServiceID: "s1", ScheduledAt: at(11)}, domain.ErrForbidden},
		{"unknown offer", client, BookServiceInput{ServiceID: "missing", ScheduledAt: at(11)}, domain.ErrNotFound},
		{"missing slot", client, BookServiceInput{ServiceID: "s1"}, domain.ErrValidation},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.BookService(f.ctx, tc.actor, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err = f.service.BookService(f.ctx, client2, BookServiceInput{ServiceID: "s1", ScheduledAt: at(11)})
	assert.NoError(t, err)
}

func TestBookingService_QuoteBookingSettlesAtQuoteAmount(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))
	missionID := "m1"
	b := f.acceptedQuote(t, "q1", worker1, "400", &missionID)

	_, err := f.service.Complete(f.ctx, worker1, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.service.Complete(f.ctx, client, b.ID)
	require.NoError(t, err)
	// a quote booking does not close the mission it references
	assert.Equal(t, domain.MissionStatusOpen, f.missionStatus(t, "m1"))

	_, invoice, err := f.service.AuthorizePayment(f.ctx, client, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "400.00", invoice.Amount.StringFixed(2))
}

func TestBookingService_CancelBookingLine(t *testing.T) {
	f := newFixture(t)
	f.offer(t, "s1", worker1, "80")
	b, err := f.service.BookService(f.ctx, client, BookServiceInput{ServiceID: "s1", ScheduledAt: at(10)})
	require.NoError(t, err)
	ref := domain.LineRef{Kind: domain.LineBooking, ID: b.ID}

	_, err = f.service.CancelLine(f.ctx, stranger, ref)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, domain.BookingStatusPending, f.status(t, b.ID))

	line, err := f.service.CancelLine(f.ctx, client, ref)
	require.NoError(t, err)
	assert.Equal(t, domain.LineBooking, line.Kind)
	assert.Equal(t, domain.BookingStatusCancelled, line.Booking.Booking.Status)
	assert.Contains(t, f.notifier.messagesFor(worker1.ID), "First aid workshop was cancelled")

	// cancelling again is an idempotent success
	again, err := f.service.CancelLine(f.ctx, worker1, ref)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, again.Booking.Booking.Status)
	assert.Equal(t, line.Booking.Booking.UpdatedAt, again.Booking.Booking.UpdatedAt)
}

func TestBookingService_CancelIsNotRetroactive(t *testing.T) {
	f := newFixture(t)
	awaiting := f.acceptedQuote(t, "q1", worker1, "100", nil)
	paid := f.acceptedQuote(t, "q2", worker2, "100", nil)

	_, err := f.service.Complete(f.ctx, client, awaiting.ID)
	require.NoError(t, err)
	_, err = f.service.Complete(f.ctx, client, paid.ID)
	require.NoError(t, err)
	_, _, err = f.service.AuthorizePayment(f.ctx, client, paid.ID)
	require.NoError(t, err)

	_, err = f.service.CancelLine(f.ctx, client, domain.LineRef{Kind: domain.LineBooking, ID: awaiting.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.service.CancelLine(f.ctx, worker2, domain.LineRef{Kind: domain.LineBooking, ID: paid.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Equal(t, domain.BookingStatusCompletedAwaitingPayment, f.status(t, awaiting.ID))
	assert.Equal(t, domain.BookingStatusPaid, f.status(t, paid.ID))
}

func TestBookingService_CancelMissionLine_Sweep(t *testing.T) {
	cache := &MockMissionCache{}
	cache.On("InvalidateOpenMissions", mock.Anything).Return(nil)
	f := newFixture(t, WithMissionCache(cache))
	f.mission(t, "m1", "30", at(9), at(18))
	missionID := "m1"

	pending, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	confirmed, err := f.service.Apply(f.ctx, worker2, "m1")
	require.NoError(t, err)
	_, err = f.service.Confirm(f.ctx, client, confirmed.ID)
	require.NoError(t, err)
	paid := f.acceptedQuote(t, "q1", worker3, "100", &missionID)
	_, err = f.service.Complete(f.ctx, client, paid.ID)
	require.NoError(t, err)
	_, _, err = f.service.AuthorizePayment(f.ctx, client, paid.ID)
	require.NoError(t, err)

	ref := domain.LineRef{Kind: domain.LineMission, ID: "m1"}
	_, err = f.service.CancelLine(f.ctx, stranger, ref)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	line, err := f.service.CancelLine(f.ctx, client, ref)
	require.NoError(t, err)
	assert.Equal(t, domain.MissionStatusCancelled, line.Mission.Status)
	require.Len(t, line.Bookings, 3)
	for _, b := range line.Bookings {
		assert.Equal(t, domain.BookingStatusCancelled, b.Status, b.ID)
	}
	for _, id := range []string{pending.ID, confirmed.ID, paid.ID} {
		assert.Equal(t, domain.BookingStatusCancelled, f.status(t, id))
	}
	cache.AssertCalled(t, "InvalidateOpenMissions", mock.Anything)

	again, err := f.service.CancelLine(f.ctx, admin, ref)
	require.NoError(t, err)
	assert.Equal(t, domain.MissionStatusCancelled, again.Mission.Status)
}

func TestBookingService_CancelMissionLine_WorkerWithdraws(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))

	mine, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	other, err := f.service.Apply(f.ctx, worker2, "m1")
	require.NoError(t, err)
	_, err = f.service.Confirm(f.ctx, client, mine.ID)
	require.NoError(t, err)

	line, err := f.service.CancelLine(f.ctx, worker1, domain.LineRef{Kind: domain.LineMission, ID: "m1"})
	require.NoError(t, err)
	require.Len(t, line.Bookings, 1)
	assert.Equal(t, mine.ID, line.Bookings[0].ID)
	assert.Equal(t, domain.BookingStatusCancelled, line.Bookings[0].Status)

	assert.Equal(t, domain.MissionStatusOpen, f.missionStatus(t, "m1"))
	assert.Equal(t, domain.BookingStatusPending, f.status(t, other.ID))
	assert.Equal(t, []string{"New application for Day shift", "New application for Day shift", "A worker withdrew from Day shift"}, f.notifier.messagesFor(client.ID))

	// withdrawing twice is idempotent
	_, err = f.service.CancelLine(f.ctx, worker1, domain.LineRef{Kind: domain.LineMission, ID: "m1"})
	assert.NoError(t, err)
}

func TestBookingService_CancelMissionLine_CompletedMission(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))
	b, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	_, err = f.service.Confirm(f.ctx, client, b.ID)
	require.NoError(t, err)
	_, err = f.service.Complete(f.ctx, client, b.ID)
	require.NoError(t, err)

	_, err = f.service.CancelLine(f.ctx, client, domain.LineRef{Kind: domain.LineMission, ID: "m1"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.service.CancelLine(f.ctx, worker1, domain.LineRef{Kind: domain.LineMission, ID: "m1"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, domain.BookingStatusCompletedAwaitingPayment, f.status(t, b.ID))

	_, err = f.service.CancelLine(f.ctx, client, domain.LineRef{Kind: domain.LineKind("OTHER"), ID: "m1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingService_CompleteCancelsPendingSiblings(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))

	chosen, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	sibling, err := f.service.Apply(f.ctx, worker2, "m1")
	require.NoError(t, err)
	_, err = f.service.Confirm(f.ctx, client, chosen.ID)
	require.NoError(t, err)
	_, err = f.service.Complete(f.ctx, client, chosen.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusCancelled, f.status(t, sibling.ID))
	_, err = f.service.Apply(f.ctx, worker3, "m1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestBookingService_SideEffectFailuresDoNotRollBack(t *testing.T) {
	db := memrepo.New()
	notifier := &MockNotifier{}
	notifier.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("kafka unavailable"))
	producer := &MockProducer{}
	producer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.Anything).Return(errors.New("kafka unavailable"))
	cache := &MockMissionCache{}
	cache.On("InvalidateOpenMissions", mock.Anything).Return(errors.New("redis unavailable"))

	service := NewBookingService(db.Bookings(), db.Missions(), db.Offers(), notifier,
		WithEvents(producer, "booking-events"), WithMissionCache(cache))
	ctx := context.Background()
	require.NoError(t, db.Missions().Create(ctx, &domain.Mission{
		ID: "m1", ClientID: client.ID, Title: "Day shift", Window: domain.Window{Start: at(9), End: at(18)},
		HourlyRate: decimal.NewFromInt(30), Location: "Lyon", Status: domain.MissionStatusOpen,
	}))

	b, err := service.Apply(ctx, worker1, "m1")
	require.NoError(t, err)
	b, err = service.Confirm(ctx, client, b.ID)
	require.NoError(t, err)
	b, err = service.Complete(ctx, client, b.ID)
	require.NoError(t, err)

	d, err := db.Bookings().GetDetails(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompletedAwaitingPayment, d.Booking.Status)
	notifier.AssertNumberOfCalls(t, "Enqueue", 3)
	producer.AssertNumberOfCalls(t, "Publish", 3)
}

func TestBookingService_StalledBrokerDoesNotBlockTransitions(t *testing.T) {
	db := memrepo.New()
	broker := &stalledBroker{}
	service := NewBookingService(db.Bookings(), db.Missions(), db.Offers(), broker,
		WithEvents(broker, "booking-events"), WithSideEffectTimeout(20*time.Millisecond))
	ctx := context.Background()
	require.NoError(t, db.Missions().Create(ctx, &domain.Mission{
		ID: "m1", ClientID: client.ID, Title: "Day shift", Window: domain.Window{Start: at(9), End: at(18)},
		HourlyRate: decimal.NewFromInt(30), Location: "Lyon", Status: domain.MissionStatusOpen,
	}))
	b, err := service.Apply(ctx, worker1, "m1")
	require.NoError(t, err)

	requestCtx, cancel := context.WithCancel(ctx)
	cancel()
	started := time.Now()
	confirmed, err := service.Confirm(requestCtx, client, b.ID)
	require.NoError(t, err)
	assert.Less(t, time.Since(started), time.Second)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)

	require.NotEmpty(t, broker.deadlines)
	for _, hasDeadline := range broker.deadlines {
		assert.True(t, hasDeadline)
	}
}

func TestBookingService_PublishesLifecycleEvents(t *testing.T) {
	producer := &MockProducer{}
	producer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.Anything).Return(nil)
	f := newFixture(t, WithEvents(producer, "booking-events"))
	f.mission(t, "m1", "30", at(9), at(18))

	b, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	_, err = f.service.CancelLine(f.ctx, client, domain.LineRef{Kind: domain.LineMission, ID: "m1"})
	require.NoError(t, err)

	types := make([]string, 0)
	keys := make([]string, 0)
	for _, call := range producer.Calls {
		event, ok := call.Arguments.Get(3).(kafka.LifecycleEvent)
		require.True(t, ok)
		types = append(types, event.Type)
		keys = append(keys, call.Arguments.String(2))
		assert.Equal(t, client.ID, event.ClientID)
	}
	assert.Equal(t, []string{"booking_created", "mission_cancelled", "booking_cancelled"}, types)
	assert.Equal(t, []string{b.ID, "m1", b.ID}, keys)
}

func TestBookingService_ListAndDetails(t *testing.T) {
	f := newFixture(t)
	f.mission(t, "m1", "30", at(9), at(18))
	f.offer(t, "s1", worker3, "80")

	first, err := f.service.Apply(f.ctx, worker1, "m1")
	require.NoError(t, err)
	_, err = f.service.Apply(f.ctx, worker2, "m1")
	require.NoError(t, err)
	_, err = f.service.BookService(f.ctx, client, BookServiceInput{ServiceID: "s1", ScheduledAt: at(20)})
	require.NoError(t, err)

	lines, err := f.service.ListForActor(f.ctx, client)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	kinds := map[domain.LineKind]int{}
	for _, line := range lines {
		kinds[line.Kind]++
		if line.Kind == domain.LineMission {
			assert.Equal(t, "m1", line.Mission.ID)
			assert.Len(t, line.Bookings, 2)
		} else {
			assert.Equal(t, "First aid workshop", line.Booking.Description())
		}
	}
	assert.Equal(t, map[domain.LineKind]int{domain.LineMission: 1, domain.LineBooking: 1}, kinds)

	ref := domain.LineRef{Kind: domain.LineMission, ID: "m1"}
	full, err := f.service.GetLineDetails(f.ctx, client, ref)
	require.NoError(t, err)
	assert.Len(t, full.Bookings, 2)

	own, err := f.service.GetLineDetails(f.ctx, worker1, ref)
	require.NoError(t, err)
	require.Len(t, own.Bookings, 1)
	assert.Equal(t, first.ID, own.Bookings[0].ID)

	_, err = f.service.GetLineDetails(f.ctx, stranger, ref)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.service.GetLineDetails(f.ctx, stranger, domain.LineRef{Kind: domain.LineBooking, ID: first.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.service.GetLineDetails(f.ctx, worker1, domain.LineRef{Kind: domain.LineBooking, ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_RenderInvoice(t *testing.T) {
	f := newFixture(t)
	b := f.acceptedQuote(t, "q1", worker1, "400", nil)

	_, _, err := f.service.RenderInvoice(f.ctx, client, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.service.Complete(f.ctx, client, b.ID)
	require.NoError(t, err)
	_, _, err = f.service.AuthorizePayment(f.ctx, client, b.ID)
	require.NoError(t, err)

	_, _, err = f.service.RenderInvoice(f.ctx, stranger, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	body, contentType, err := f.service.RenderInvoice(f.ctx, worker1, b.ID)
	require.NoError(t, err)
	assert.Contains(t, contentType, "text/plain")
	assert.Contains(t, string(body), "400.00 EUR")
	assert.Contains(t, string(body), "Night cover")
}
