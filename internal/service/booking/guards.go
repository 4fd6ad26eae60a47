package booking

import (
	"fmt"

	"github.com/Domenick1991/carestaff/internal/domain"
)

// Guards run after the booking is loaded, so a missing booking has already
// failed with ErrNotFound. Authority is checked before state.

func requireAuthority(d *domain.BookingDetails, actor domain.Actor, action string) error {
	if actor.ID == "" || d.AuthorityID() != actor.ID {
		return fmt.Errorf("%w: only the %s authority of booking %s may %s it", domain.ErrForbidden, d.Origin(), d.Booking.ID, action)
	}
	return nil
}

func requireClient(b *domain.Booking, actor domain.Actor, action string) error {
	if actor.ID == "" || b.ClientID != actor.ID {
		return fmt.Errorf("%w: only the client of booking %s may %s", domain.ErrForbidden, b.ID, action)
	}
	return nil
}

func requireParty(b *domain.Booking, actor domain.Actor) error {
	if !b.IsParty(actor.ID) {
		return fmt.Errorf("%w: user %s is not a party to booking %s", domain.ErrForbidden, actor.ID, b.ID)
	}
	return nil
}

// requireTransition checks the booking is in from and that from -> to is an edge
// of the state machine.
func requireTransition(b *domain.Booking, from, to domain.BookingStatus) error {
	if b.Status != from || !domain.CanTransition(from, to) {
		return fmt.Errorf("%w: booking must be %s before moving to %s, it is %s", domain.ErrInvalidState, from, to, b.Status)
	}
	return nil
}

func requireCancellable(b *domain.Booking) error {
	if !domain.CanTransition(b.Status, domain.BookingStatusCancelled) {
		return fmt.Errorf("%w: booking %s is %s and cancellation is not retroactive", domain.ErrInvalidState, b.ID, b.Status)
	}
	return nil
}
