package domain

// OriginKind tells which offer produced a booking.
type OriginKind int

const (
	OriginDirect OriginKind = iota
	OriginMission
	OriginService
	OriginQuote
)

func (k OriginKind) String() string {
	switch k {
	case OriginMission:
		return "mission"
	case OriginService:
		return "service"
	case OriginQuote:
		return "quote"
	default:
		return "direct"
	}
}

// BookingDetails is a booking loaded together with the records it references.
type BookingDetails struct {
	Booking Booking
	Mission *Mission
	Service *ServiceOffer
	Quote   *Quote
	Invoice *Invoice
}

// Origin resolves the booking's origin once. A quote wins over the mission it
// may also carry, then mission, then service.
func (d *BookingDetails) Origin() OriginKind {
	switch {
	case d.Quote != nil:
		return OriginQuote
	case d.Mission != nil:
		return OriginMission
	case d.Service != nil:
		return OriginService
	default:
		return OriginDirect
	}
}

// AuthorityID returns the user allowed to confirm and complete the booking.
//
// For a mission the publishing client decides. For a service offer it is the
// other way round: the worker who owns the offer confirms the client's
// reservation. Quote-derived and direct bookings fall back to the recorded client.
func (d *BookingDetails) AuthorityID() string {
	switch d.Origin() {
	case OriginMission:
		return d.Mission.ClientID
	case OriginService:
		return d.Service.OwnerID
	case OriginQuote, OriginDirect:
		return d.Booking.ClientID
	}
	return d.Booking.ClientID
}

// Description names what is being settled, for invoices and notifications.
func (d *BookingDetails) Description() string {
	switch d.Origin() {
	case OriginQuote:
		return d.Quote.Description
	case OriginMission:
		return d.Mission.Title
	case OriginService:
		return d.Service.Title
	}
	return "booking " + d.Booking.ID
}
