package api

import (
	"time"

	"github.com/Domenick1991/carestaff/internal/domain"
)

type missionResponse struct {
	ID         string `json:"id"`
	ClientID   string `json:"client_id"`
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end"`
	HourlyRate string `json:"hourly_rate"`
	Address    string `json:"address"`
	Status     string `json:"status"`
}

type bookingResponse struct {
	ID          string  `json:"id"`
	ClientID    string  `json:"client_id"`
	WorkerID    string  `json:"worker_id"`
	MissionID   *string `json:"mission_id,omitempty"`
	ServiceID   *string `json:"service_id,omitempty"`
	QuoteID     *string `json:"quote_id,omitempty"`
	ScheduledAt string  `json:"scheduled_at"`
	Status      string  `json:"status"`
}

type bookingDetailsResponse struct {
	bookingResponse
	Origin      string           `json:"origin"`
	Description string           `json:"description"`
	Invoice     *invoiceResponse `json:"invoice,omitempty"`
}

type invoiceResponse struct {
	ID        string `json:"id"`
	BookingID string `json:"booking_id"`
	Amount    string `json:"amount"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

type lineResponse struct {
	Kind     string                  `json:"kind"`
	Mission  *missionResponse        `json:"mission,omitempty"`
	Bookings []bookingResponse       `json:"bookings,omitempty"`
	Booking  *bookingDetailsResponse `json:"booking,omitempty"`
}

type quoteResponse struct {
	ID              string  `json:"id"`
	EstablishmentID string  `json:"establishment_id"`
	FreelanceID     string  `json:"freelance_id"`
	MissionID       *string `json:"mission_id,omitempty"`
	Amount          string  `json:"amount"`
	Description     string  `json:"description"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	Status          string  `json:"status"`
	ProposedBy      string  `json:"proposed_by"`
}

type offerResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toMissionResponse(m *domain.Mission) missionResponse {
	return missionResponse{
		ID:         m.ID,
		ClientID:   m.ClientID,
		Title:      m.Title,
		Start:      formatTime(m.Window.Start),
		End:        formatTime(m.Window.End),
		HourlyRate: m.HourlyRate.StringFixed(2),
		Address:    m.Location,
		Status:     string(m.Status),
	}
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		ClientID:    b.ClientID,
		WorkerID:    b.WorkerID,
		MissionID:   b.MissionID,
		ServiceID:   b.ServiceID,
		QuoteID:     b.QuoteID,
		ScheduledAt: formatTime(b.ScheduledAt),
		Status:      string(b.Status),
	}
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}

func toInvoiceResponse(inv *domain.Invoice) *invoiceResponse {
	if inv == nil {
		return nil
	}
	return &invoiceResponse{
		ID:        inv.ID,
		BookingID: inv.BookingID,
		Amount:    inv.Amount.StringFixed(2),
		URL:       inv.URL,
		CreatedAt: formatTime(inv.CreatedAt),
	}
}

func toLineResponse(line *domain.LineDetails) lineResponse {
	resp := lineResponse{Kind: string(line.Kind)}
	if line.Mission != nil {
		m := toMissionResponse(line.Mission)
		resp.Mission = &m
		resp.Bookings = toBookingResponses(line.Bookings)
	}
	if line.Booking != nil {
		resp.Booking = &bookingDetailsResponse{
			bookingResponse: toBookingResponse(&line.Booking.Booking),
			Origin:          line.Booking.Origin().String(),
			Description:     line.Booking.Description(),
			Invoice:         toInvoiceResponse(line.Booking.Invoice),
		}
	}
	return resp
}

func toQuoteResponse(q *domain.Quote) quoteResponse {
	return quoteResponse{
		ID:              q.ID,
		EstablishmentID: q.EstablishmentID,
		FreelanceID:     q.FreelanceID,
		MissionID:       q.MissionID,
		Amount:          q.Amount.StringFixed(2),
		Description:     q.Description,
		Start:           formatTime(q.Window.Start),
		End:             formatTime(q.Window.End),
		Status:          string(q.Status),
		ProposedBy:      q.ProposedBy,
	}
}

func toOfferResponse(o *domain.ServiceOffer) offerResponse {
	return offerResponse{
		ID:          o.ID,
		OwnerID:     o.OwnerID,
		Title:       o.Title,
		Description: o.Description,
		Price:       o.Price.StringFixed(2),
	}
}
