// Package settlement computes what a client owes when a booking is paid.
package settlement

import (
	"fmt"
	"time"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/shopspring/decimal"
)

// Places is the precision of every settled amount.
const Places = 2

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// ComputeAmount returns the amount owed for the booking, rounded half-up to cents.
// A quote amount is taken verbatim even when a mission or service is also attached.
func ComputeAmount(d *domain.BookingDetails) (decimal.Decimal, error) {
	switch d.Origin() {
	case domain.OriginQuote:
		return Round(d.Quote.Amount), nil
	case domain.OriginMission:
		return MissionAmount(d.Mission.HourlyRate, d.Mission.Window), nil
	case domain.OriginService:
		return Round(d.Service.Price), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: booking %s has no mission, service or quote to price", domain.ErrInvalidState, d.Booking.ID)
	}
}

// MissionAmount is rate × duration in (fractional) hours.
func MissionAmount(rate decimal.Decimal, w domain.Window) decimal.Decimal {
	nanos := decimal.NewFromInt(int64(w.Duration()))
	return Round(rate.Mul(nanos).Div(nanosPerHour))
}

// Round rounds half away from zero, which is half-up for the positive amounts
// handled here: 0.005 becomes 0.01.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(Places)
}

// InvoiceURL is the download locator of a booking's invoice.
func InvoiceURL(bookingID string) string {
	return fmt.Sprintf("/invoices/%s/download", bookingID)
}
