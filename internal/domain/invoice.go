package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is written once, when its booking becomes PAID.
type Invoice struct {
	ID        string
	BookingID string
	Amount    decimal.Decimal
	URL       string
	CreatedAt time.Time
}
