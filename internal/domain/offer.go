package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceOffer is a fixed-price training or workshop published by a worker.
type ServiceOffer struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Price       decimal.Decimal
	CreatedAt   time.Time
}
