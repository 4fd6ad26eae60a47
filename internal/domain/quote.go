package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "PENDING"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

// Quote is a negotiated price and window between an establishment and a freelancer.
type Quote struct {
	ID              string
	EstablishmentID string
	FreelanceID     string
	MissionID       *string
	Amount          decimal.Decimal
	Description     string
	Window          Window
	Status          QuoteStatus
	ProposedBy      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Counterparty returns the party that did not propose the quote.
func (q *Quote) Counterparty() string {
	if q.ProposedBy == q.EstablishmentID {
		return q.FreelanceID
	}
	return q.EstablishmentID
}
