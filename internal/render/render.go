// Package render turns a settled invoice into a downloadable document.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

const ContentTypeText = "text/plain; charset=utf-8"

// InvoiceDocument is everything a renderer is allowed to know about an invoice.
type InvoiceDocument struct {
	InvoiceID   string
	BookingID   string
	Amount      decimal.Decimal
	Description string
	ClientID    string
	WorkerID    string
	IssuedAt    time.Time
}

type Renderer interface {
	// Render returns the document bytes and their content type.
	Render(doc InvoiceDocument) ([]byte, string, error)
}

type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (TextRenderer) Render(doc InvoiceDocument) ([]byte, string, error) {
	if doc.InvoiceID == "" || doc.BookingID == "" {
		return nil, "", errors.New("invoice and booking ids are required")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "INVOICE %s\n\n", doc.InvoiceID)

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Issued\t%s\n", doc.IssuedAt.UTC().Format("2006-01-02"))
	fmt.Fprintf(w, "Booking\t%s\n", doc.BookingID)
	fmt.Fprintf(w, "Client\t%s\n", doc.ClientID)
	fmt.Fprintf(w, "Worker\t%s\n", doc.WorkerID)
	fmt.Fprintf(w, "Description\t%s\n", doc.Description)
	fmt.Fprintf(w, "Amount\t%s EUR\n", doc.Amount.StringFixed(2))
	if err := w.Flush(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), ContentTypeText, nil
}

var _ Renderer = TextRenderer{}
