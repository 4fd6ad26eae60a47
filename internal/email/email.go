package email

import (
	"context"
	"log"

	"github.com/Domenick1991/carestaff/internal/domain"
)

// Sender stands in for the mail gateway: it writes the message to the log.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(_ context.Context, n domain.Notification) error {
	log.Printf("send email to user %s [%s]: %s", n.UserID, n.Severity, n.Message)
	return nil
}
