// Package notify carries user-facing notifications from the API process to the
// worker, which stores them in the user's inbox and mails them.
package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/kafka"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// KafkaNotifier enqueues notifications on a Kafka topic keyed by user id.
type KafkaNotifier struct {
	producer Publisher
	topic    string
	now      func() time.Time
}

func NewKafkaNotifier(producer Publisher, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic, now: time.Now}
}

func (n *KafkaNotifier) Enqueue(ctx context.Context, userID, message string, severity domain.Severity) error {
	if userID == "" {
		return errors.New("notification without recipient")
	}
	return n.producer.Publish(ctx, n.topic, userID, kafka.NotificationEvent{
		UserID:    userID,
		Message:   message,
		Severity:  string(severity),
		CreatedAt: n.now().UTC(),
	})
}

// LogNotifier is used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) Enqueue(_ context.Context, userID, message string, severity domain.Severity) error {
	log.Printf("notify %s [%s]: %s", userID, severity, message)
	return nil
}

type Inbox interface {
	PushNotification(ctx context.Context, n domain.Notification) error
}

type Mailer interface {
	Send(ctx context.Context, n domain.Notification) error
}

// Deliverer is the worker side: inbox first, then mail. A mail failure is
// logged and does not block the consumer.
type Deliverer struct {
	inbox  Inbox
	mailer Mailer
}

func NewDeliverer(inbox Inbox, mailer Mailer) *Deliverer {
	return &Deliverer{inbox: inbox, mailer: mailer}
}

func (d *Deliverer) Handle(ctx context.Context, event kafka.NotificationEvent) error {
	n := domain.Notification{
		UserID:    event.UserID,
		Message:   event.Message,
		Severity:  domain.Severity(event.Severity),
		CreatedAt: event.CreatedAt,
	}
	if n.UserID == "" {
		log.Printf("WARNING: dropping notification without recipient: %q", n.Message)
		return nil
	}
	if err := d.inbox.PushNotification(ctx, n); err != nil {
		return err
	}
	if d.mailer != nil {
		if err := d.mailer.Send(ctx, n); err != nil {
			log.Printf("WARNING: Failed to mail notification for user %s: %v", n.UserID, err)
		}
	}
	return nil
}
