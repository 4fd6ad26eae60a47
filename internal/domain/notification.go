package domain

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Notification is a message for one user. Delivery is best effort.
type Notification struct {
	UserID    string
	Message   string
	Severity  Severity
	CreatedAt time.Time
}
