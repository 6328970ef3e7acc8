package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "pending"
	NotificationStatusSent      NotificationStatus = "sent"
	NotificationStatusFailed    NotificationStatus = "failed"
	NotificationStatusDuplicate NotificationStatus = "duplicate"
)

// Terminal reports whether the status is a final delivery outcome.
// A notification is created pending and moves exactly once to one of
// sent, failed or duplicate.
func (s NotificationStatus) Terminal() bool {
	switch s {
	case NotificationStatusSent, NotificationStatusFailed, NotificationStatusDuplicate:
		return true
	}
	return false
}

type Notification struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	EventID     uuid.UUID          `json:"event_id" db:"event_id"`
	TemplateID  string             `json:"template_id" db:"template_id"`
	Channel     string             `json:"channel" db:"channel"`
	Recipient   string             `json:"recipient" db:"recipient"`
	Subject     string             `json:"subject" db:"subject"`
	Content     string             `json:"content" db:"content"`
	ContentHash string             `json:"content_hash" db:"content_hash"`
	Status      NotificationStatus `json:"status" db:"status"`
	SentAt      *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
}

// DeduplicationLog is an audit record of a suppressed send. The
// suppression decision itself is derived from the notifications table,
// not from this log.
type DeduplicationLog struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ContentHash string    `json:"content_hash" db:"content_hash"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NotificationStats aggregates notification counts by status.
type NotificationStats struct {
	Total      int `json:"total" db:"total"`
	Sent       int `json:"sent" db:"sent"`
	Failed     int `json:"failed" db:"failed"`
	Pending    int `json:"pending" db:"pending"`
	Duplicates int `json:"duplicates" db:"duplicates"`
}
