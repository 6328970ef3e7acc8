package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/luisz08/notif-svc/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, eventType model.EventType, data model.JSONMap) (*model.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Event, error)
	GetUnprocessed(ctx context.Context) ([]*model.Event, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	GetScheduled(ctx context.Context) ([]*model.Event, error)
	GetScheduledByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
}

type NotificationRepository interface {
	// CreateFromDraft persists a handler-built draft as pending.
	// Storage is authoritative on write: the returned notification
	// carries the stored id and timestamps.
	CreateFromDraft(ctx context.Context, draft *model.Notification) (*model.Notification, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus, sentAt *time.Time) (*model.Notification, error)

	// ExistsWithHashSince reports whether a different notification with
	// the same content hash was created within the trailing window.
	ExistsWithHashSince(ctx context.Context, excludeID uuid.UUID, contentHash string, window time.Duration) (bool, error)

	GetStats(ctx context.Context) (*model.NotificationStats, error)
}

type DeduplicationRepository interface {
	LogDeduplication(ctx context.Context, contentHash string) (*model.DeduplicationLog, error)
	CleanupOldLogs(ctx context.Context, before time.Time) (int64, error)
}
