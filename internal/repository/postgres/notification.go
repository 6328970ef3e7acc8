package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) CreateFromDraft(ctx context.Context, draft *model.Notification) (*model.Notification, error) {
	if draft == nil {
		return nil, fmt.Errorf("draft cannot be nil")
	}

	n := *draft
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Subject == "" {
		n.Subject = "No Subject"
	}
	n.Status = model.NotificationStatusPending
	n.SentAt = nil

	query := `
		INSERT INTO notifications (
			id, event_id, template_id, channel, recipient, subject,
			content, content_hash, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.EventID,
		n.TemplateID,
		n.Channel,
		n.Recipient,
		n.Subject,
		n.Content,
		n.ContentHash,
		n.Status,
		n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `
		SELECT id, event_id, template_id, channel, recipient, subject,
		       content, content_hash, status, sent_at, created_at
		FROM notifications
		WHERE id = $1
	`
	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

// UpdateStatus moves a pending notification to its terminal status. The
// pending guard makes the transition single-shot at the storage layer:
// a row that already reached a terminal status is never rewritten, and
// the call reports nil for it.
func (r *notificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus, sentAt *time.Time) (*model.Notification, error) {
	if sentAt == nil && status == model.NotificationStatusSent {
		now := time.Now().UTC()
		sentAt = &now
	}

	var updated *model.Notification
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE notifications
			SET status = $1, sent_at = COALESCE($2, sent_at)
			WHERE id = $3 AND status = 'pending'
		`
		res, err := tx.ExecContext(ctx, query, status, sentAt, id)
		if err != nil {
			return fmt.Errorf("failed to update notification status: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil
		}

		var n model.Notification
		get := `
			SELECT id, event_id, template_id, channel, recipient, subject,
			       content, content_hash, status, sent_at, created_at
			FROM notifications
			WHERE id = $1
		`
		if err := tx.GetContext(ctx, &n, get, id); err != nil {
			return fmt.Errorf("failed to reload notification: %w", err)
		}
		updated = &n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *notificationRepository) ExistsWithHashSince(ctx context.Context, excludeID uuid.UUID, contentHash string, window time.Duration) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE content_hash = $1
			  AND id <> $2
			  AND created_at > $3
		)
	`
	cutoff := time.Now().UTC().Add(-window)

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, contentHash, excludeID, cutoff); err != nil {
		return false, fmt.Errorf("failed to check content hash window: %w", err)
	}
	return exists, nil
}

func (r *notificationRepository) GetStats(ctx context.Context) (*model.NotificationStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'sent') AS sent,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'duplicate') AS duplicates
		FROM notifications
	`
	var stats model.NotificationStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get notification stats: %w", err)
	}
	return &stats, nil
}
