package dedup

import (
	"context"
	"time"

	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository"
)

const DefaultWindow = 60 * time.Second

// TimeWindowPolicy suppresses a notification when a different
// notification with the same content hash was created within the
// trailing window. The window is global per content hash, not scoped
// per recipient: identical content drafted for two recipients inside
// the window suppresses the second. That is the intended broadcast
// behavior, not an accident of implementation.
type TimeWindowPolicy struct {
	notifications repository.NotificationRepository
	dedupLog      repository.DeduplicationRepository
	window        time.Duration
}

func NewTimeWindowPolicy(
	notifications repository.NotificationRepository,
	dedupLog repository.DeduplicationRepository,
	window time.Duration,
) *TimeWindowPolicy {
	if window <= 0 {
		window = DefaultWindow
	}
	return &TimeWindowPolicy{
		notifications: notifications,
		dedupLog:      dedupLog,
		window:        window,
	}
}

func (p *TimeWindowPolicy) Name() string { return "time_window" }

func (p *TimeWindowPolicy) ShouldSend(ctx context.Context, notification *model.Notification) (bool, error) {
	exists, err := p.notifications.ExistsWithHashSince(ctx, notification.ID, notification.ContentHash, p.window)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (p *TimeWindowPolicy) RecordSuppression(ctx context.Context, notification *model.Notification) error {
	_, err := p.dedupLog.LogDeduplication(ctx, notification.ContentHash)
	return err
}

// CleanupLog deletes suppression log entries older than the retention
// period and returns how many were removed. The log is audit-only, so
// trimming it never affects suppression decisions.
func (p *TimeWindowPolicy) CleanupLog(ctx context.Context, retention time.Duration) (int64, error) {
	return p.dedupLog.CleanupOldLogs(ctx, time.Now().UTC().Add(-retention))
}
