package dedup

import (
	"context"

	"github.com/luisz08/notif-svc/internal/model"
)

// Policy is a single suppression rule. ShouldSend decides whether the
// candidate may be dispatched; RecordSuppression writes the audit entry
// when this policy suppresses it.
type Policy interface {
	Name() string
	ShouldSend(ctx context.Context, notification *model.Notification) (bool, error)
	RecordSuppression(ctx context.Context, notification *model.Notification) error
}
