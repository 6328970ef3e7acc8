package dedup

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/luisz08/notif-svc/internal/model"
)

// Manager evaluates suppression policies in registration order. The
// first policy that refuses a send wins: the suppression is recorded
// against that policy only and later policies are not consulted.
type Manager struct {
	policies []Policy
	log      *zerolog.Logger
}

func NewManager(log *zerolog.Logger, policies ...Policy) *Manager {
	return &Manager{policies: policies, log: log}
}

// Handle reports whether the notification may be sent. A false return
// means a policy suppressed it and the suppression was recorded.
func (m *Manager) Handle(ctx context.Context, notification *model.Notification) (bool, error) {
	for _, policy := range m.policies {
		ok, err := policy.ShouldSend(ctx, notification)
		if err != nil {
			return false, err
		}
		if ok {
			continue
		}

		m.log.Debug().
			Str("policy", policy.Name()).
			Str("notification_id", notification.ID.String()).
			Str("content_hash", notification.ContentHash).
			Msg("notification suppressed")

		if err := policy.RecordSuppression(ctx, notification); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// Policy returns the registered policy with the given name, or nil.
func (m *Manager) Policy(name string) Policy {
	for _, p := range m.policies {
		if p.Name() == name {
			return p
		}
	}
	return nil
}
