package channel

import (
	"fmt"

	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/pkg/errors"
)

// Channel is a named delivery transport for notifications.
type Channel interface {
	Name() string
	Description() string
	Send(notification *model.Notification) error
	ValidateConfig() bool
}

// Manager dispatches notifications to channels keyed by name.
type Manager struct {
	channels map[string]Channel
}

func NewManager(channels ...Channel) *Manager {
	m := &Manager{channels: make(map[string]Channel, len(channels))}
	for _, ch := range channels {
		m.channels[ch.Name()] = ch
	}
	return m
}

// Infos returns the name and description of every registered channel.
func (m *Manager) Infos() map[string]string {
	infos := make(map[string]string, len(m.channels))
	for name, ch := range m.channels {
		infos[name] = ch.Description()
	}
	return infos
}

// Send routes the notification to its channel. Unknown channels and
// channels whose configuration fails validation are dispatch errors.
func (m *Manager) Send(notification *model.Notification) error {
	ch, ok := m.channels[notification.Channel]
	if !ok {
		return errors.Dispatch(fmt.Sprintf("channel %q not found", notification.Channel), nil)
	}
	if !ch.ValidateConfig() {
		return errors.Dispatch(fmt.Sprintf("channel %q configuration is invalid", notification.Channel), nil)
	}
	if err := ch.Send(notification); err != nil {
		return errors.Dispatch(fmt.Sprintf("channel %q send failed", notification.Channel), err)
	}
	return nil
}
