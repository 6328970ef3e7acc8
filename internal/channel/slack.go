package channel

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/luisz08/notif-svc/internal/config"
	"github.com/luisz08/notif-svc/internal/model"
)

// SlackChannel delivers notifications as a formatted block written to
// the log. It performs no network delivery.
type SlackChannel struct {
	cfg config.SlackChannelConfig
	log *zerolog.Logger
}

func NewSlackChannel(cfg config.SlackChannelConfig, log *zerolog.Logger) *SlackChannel {
	return &SlackChannel{cfg: cfg, log: log}
}

func (c *SlackChannel) Name() string        { return "slack" }
func (c *SlackChannel) Description() string { return "Slack notification channel" }

func (c *SlackChannel) ValidateConfig() bool {
	return c.log != nil
}

func (c *SlackChannel) Send(notification *model.Notification) error {
	target := notification.Recipient
	if target == "" {
		target = c.cfg.DefaultChannel
	}

	c.log.Info().
		Str("channel", target).
		Str("subject", notification.Subject).
		Str("notification_id", notification.ID.String()).
		Time("at", time.Now()).
		Msg(notification.Content)
	return nil
}
