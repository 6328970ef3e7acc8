package channel

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/luisz08/notif-svc/internal/config"
	"github.com/luisz08/notif-svc/internal/model"
)

// EmailChannel delivers notifications as email. Without SMTP settings
// it writes one RFC-822-style file per notification under the output
// directory, which keeps local runs inspectable without a mail server.
type EmailChannel struct {
	cfg config.EmailChannelConfig
}

func NewEmailChannel(cfg config.EmailChannelConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg}
}

func (c *EmailChannel) Name() string        { return "email" }
func (c *EmailChannel) Description() string { return "Email notification channel" }

func (c *EmailChannel) ValidateConfig() bool {
	if c.cfg.SMTP.Host != "" {
		return c.cfg.SMTP.Port > 0 && c.cfg.FromEmail != ""
	}
	return c.cfg.OutputDir != ""
}

func (c *EmailChannel) Send(notification *model.Notification) error {
	if c.cfg.SMTP.Host != "" {
		return c.sendSMTP(notification)
	}
	return c.writeFile(notification)
}

func (c *EmailChannel) sendSMTP(notification *model.Notification) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", c.cfg.FromEmail, c.cfg.FromName)
	msg.SetHeader("To", notification.Recipient)
	msg.SetHeader("Subject", notification.Subject)
	msg.SetBody("text/plain", notification.Content)

	d := gomail.NewDialer(c.cfg.SMTP.Host, c.cfg.SMTP.Port, c.cfg.SMTP.Username, c.cfg.SMTP.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func (c *EmailChannel) writeFile(notification *model.Notification) error {
	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("%s_%s.txt", notification.ID, now.Format("20060102_150405"))
	path := filepath.Join(c.cfg.OutputDir, filename)

	body := fmt.Sprintf(
		"To: %s\nFrom: %s\nSubject: %s\nDate: %s\n\n%s\n",
		notification.Recipient,
		c.cfg.FromEmail,
		notification.Subject,
		now.Format(time.RFC3339),
		notification.Content,
	)

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("failed to write email file: %w", err)
	}
	return nil
}
