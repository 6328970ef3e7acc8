package channel

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisz08/notif-svc/internal/config"
	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/pkg/errors"
)

func emailNotification() *model.Notification {
	return &model.Notification{
		ID:        uuid.New(),
		EventID:   uuid.New(),
		Channel:   "email",
		Recipient: "user@example.com",
		Subject:   "Welcome",
		Content:   "hello there",
	}
}

func TestEmailChannelWritesFile(t *testing.T) {
	dir := t.TempDir()
	ch := NewEmailChannel(config.EmailChannelConfig{
		OutputDir: dir,
		FromEmail: "noreply@example.com",
	})
	require.True(t, ch.ValidateConfig())

	n := emailNotification()
	require.NoError(t, ch.Send(n))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0].Name(), n.ID.String()+"_"))
	assert.True(t, strings.HasSuffix(files[0].Name(), ".txt"))

	body, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "To: user@example.com")
	assert.Contains(t, text, "From: noreply@example.com")
	assert.Contains(t, text, "Subject: Welcome")
	assert.True(t, strings.HasSuffix(text, "\n\nhello there\n"), "headers and body are separated by a blank line")
}

func TestEmailChannelCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox", "mail")
	ch := NewEmailChannel(config.EmailChannelConfig{OutputDir: dir})

	require.NoError(t, ch.Send(emailNotification()))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestEmailChannelValidateConfig(t *testing.T) {
	assert.False(t, NewEmailChannel(config.EmailChannelConfig{}).ValidateConfig())
	assert.True(t, NewEmailChannel(config.EmailChannelConfig{OutputDir: "/tmp/mail"}).ValidateConfig())

	smtp := config.EmailChannelConfig{FromEmail: "noreply@example.com"}
	smtp.SMTP.Host = "smtp.example.com"
	assert.False(t, NewEmailChannel(smtp).ValidateConfig(), "SMTP mode requires a port")
	smtp.SMTP.Port = 587
	assert.True(t, NewEmailChannel(smtp).ValidateConfig())
}

func TestSlackChannelLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ch := NewSlackChannel(config.SlackChannelConfig{DefaultChannel: "#general"}, &logger)
	require.True(t, ch.ValidateConfig())

	n := emailNotification()
	n.Channel = "slack"
	n.Recipient = "#alerts"
	n.Content = "deploy finished"
	require.NoError(t, ch.Send(n))

	out := buf.String()
	assert.Contains(t, out, "#alerts")
	assert.Contains(t, out, "deploy finished")
}

func TestSlackChannelFallsBackToDefaultChannel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ch := NewSlackChannel(config.SlackChannelConfig{DefaultChannel: "#general"}, &logger)

	n := emailNotification()
	n.Recipient = ""
	require.NoError(t, ch.Send(n))
	assert.Contains(t, buf.String(), "#general")
}

type stubChannel struct {
	name  string
	valid bool
	err   error
	calls int
}

func (c *stubChannel) Name() string        { return c.name }
func (c *stubChannel) Description() string { return c.name + " stub" }
func (c *stubChannel) ValidateConfig() bool {
	return c.valid
}

func (c *stubChannel) Send(n *model.Notification) error {
	c.calls++
	return c.err
}

func TestManagerRoutesByChannelName(t *testing.T) {
	email := &stubChannel{name: "email", valid: true}
	slack := &stubChannel{name: "slack", valid: true}
	m := NewManager(email, slack)

	n := emailNotification()
	require.NoError(t, m.Send(n))
	assert.Equal(t, 1, email.calls)
	assert.Zero(t, slack.calls)
}

func TestManagerUnknownChannel(t *testing.T) {
	m := NewManager(&stubChannel{name: "email", valid: true})

	n := emailNotification()
	n.Channel = "pager"
	err := m.Send(n)
	require.Error(t, err)
	assert.Equal(t, errors.ErrDispatch, errors.CodeOf(err))
}

func TestManagerInvalidConfig(t *testing.T) {
	ch := &stubChannel{name: "email", valid: false}
	m := NewManager(ch)

	err := m.Send(emailNotification())
	require.Error(t, err)
	assert.Equal(t, errors.ErrDispatch, errors.CodeOf(err))
	assert.Zero(t, ch.calls, "an invalid channel is never invoked")
}

func TestManagerWrapsSendFailure(t *testing.T) {
	ch := &stubChannel{name: "email", valid: true, err: fmt.Errorf("connection reset")}
	m := NewManager(ch)

	err := m.Send(emailNotification())
	require.Error(t, err)
	assert.Equal(t, errors.ErrDispatch, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestManagerInfos(t *testing.T) {
	m := NewManager(
		&stubChannel{name: "email", valid: true},
		&stubChannel{name: "slack", valid: true},
	)

	infos := m.Infos()
	assert.Len(t, infos, 2)
	assert.Equal(t, "email stub", infos["email"])
}
