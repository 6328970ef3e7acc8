package event

import (
	"fmt"

	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/template"
)

const SourceUserSignup = "user_signup"

const (
	signupEmailTemplate = "user_welcome_email.tmpl"
	signupSlackTemplate = "user_welcome_slack_message.tmpl"
)

// SignupHandler produces welcome notifications for a new user, one per
// channel: an email to the recipient and a slack message to the
// configured slack channel.
type SignupHandler struct {
	baseHandler
}

func NewSignupHandler(event *model.Event, templates *template.Manager) (Handler, error) {
	h := &SignupHandler{
		baseHandler: baseHandler{
			source:    SourceUserSignup,
			eventID:   event.ID,
			data:      event.Data,
			templates: templates,
		},
	}

	if err := h.requireFields("user_name", "email", "service_name", "recipient", "slack_channel"); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *SignupHandler) CreateNotifications() ([]*model.Notification, error) {
	subject := fmt.Sprintf("Welcome to %s", h.data.String("service_name"))

	email, err := h.draft(signupEmailTemplate, "email", h.data.String("recipient"), subject, nil)
	if err != nil {
		return nil, err
	}

	slack, err := h.draft(signupSlackTemplate, "slack", h.data.String("slack_channel"), subject, nil)
	if err != nil {
		return nil, err
	}

	return []*model.Notification{email, slack}, nil
}
