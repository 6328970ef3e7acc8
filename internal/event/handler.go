package event

import (
	"github.com/google/uuid"

	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/template"
	"github.com/luisz08/notif-svc/pkg/errors"
)

// Handler is the typed logic behind one event source. A handler is
// constructed from a classified event and produces unpersisted draft
// notifications; it never touches storage.
type Handler interface {
	Source() string
	CreateNotifications() ([]*model.Notification, error)
}

// ScheduledHandler is a handler whose event recurs on a cron schedule.
type ScheduledHandler interface {
	Handler
	CronExpression() string
}

// baseHandler carries what every handler needs: the owning event, its
// data map and the template renderer.
type baseHandler struct {
	source    string
	eventID   uuid.UUID
	data      model.JSONMap
	templates *template.Manager
}

func (h *baseHandler) Source() string { return h.source }

func (h *baseHandler) requireFields(fields ...string) error {
	for _, f := range fields {
		if _, ok := h.data[f]; !ok {
			return errors.MissingField(f)
		}
	}
	return nil
}

// draft renders the channel template and builds one pending draft.
func (h *baseHandler) draft(templateID, channel, recipient, subject string, variables map[string]interface{}) (*model.Notification, error) {
	if variables == nil {
		variables = h.data
	}
	content, err := h.templates.Render(templateID, variables)
	if err != nil {
		return nil, err
	}

	return &model.Notification{
		ID:          uuid.New(),
		EventID:     h.eventID,
		TemplateID:  templateID,
		Channel:     channel,
		Recipient:   recipient,
		Subject:     subject,
		Content:     content,
		ContentHash: template.ContentHash(content),
		Status:      model.NotificationStatusPending,
	}, nil
}

// scheduledHandler adds cron validation on top of baseHandler.
// Constructing one from an event without a cron field fails.
type scheduledHandler struct {
	baseHandler
	cron string
}

func newScheduledHandler(base baseHandler, data model.JSONMap) (scheduledHandler, error) {
	cron := data.String("cron")
	if cron == "" {
		return scheduledHandler{}, errors.MissingField("cron")
	}
	return scheduledHandler{baseHandler: base, cron: cron}, nil
}

func (h *scheduledHandler) CronExpression() string { return h.cron }
