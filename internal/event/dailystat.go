package event

import (
	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/template"
)

const SourceDailyStat = "daily_stat"

const dailyStatSlackTemplate = "daily_statistics_report.tmpl"

// DailyStatHandler produces the recurring daily statistics report as a
// slack notification. It is a scheduled handler: the owning event must
// carry a cron expression.
type DailyStatHandler struct {
	scheduledHandler
}

func NewDailyStatHandler(event *model.Event, templates *template.Manager) (Handler, error) {
	base := baseHandler{
		source:    SourceDailyStat,
		eventID:   event.ID,
		data:      event.Data,
		templates: templates,
	}

	sched, err := newScheduledHandler(base, event.Data)
	if err != nil {
		return nil, err
	}

	h := &DailyStatHandler{scheduledHandler: sched}
	if err := h.requireFields("query", "recipient", "slack_channel"); err != nil {
		return nil, err
	}
	return h, nil
}

// queryData gathers the report figures. The numbers are static until a
// real stats backend is wired behind the configured query.
func (h *DailyStatHandler) queryData() map[string]interface{} {
	return map[string]interface{}{
		"date":               "2023-10-01",
		"total_users":        100,
		"new_signups":        10,
		"active_users":       80,
		"notifications_sent": 50,
		"avg_response_time":  "2s",
		"success_rate":       "95%",
		"cpu_usage":          "30%",
		"memory_usage":       "40%",
		"disk_usage":         "20%",
		"alerts":             []string{"1", "2"},
		"report_time":        "2023-10-01T12:00:00Z",
	}
}

func (h *DailyStatHandler) CreateNotifications() ([]*model.Notification, error) {
	slack, err := h.draft(dailyStatSlackTemplate, "slack", h.data.String("slack_channel"), "Daily Statistics Report", h.queryData())
	if err != nil {
		return nil, err
	}
	return []*model.Notification{slack}, nil
}
