package event

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/luisz08/notif-svc/internal/handler"
	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/scheduler"
	eventService "github.com/luisz08/notif-svc/internal/service/event"
	"github.com/luisz08/notif-svc/pkg/errors"
)

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierRe.MatchString(fl.Field().String())
		})
	}
}

// SchedulerAPI is the scheduler surface the ingestion handlers use.
type SchedulerAPI interface {
	AddScheduledEvent(event *model.Event) bool
	RemoveScheduledEvent(id uuid.UUID) bool
	Status() scheduler.Status
}

type RealtimeEventRequest struct {
	Source    string                 `json:"source" binding:"required,max=100,identifier"`
	EventType string                 `json:"event_type" binding:"required,max=100,identifier"`
	Data      map[string]interface{} `json:"data"`
}

type ScheduledEventRequest struct {
	Source  string                 `json:"source" binding:"required,max=100,identifier"`
	Cron    string                 `json:"cron" binding:"required"`
	Data    map[string]interface{} `json:"data"`
	Enabled *bool                  `json:"enabled"`
}

type Handler struct {
	service *eventService.Service
	sched   SchedulerAPI
}

func NewHandler(service *eventService.Service, sched SchedulerAPI) *Handler {
	return &Handler{service: service, sched: sched}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.POST("/realtime", h.CreateRealtimeEvent)
		events.POST("/scheduled", h.CreateScheduledEvent)
		events.GET("/scheduled", h.ListScheduledEvents)
		events.DELETE("/scheduled/:id", h.RemoveScheduledEvent)
	}
	r.GET("/scheduler/status", h.SchedulerStatus)
}

// CreateRealtimeEvent processes a real-time event synchronously: the
// response is written only after every notification reached a terminal
// status.
func (h *Handler) CreateRealtimeEvent(c *gin.Context) {
	var req RealtimeEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	data := model.JSONMap{"source": req.Source, "event_type": req.EventType}
	for k, v := range req.Data {
		data[k] = v
	}

	result, err := h.service.ProcessRealtime(c.Request.Context(), data)
	if err != nil {
		if errors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"event_id":   result.Event.ID.String(),
		"dispatched": result.Dispatched,
		"total":      result.Total,
	}))
}

// CreateScheduledEvent persists a scheduled event and registers it
// with the scheduler when enabled.
func (h *Handler) CreateScheduledEvent(c *gin.Context) {
	var req ScheduledEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if len(strings.Fields(req.Cron)) != 5 {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("cron expression must have exactly 5 fields: minute hour day month day_of_week"))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	data := model.JSONMap{"source": req.Source, "cron": req.Cron}
	for k, v := range req.Data {
		data[k] = v
	}

	evt, err := h.service.CreateScheduled(c.Request.Context(), data, enabled, h.sched)
	if err != nil {
		if errors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"event_id": evt.ID.String(),
	}))
}

func (h *Handler) ListScheduledEvents(c *gin.Context) {
	events, err := h.service.ListScheduled(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	out := make([]gin.H, 0, len(events))
	for _, e := range events {
		out = append(out, gin.H{
			"id":         e.ID.String(),
			"type":       e.Type,
			"data":       e.Data,
			"processed":  e.Processed,
			"created_at": e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"events": out}))
}

// RemoveScheduledEvent unregisters an event's job. The persisted event
// is kept; only future triggers stop.
func (h *Handler) RemoveScheduledEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid event ID"))
		return
	}

	if !h.sched.RemoveScheduledEvent(id) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("no scheduled job for event"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"event_id": id.String()}))
}

func (h *Handler) SchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.sched.Status()))
}
