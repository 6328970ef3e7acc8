package registry

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/luisz08/notif-svc/internal/channel"
	"github.com/luisz08/notif-svc/internal/event"
	"github.com/luisz08/notif-svc/internal/handler"
	"github.com/luisz08/notif-svc/internal/template"
)

// Handler exposes the discovery surface: which event sources, delivery
// channels and templates this deployment knows about.
type Handler struct {
	registry  *event.Registry
	channels  *channel.Manager
	templates *template.Manager
}

func NewHandler(registry *event.Registry, channels *channel.Manager, templates *template.Manager) *Handler {
	return &Handler{registry: registry, channels: channels, templates: templates}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	registry := r.Group("/registry")
	{
		registry.GET("/event-sources", h.ListEventSources)
		registry.GET("/channels", h.ListChannels)
		registry.GET("/templates", h.ListTemplates)
	}
}

func (h *Handler) ListEventSources(c *gin.Context) {
	sources := h.registry.Sources()
	sort.Strings(sources)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"sources": sources}))
}

func (h *Handler) ListChannels(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"channels": h.channels.Infos()}))
}

func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.templates.TemplateIDs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	sort.Strings(templates)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"templates": templates}))
}
