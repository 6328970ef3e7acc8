package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisz08/notif-svc/internal/handler"
	"github.com/luisz08/notif-svc/internal/repository"
)

type Handler struct {
	repo repository.NotificationRepository
}

func NewHandler(repo repository.NotificationRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/notifications/stats", h.GetStats)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.repo.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
