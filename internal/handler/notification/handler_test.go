package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository/memory"
)

func TestGetStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	repo := memory.NewNotificationRepository()

	statuses := []model.NotificationStatus{
		model.NotificationStatusSent,
		model.NotificationStatusSent,
		model.NotificationStatusFailed,
		model.NotificationStatusDuplicate,
	}
	for i, status := range statuses {
		n, err := repo.CreateFromDraft(ctx, &model.Notification{
			Channel:     "email",
			Recipient:   "user@example.com",
			Content:     "hello",
			ContentHash: "hash",
		})
		require.NoError(t, err)
		var sentAt *time.Time
		if status == model.NotificationStatusSent {
			now := time.Now().UTC()
			sentAt = &now
		}
		_, err = repo.UpdateStatus(ctx, n.ID, status, sentAt)
		require.NoError(t, err, "notification %d", i)
	}
	_, err := repo.CreateFromDraft(ctx, &model.Notification{
		Channel:     "slack",
		Recipient:   "#general",
		Content:     "still pending",
		ContentHash: "hash2",
	})
	require.NoError(t, err)

	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                  `json:"status"`
		Data   model.NotificationStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 5, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Sent)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, 1, resp.Data.Duplicates)
	assert.Equal(t, 1, resp.Data.Pending)
}
