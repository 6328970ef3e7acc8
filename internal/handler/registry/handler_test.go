package registry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisz08/notif-svc/internal/channel"
	"github.com/luisz08/notif-svc/internal/config"
	"github.com/luisz08/notif-svc/internal/event"
	"github.com/luisz08/notif-svc/internal/template"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	for _, name := range []string{"user_welcome_email.tmpl", "daily_statistics_report.tmpl"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{{.x}}"), 0o644))
	}
	templates := template.NewManager(dir, time.Minute)

	logger := zerolog.New(io.Discard)
	channels := channel.NewManager(
		channel.NewEmailChannel(config.EmailChannelConfig{OutputDir: dir}),
		channel.NewSlackChannel(config.SlackChannelConfig{DefaultChannel: "#general"}, &logger),
	)

	r := gin.New()
	NewHandler(event.NewRegistry(templates), channels, templates).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListEventSources(t *testing.T) {
	r := setupRouter(t)

	w := get(t, r, "/api/v1/registry/event-sources")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Sources []string `json:"sources"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, []string{"daily_stat", "user_signup"}, resp.Data.Sources)
}

func TestListChannels(t *testing.T) {
	r := setupRouter(t)

	w := get(t, r, "/api/v1/registry/channels")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Channels map[string]string `json:"channels"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Channels, 2)
	assert.Contains(t, resp.Data.Channels, "email")
	assert.Contains(t, resp.Data.Channels, "slack")
}

func TestListTemplates(t *testing.T) {
	r := setupRouter(t)

	w := get(t, r, "/api/v1/registry/templates")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Templates []string `json:"templates"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"daily_statistics_report.tmpl", "user_welcome_email.tmpl"}, resp.Data.Templates)
}
