package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(buf *bytes.Buffer, options ...LoggerOption) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	router := gin.New()
	router.Use(NewLogging(logger, options...))
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return router
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestNewLogging_levelByStatus(t *testing.T) {
	tests := []struct {
		path  string
		level string
	}{
		{path: "/ok", level: "INFO"},
		{path: "/missing", level: "WARN"},
		{path: "/broken", level: "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			buf := &bytes.Buffer{}
			router := newTestRouter(buf)

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			lines := logLines(t, buf)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.level, lines[0]["level"])
			assert.Equal(t, "GET "+tt.path, lines[0]["msg"])
			assert.Equal(t, tt.path, lines[0]["path"])
		})
	}
}

func TestNewLogging_ignorePath(t *testing.T) {
	buf := &bytes.Buffer{}
	router := newTestRouter(buf, WithIgnorePath([]string{"/ok"}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Empty(t, buf.String())
}

func TestNewLogging_defaultLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	router := newTestRouter(buf, WithDefaultLevel("debug"))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "DEBUG", lines[0]["level"])
}
