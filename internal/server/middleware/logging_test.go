package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := WithLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}), logger)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/request/url", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	require.Contains(t, out, "method=PUT")
	require.Contains(t, out, "path=/api/request/url")
	require.Contains(t, out, "status=418")
	require.Contains(t, out, "bytes=15")
}

func TestWithLoggingSkipsWebsocketUpgrades(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	called := false
	handler := WithLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, wrapped := w.(*loggingResponseWriter)
		require.False(t, wrapped)
		called = true
	}), logger)

	// The upgrade token is case-insensitive
	for _, upgrade := range []string{"websocket", "WebSocket", "WEBSOCKET"} {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/ws/request", nil)
		req.Header.Set("Upgrade", upgrade)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.True(t, called, upgrade)
	}
	require.Empty(t, buf.String())
}
