package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"wabridge/pkg/logger"
)

type routeRecorder struct {
	status int
	route  string
}

func (r *routeRecorder) ObserveHTTP(_, route string, status int, _ time.Duration) {
	r.route, r.status = route, status
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var entry map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("invalid json log line %q: %v", sc.Text(), err)
		}
		lines = append(lines, entry)
	}
	return lines
}

func TestLoggingMiddlewareSharesRequestLogger(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	rec := &routeRecorder{}

	h := middleware.RequestID(NewLoggingMiddleware(logger.NewZerologLogger(&zl), rec)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Info().Msg("inside handler")
			w.WriteHeader(http.StatusBadGateway)
		}),
	))

	req := httptest.NewRequest(http.MethodPost, "/messages/text", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("log lines = %d, want 2: %s", len(lines), buf.String())
	}

	inside, done := lines[0], lines[1]
	if inside["message"] != "inside handler" || inside["request_id"] != "req-42" {
		t.Fatalf("handler line = %v", inside)
	}
	if done["level"] != "error" || done["request_id"] != "req-42" || done["status"] != float64(http.StatusBadGateway) {
		t.Fatalf("request line = %v", done)
	}
	if done["component"] != "http" {
		t.Fatalf("component = %v, want http", done["component"])
	}
	if rec.status != http.StatusBadGateway || rec.route != "unmatched" {
		t.Fatalf("recorder = %+v", rec)
	}
}

func TestLoggingMiddlewareLevels(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "debug"},
		{http.StatusNotFound, "warn"},
		{http.StatusInternalServerError, "error"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		zl := zerolog.New(&buf)
		h := NewLoggingMiddleware(logger.NewZerologLogger(&zl), nil)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}),
		)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status", nil))

		lines := logLines(t, &buf)
		if len(lines) != 1 || lines[0]["level"] != tt.level {
			t.Fatalf("status %d: lines = %v, want level %s", tt.status, lines, tt.level)
		}
	}
}
