package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_ReadinessLogsPingErrors(t *testing.T) {
	var buf bytes.Buffer
	h := NewHealthHandler(map[string]Pinger{
		"credential_store": pingFunc(func(context.Context) error { return nil }),
		"reset_store": pingFunc(func(context.Context) error {
			return errors.New("dial tcp 10.0.0.7:6379: connect: connection refused")
		}),
	}, zerolog.New(&buf))

	c, rec := newJSONContext(http.MethodGet, "/health/ready", "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.7") {
		t.Fatalf("ping error leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "10.0.0.7") || !strings.Contains(buf.String(), `"dependency":"reset_store"`) {
		t.Fatalf("ping error not logged: %s", buf.String())
	}
}

func TestHealthHandler_ReadinessAllHealthy(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"credential_store": pingFunc(func(context.Context) error { return nil }),
	}, zerolog.Nop())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"credential_store":{"status":"ok"}`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
