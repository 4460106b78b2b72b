package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/attarhouse/attarhouse-backend/pkg/config"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func newTestRouter(t *testing.T, ready Readiness) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{
		ServiceName: "router-test",
		Output:      io.Discard,
	})
	return NewRouter(cfg, logg, Services{}, ready)
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t, Readiness{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", w.Code)
	}
	if got := w.Header().Get("X-AttarHouse-Env"); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestRouterHealthReadyReportsFailedDependency(t *testing.T) {
	router := newTestRouter(t, Readiness{
		DB:     stubPinger{},
		Redis:  stubPinger{err: errors.New("connection refused")},
		PubSub: stubPinger{},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 but got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "redis") {
		t.Fatalf("expected failing dependency in body, got %s", w.Body.String())
	}
}

func TestRouterHealthReadyAllUp(t *testing.T) {
	router := newTestRouter(t, Readiness{
		DB:     stubPinger{},
		Redis:  stubPinger{},
		PubSub: stubPinger{},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", w.Code)
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	router := newTestRouter(t, Readiness{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", w.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t, Readiness{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/cart", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 but got %d", w.Code)
	}
}
