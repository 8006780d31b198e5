package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/s4trading/storefront-backend/pkg/config"
)

func newTestRouter(t *testing.T, authDisabled bool) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "router-test-secret"
	cfg.Auth.Disabled = authDisabled
	cfg.Auth.DemoUserID = "demo-user"
	cfg.Auth.DemoEmail = "demo@s4trading.com"

	return NewRouter(cfg, nil, nil, nil, nil, nil, nil, nil, nil)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHealthReadyWithoutBackends(t *testing.T) {
	router := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireCredentials(t *testing.T) {
	router := newTestRouter(t, false)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/products"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/marketing/metrics"},
	}

	for _, route := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
