package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Deepthi94961/estate-admin/internal/metrics"
	"github.com/Deepthi94961/estate-admin/internal/middleware"
)

func newMockRouter(t *testing.T, modify func(*RouterDeps)) http.Handler {
	t.Helper()
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	users := &mockUserService{}
	listings := &mockListingService{}
	deps := &RouterDeps{
		CORSAllowedOrigins:  "http://localhost:3000",
		RateLimiter:         rl,
		Health:              &mockHealthChecker{},
		AuthService:         &mockAuthService{},
		UserService:         users,
		UserStats:           users,
		ListingService:      listings,
		NotificationService: &mockNotificationService{},
		SettingsService:     &mockSettingsService{},
		NumberSettings:      &mockNumberSettings{},
	}
	if modify != nil {
		modify(deps)
	}
	return NewRouter(deps)
}

func TestNewRouter_RoutesAreRegistered(t *testing.T) {
	router := newMockRouter(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/signup", `{}`, http.StatusCreated},
		{http.MethodGet, "/users", "", http.StatusOK},
		{http.MethodPut, "/users/u1/suspend", `{"status":"active"}`, http.StatusOK},
		{http.MethodGet, "/listings", "", http.StatusOK},
		{http.MethodGet, "/listings?status=pending", "", http.StatusOK},
		{http.MethodPost, "/listings", `{"title":"t","price":1}`, http.StatusCreated},
		{http.MethodGet, "/listings/l1", "", http.StatusOK},
		{http.MethodPut, "/listings/l1/approve", "", http.StatusOK},
		{http.MethodDelete, "/listings/l1/reject", "", http.StatusOK},
		{http.MethodGet, "/notifications", "", http.StatusOK},
		{http.MethodDelete, "/notifications/n1", "", http.StatusOK},
		{http.MethodDelete, "/notifications", "", http.StatusOK},
		{http.MethodGet, "/api/settings", "", http.StatusOK},
		{http.MethodPut, "/api/settings", `[]`, http.StatusOK},
		{http.MethodGet, "/api/analytics", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
		{http.MethodPatch, "/listings", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestNewRouter_Signin_InvalidBody(t *testing.T) {
	router := newMockRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(`not json`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestNewRouter_SecurityAndCORSHeaders(t *testing.T) {
	router := newMockRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestNewRouter_AuthRateLimitAppliesOnlyToAuthRoutes(t *testing.T) {
	cfg := middleware.PerMinuteRateLimiterConfig(1000, 2)
	rl := middleware.NewRateLimiter(cfg)
	defer rl.Stop()

	router := newMockRouter(t, func(d *RouterDeps) { d.RateLimiter = rl })

	do := func(method, path, body string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.RemoteAddr = "203.0.113.5:4444"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := do(http.MethodPost, "/signup", `{}`); code != http.StatusCreated {
			t.Fatalf("signup %d: status = %d, want 201", i, code)
		}
	}
	if code := do(http.MethodPost, "/signup", `{}`); code != http.StatusTooManyRequests {
		t.Errorf("third signup: status = %d, want 429", code)
	}
	if code := do(http.MethodGet, "/users", ""); code != http.StatusOK {
		t.Errorf("GET /users after auth limit: status = %d, want 200", code)
	}
}

func TestNewRouter_HealthUnavailable(t *testing.T) {
	router := newMockRouter(t, func(d *RouterDeps) {
		d.Health = &mockHealthChecker{err: errors.New("connection refused")}
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var resp healthResponse
	decodeResponse(t, w, &resp)
	if resp.Status != "unavailable" {
		t.Errorf("status = %q, want unavailable", resp.Status)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	router := newMockRouter(t, func(d *RouterDeps) {
		d.Metrics = collector
		d.Gatherer = reg
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "estate_admin_http_status_total") {
		t.Errorf("metrics output does not contain the http counter:\n%s", w.Body.String())
	}
}

func TestNewRouter_NoGatherer_MetricsNotExposed(t *testing.T) {
	router := newMockRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
