package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/retell-calcom-bridge/internal/observability/metrics"
	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.NewWebhookMetrics(reg)
	m.ObserveOutcome("check_availability", "slots_offered")

	cfg := &Config{
		Logger:      logging.New("error"),
		WebhookPath: "/hooks/voice",
		WebhookHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"echo":` + string(body) + `}`))
		}),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Now:            func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
	}

	return New(cfg)
}

func TestRouterRootBanner(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got := rr.Body.String(); got != "Retell Cal.com webhook is running!" {
		t.Fatalf("unexpected banner %q", got)
	}
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
	if resp["time"] != "2025-03-10T12:00:00Z" {
		t.Errorf("unexpected time %q", resp["time"])
	}
}

func TestRouterWebhookPath(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/hooks/voice", strings.NewReader(`{"event":"call_ended"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"event":"call_ended"`) {
		t.Fatalf("webhook handler not reached: %s", rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hooks/voice", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET webhook, got %d", rr.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "scheduling_webhook_outcomes_total") {
		t.Fatalf("expected scheduling metrics in exposition")
	}
}

func TestRouterDefaultsWebhookPath(t *testing.T) {
	called := false
	router := New(&Config{WebhookHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/retell", strings.NewReader(`{}`)))
	if !called {
		t.Fatalf("expected default /retell route, got status %d", rr.Code)
	}
}
