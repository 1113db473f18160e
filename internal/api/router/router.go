package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/retell-calcom-bridge/internal/http/middleware"
	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

const bannerText = "Retell Cal.com webhook is running!"

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	WebhookPath    string
	WebhookHandler http.Handler
	MetricsHandler http.Handler
	Now            func() time.Time
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	webhookPath := cfg.WebhookPath
	if webhookPath == "" {
		webhookPath = "/retell"
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(bannerText))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"time":   now().UTC().Format(time.RFC3339),
		})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.WebhookHandler != nil {
		r.Method(http.MethodPost, webhookPath, cfg.WebhookHandler)
	}

	return r
}
