package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/retell-calcom-bridge/internal/api/router"
	"github.com/wolfman30/retell-calcom-bridge/internal/calcom"
	appconfig "github.com/wolfman30/retell-calcom-bridge/internal/config"
	"github.com/wolfman30/retell-calcom-bridge/internal/observability/metrics"
	"github.com/wolfman30/retell-calcom-bridge/internal/scheduling"
	"github.com/wolfman30/retell-calcom-bridge/internal/webhook"
	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

// App is the fully wired HTTP surface shared by the server and Lambda binaries.
type App struct {
	Handler http.Handler
	redis   *redis.Client
}

// Close releases connections opened during BuildApp.
func (a *App) Close() error {
	if a == nil || a.redis == nil {
		return nil
	}
	return a.redis.Close()
}

// BuildApp wires directory, Cal.com client, scheduling service, webhook
// handler and router. reg may be nil to use the default Prometheus registry.
func BuildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg prometheus.Registerer) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer, ok := reg.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}

	var redisClient *redis.Client
	if cfg.TenantSource == appconfig.TenantSourceRedis {
		redisClient = BuildRedisClient(ctx, cfg, logger, true)
	}
	dir, err := BuildDirectory(cfg, redisClient, logger)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}

	sink, err := BuildCallEventSink(ctx, cfg, logger)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}

	m := metrics.NewWebhookMetrics(reg)
	calendar := calcom.NewClient(cfg.CalAPIBaseURL, cfg.CalRequestTimeout, logger).WithObserver(m)
	scheduler := scheduling.NewService(calendar, cfg.CalRequestTimeout, logger).WithObserver(m)
	handler := webhook.NewHandler(webhook.HandlerConfig{
		Directory: dir,
		Scheduler: scheduler,
		Sink:      sink,
		Metrics:   m,
		Logger:    logger,
	})

	return &App{
		Handler: router.New(&router.Config{
			Logger:         logger,
			WebhookPath:    cfg.WebhookPath,
			WebhookHandler: handler,
			MetricsHandler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		}),
		redis: redisClient,
	}, nil
}
