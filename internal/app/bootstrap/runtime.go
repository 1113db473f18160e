package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/retell-calcom-bridge/internal/config"
	"github.com/wolfman30/retell-calcom-bridge/internal/directory"
	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildDirectory selects the tenant directory named by TENANT_SOURCE.
func BuildDirectory(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (directory.Directory, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.TenantSource {
	case appconfig.TenantSourceFile:
		dir, err := directory.LoadFile(cfg.TenantDirectoryPath, cfg.DefaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load tenant directory: %w", err)
		}
		logger.Info("tenant directory loaded", "source", cfg.TenantSource, "path", cfg.TenantDirectoryPath, "tenants", dir.Len())
		return dir, nil
	case appconfig.TenantSourceRedis:
		if redisClient == nil {
			return nil, errors.New("bootstrap: TENANT_SOURCE=redis requires a reachable REDIS_ADDR")
		}
		logger.Info("tenant directory backed by redis", "addr", cfg.RedisAddr)
		return directory.NewRedis(redisClient, cfg.DefaultTimezone), nil
	case appconfig.TenantSourceEnv, "":
		if strings.TrimSpace(cfg.CalAPIKey) == "" {
			logger.Warn("CAL_API_KEY not set; every call will receive the technical-issue fallback")
			return directory.NewStatic(nil, cfg.DefaultTimezone)
		}
		rec := directory.LegacyRecord(cfg.LegacyTenantID, cfg.CalAPIKey, cfg.LegacyTenantTimezone, cfg.LegacyEventTypes())
		dir, err := directory.NewStatic([]directory.Record{rec}, cfg.DefaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: legacy tenant: %w", err)
		}
		logger.Info("tenant directory built from environment", "tenant_id", cfg.LegacyTenantID)
		return dir, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown TENANT_SOURCE %q", cfg.TenantSource)
	}
}
