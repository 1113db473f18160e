package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Tenant directory sources.
const (
	TenantSourceFile  = "file"
	TenantSourceRedis = "redis"
	TenantSourceEnv   = "env"
)

// Config holds application configuration
type Config struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
	WebhookPath     string

	// Cal.com
	CalAPIBaseURL     string
	CalRequestTimeout time.Duration
	DefaultTimezone   string

	// Tenant directory
	TenantSource        string
	TenantDirectoryPath string
	RedisAddr           string
	RedisPassword       string
	RedisTLS            bool

	// Single-tenant settings kept for deployments that predate the directory.
	LegacyTenantID       string
	CalAPIKey            string
	CalEventCleaning     string
	CalEventExam         string
	CalEventNewPatient   string
	CalEventEmergency    string
	LegacyTenantTimezone string

	// Call-ended export
	CallEventsQueueURL  string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables. A dotenv file is
// applied first when present; real environment variables win.
func Load() *Config {
	loadDotEnv(getEnv("DOTENV_PATH", ".env"))

	return &Config{
		Port:            getEnv("PORT", "3000"),
		Env:             getEnv("ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		WebhookPath:     normalizePath(getEnv("WEBHOOK_PATH", "/retell")),

		CalAPIBaseURL:     getEnv("CAL_API_BASE_URL", "https://api.cal.com/v1"),
		CalRequestTimeout: getEnvAsDuration("CAL_REQUEST_TIMEOUT", 8*time.Second),
		DefaultTimezone:   getEnv("DEFAULT_TIMEZONE", "America/New_York"),

		TenantSource:        strings.ToLower(strings.TrimSpace(getEnv("TENANT_SOURCE", TenantSourceEnv))),
		TenantDirectoryPath: getEnv("TENANT_DIRECTORY_PATH", "tenants.yaml"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisTLS:            getEnvAsBool("REDIS_TLS", false),

		LegacyTenantID:       getEnv("LEGACY_TENANT_ID", "default"),
		CalAPIKey:            getEnv("CAL_API_KEY", ""),
		CalEventCleaning:     getEnv("CAL_EVENT_CLEANING", ""),
		CalEventExam:         getEnv("CAL_EVENT_EXAM", ""),
		CalEventNewPatient:   getEnv("CAL_EVENT_NEW_PATIENT", ""),
		CalEventEmergency:    getEnv("CAL_EVENT_EMERGENCY", ""),
		LegacyTenantTimezone: getEnv("TIMEZONE", ""),

		CallEventsQueueURL:  getEnv("CALL_EVENTS_QUEUE_URL", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// LegacyEventTypes returns the CAL_EVENT_* settings keyed by appointment label.
func (c *Config) LegacyEventTypes() map[string]string {
	return map[string]string{
		"cleaning":    c.CalEventCleaning,
		"exam":        c.CalEventExam,
		"new-patient": c.CalEventNewPatient,
		"emergency":   c.CalEventEmergency,
	}
}

func loadDotEnv(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	// Missing or malformed files are ignored; the process environment still applies.
	_ = godotenv.Load(path)
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/retell"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
