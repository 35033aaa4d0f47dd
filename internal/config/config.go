package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	ListenAddr  string

	// Remote JurisConnect API.
	APIBaseURL string
	APITimeout time.Duration

	// Console session cookie.
	CookieSecret string
	CookieTTL    time.Duration
	CookieSecure bool

	// Durable session-record tier.
	DatabaseDriver string
	DatabaseDSN    string

	// Volatile tier. Empty RedisAddr selects the in-memory store.
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	// Address lookup.
	CEPBaseURL string

	OTELMetricsEnabled        bool
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELServiceName           string
	OTELEnvironment           string
	OTELMetricsExportInterval time.Duration
	EnableOTelHTTP            bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:              getEnv("CONSOLE_ENV", "dev"),
		ListenAddr:               getEnv("CONSOLE_LISTEN_ADDR", ":8080"),
		APIBaseURL:               getEnv("CONSOLE_API_BASE_URL", "http://localhost:3000"),
		CookieSecret:             getEnv("CONSOLE_COOKIE_SECRET", ""),
		CookieSecure:             getBool("CONSOLE_COOKIE_SECURE", false),
		DatabaseDriver:           getEnv("CONSOLE_DB_DRIVER", "sqlite"),
		DatabaseDSN:              getEnv("CONSOLE_DB_DSN", "console.db"),
		RedisAddr:                getEnv("CONSOLE_REDIS_ADDR", ""),
		RedisPassword:            getEnv("CONSOLE_REDIS_PASSWORD", ""),
		CEPBaseURL:               getEnv("CONSOLE_CEP_BASE_URL", "https://viacep.com.br"),
		OTELMetricsEnabled:       getBool("OTEL_METRICS_ENABLED", false),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "jurisconnect-console"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", "dev"),
		EnableOTelHTTP:           getBool("CONSOLE_OTEL_HTTP", false),
	}

	var err error
	if cfg.APITimeout, err = getDuration("CONSOLE_API_TIMEOUT", 15*time.Second); err != nil {
		recordConfigLoadEvent(context.Background(), cfg.Environment, "error", classifyConfigLoadError(err))
		return nil, err
	}
	if cfg.CookieTTL, err = getDuration("CONSOLE_COOKIE_TTL", 30*24*time.Hour); err != nil {
		recordConfigLoadEvent(context.Background(), cfg.Environment, "error", classifyConfigLoadError(err))
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("CONSOLE_SESSION_TTL", 12*time.Hour); err != nil {
		recordConfigLoadEvent(context.Background(), cfg.Environment, "error", classifyConfigLoadError(err))
		return nil, err
	}
	if cfg.OTELMetricsExportInterval, err = getDuration("OTEL_METRICS_EXPORT_INTERVAL", 30*time.Second); err != nil {
		recordConfigLoadEvent(context.Background(), cfg.Environment, "error", classifyConfigLoadError(err))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		recordConfigLoadEvent(context.Background(), cfg.Environment, "error", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigLoadEvent(context.Background(), cfg.Environment, "ok", "none")
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("validate config: CONSOLE_API_BASE_URL is required")
	}
	if len(c.CookieSecret) < 32 {
		return fmt.Errorf("validate config: CONSOLE_COOKIE_SECRET must be at least 32 bytes")
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("validate config: CONSOLE_DB_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return fmt.Errorf("validate config: CONSOLE_DB_DSN is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("validate config: CONSOLE_API_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("validate config: CONSOLE_SESSION_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}
