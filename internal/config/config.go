package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/smallbiznis/lienclock/internal/observability/tracing"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
)

// Module provides the process configuration loaded from the environment.
var Module = fx.Module("config",
	fx.Provide(Load),
)

// Bootstrap controls startup-time data seeding.
type Bootstrap struct {
	EnsureAdminUser bool
	AdminEmail      string
	AdminPassword   string
	SeedDemoData    bool
}

// Config holds every runtime setting for the service.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	HTTPAddr    string
	DatabaseDSN string

	SnowflakeNode int64

	HoldPeriodDays       int
	BountyAmountCents    int64
	RecurringAmountCents int64

	WorkerPollInterval time.Duration

	TracingEnabled          bool
	TracingExporterEndpoint string
	TracingExporterProtocol string
	TracingSamplingRatio    float64

	Bootstrap Bootstrap
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		ServiceName: envString("SERVICE_NAME", "lienclock"),
		Environment: envString("ENVIRONMENT", "local"),
		Version:     envString("SERVICE_VERSION", "dev"),

		HTTPAddr:    envString("HTTP_ADDR", ":8080"),
		DatabaseDSN: envString("DATABASE_DSN", ""),

		SnowflakeNode: envInt64("SNOWFLAKE_NODE", 1),

		HoldPeriodDays:       int(envInt64("PAYOUT_HOLD_PERIOD_DAYS", int64(payoutdomain.DefaultHoldPeriodDays))),
		BountyAmountCents:    envInt64("PAYOUT_BOUNTY_AMOUNT_CENTS", payoutdomain.DefaultBountyAmountCents),
		RecurringAmountCents: envInt64("PAYOUT_RECURRING_AMOUNT_CENTS", payoutdomain.DefaultRecurringAmountCents),

		WorkerPollInterval: envDuration("PAYOUT_WORKER_POLL_INTERVAL", 30*time.Second),

		TracingEnabled:          envBool("OTEL_TRACING_ENABLED", false),
		TracingExporterEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TracingExporterProtocol: envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		TracingSamplingRatio:    envFloat64("OTEL_TRACES_SAMPLER_RATIO", 0.1),

		Bootstrap: Bootstrap{
			EnsureAdminUser: envBool("BOOTSTRAP_ENSURE_ADMIN", true),
			AdminEmail:      envString("BOOTSTRAP_ADMIN_EMAIL", "admin@lienclock.local"),
			AdminPassword:   envString("BOOTSTRAP_ADMIN_PASSWORD", ""),
			SeedDemoData:    envBool("BOOTSTRAP_SEED_DEMO_DATA", false),
		},
	}

	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required")
	}
	if cfg.HoldPeriodDays <= 0 {
		return Config{}, fmt.Errorf("PAYOUT_HOLD_PERIOD_DAYS must be positive, got %d", cfg.HoldPeriodDays)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in a production environment.
func (c Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "production", "prod":
		return true
	}
	return false
}

// PayoutPolicy returns the configured commission policy.
func (c Config) PayoutPolicy() payoutdomain.PayoutPolicy {
	return payoutdomain.PayoutPolicy{
		HoldPeriodDays:       c.HoldPeriodDays,
		BountyAmountCents:    c.BountyAmountCents,
		RecurringAmountCents: c.RecurringAmountCents,
	}
}

// TracingConfig returns the tracer provider configuration.
func (c Config) TracingConfig() tracing.Config {
	return tracing.Config{
		Enabled:          c.TracingEnabled,
		ServiceName:      c.ServiceName,
		ServiceVersion:   c.Version,
		Environment:      c.Environment,
		ExporterEndpoint: c.TracingExporterEndpoint,
		ExporterProtocol: c.TracingExporterProtocol,
		SamplingRatio:    c.TracingSamplingRatio,
	}
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat64(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
