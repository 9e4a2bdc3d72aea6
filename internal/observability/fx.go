// Package observability wires logging, tracing and metrics into the fx graph.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/lienclock/internal/config"
	"github.com/smallbiznis/lienclock/internal/observability/logger"
	"github.com/smallbiznis/lienclock/internal/observability/metrics"
	"github.com/smallbiznis/lienclock/internal/observability/tracing"
)

var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(NewMetricsConfig),
	fx.Provide(NewMeterProvider),
	fx.Provide(metrics.NewHTTPMetrics),
	fx.Provide(NewTracerProvider),
	fx.Invoke(func(provider *sdktrace.TracerProvider) {}),
)

// NewMetricsConfig derives the metrics configuration from the app config.
func NewMetricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	}
}

// NewMeterProvider exposes OTel instruments through the prometheus registry.
func NewMeterProvider(lc fx.Lifecycle, log *zap.Logger) (metric.MeterProvider, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down meter provider")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// NewTracerProvider configures the OTLP tracer from the app config.
func NewTracerProvider(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*sdktrace.TracerProvider, error) {
	return tracing.NewProvider(lc, cfg.TracingConfig(), log)
}
