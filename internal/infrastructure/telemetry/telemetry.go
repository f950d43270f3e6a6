package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Telemetry holds all OpenTelemetry components
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	Logger         *slog.Logger
}

// NewTelemetry initializes all OpenTelemetry components
func NewTelemetry(cfg *config.OTLPConfig, logLevel string) (*Telemetry, error) {
	logger := initLogger(cfg, logLevel)

	logger.Info("Initializing OpenTelemetry",
		slog.String("endpoint", cfg.Endpoint),
		slog.String("service_name", cfg.ServiceName),
	)

	tp, err := initTracerProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	logger.Info("Tracer provider initialized successfully")

	mp, err := initMeterProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}

	otel.SetMeterProvider(mp)
	logger.Info("Meter provider initialized successfully (OTLP + Prometheus exporters)")

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Logger:         logger,
	}, nil
}

// NewNoOpTelemetry creates a telemetry instance that exports nothing over OTLP.
// Prometheus metrics are still served.
func NewNoOpTelemetry(cfg *config.OTLPConfig, logLevel string) (*Telemetry, error) {
	logger := initLogger(cfg, logLevel)

	tp := sdktrace.NewTracerProvider()

	mp, err := initPrometheusMeterProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	logger.Info("Telemetry initialized in no-op mode (export disabled)")

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Logger:         logger,
	}, nil
}

// Shutdown gracefully shuts down all telemetry components
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.Logger.Info("Shutting down OpenTelemetry")

	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		t.Logger.Error("Failed to shutdown tracer provider", slog.String("error", err.Error()))
		return err
	}

	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		t.Logger.Error("Failed to shutdown meter provider", slog.String("error", err.Error()))
		return err
	}

	t.Logger.Info("OpenTelemetry shutdown successfully")
	return nil
}
