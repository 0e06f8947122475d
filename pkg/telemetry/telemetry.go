package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/telemetry/logging"
	"mercator-hq/rdl/pkg/telemetry/metrics"
	"mercator-hq/rdl/pkg/telemetry/tracing"
)

// Telemetry bundles the observability components shared by a command.
type Telemetry struct {
	Logger  *logging.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
}

// Setup creates the logger, metrics collector and tracer. Logs go to w.
func Setup(cfg config.TelemetryConfig, w io.Writer, version string) (*Telemetry, error) {
	logger, err := logging.New(logging.FromConfig(cfg.Logging, w))
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	tracer, err := tracing.New(&cfg.Tracing, tracing.WithVersion(version))
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	return &Telemetry{
		Logger:  logger,
		Metrics: metrics.NewCollector(&cfg.Metrics, nil),
		Tracer:  tracer,
	}, nil
}

// Nop returns telemetry that records nothing.
func Nop() *Telemetry {
	return &Telemetry{
		Logger: logging.Nop(),
		Tracer: tracing.Nop(),
	}
}

// Shutdown flushes the tracer and the logger.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.Tracer.Shutdown(ctx), t.Logger.Shutdown())
}
