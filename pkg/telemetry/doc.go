// Package telemetry wires logging, metrics and tracing together for the
// rdl commands.
//
//   - logging: structured logging with secret redaction
//   - metrics: Prometheus collectors
//   - tracing: OpenTelemetry spans over OTLP
//   - health: liveness and readiness endpoints
//
// Setup builds all three from the telemetry section of the configuration:
//
//	tel, err := telemetry.Setup(cfg.Telemetry, os.Stderr, version)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
package telemetry
