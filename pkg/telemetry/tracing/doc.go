// Package tracing provides OpenTelemetry tracing for the rdl checker.
//
// Spans are exported over OTLP/gRPC. Each check produces an "rdl.check"
// span with "rdl.parse" and "rdl.validate" children carrying the
// document, schema and error location as attributes.
//
// # Sampling Strategies
//
//   - always: sample all traces
//   - never: sample no traces
//   - ratio: sample a fraction of traces by trace ID
//
// All strategies respect the parent span's decision.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(version))
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "rdl.check")
//	defer span.End()
//
// The HTTP server wraps its routes with Tracer.HTTPMiddleware, which
// continues W3C Trace Context from incoming requests.
package tracing
