// Package metrics exposes Prometheus metrics for the rdl checker.
//
// A Collector owns a registry and three metric groups:
//
//   - CheckMetrics: checks by schema and outcome, parse and validation
//     durations, document sizes, and failures by error kind
//   - HistoryMetrics: history writes and retention runs
//   - SourceMetrics: watch and Git events, Git sync timing, the number
//     of loaded schemas, and HTTP API requests
//
// Schema names are used as label values and are capped by a
// CardinalityLimiter; names past the cap are reported as "other".
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordCheck("stock", metrics.OutcomeValid)
//	http.Handle("/metrics", collector.Handler())
package metrics
