package metrics

import (
	"time"

	"mercator-hq/rdl/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Check outcomes used as the "outcome" label.
const (
	OutcomeValid           = "valid"
	OutcomeParseError      = "parse_error"
	OutcomeValidationError = "validation_error"
)

// CheckMetrics tracks document parsing and validation.
//
// Metrics:
//   - rdl_checker_checks_total: checks by schema and outcome
//   - rdl_checker_parse_duration_seconds: parse duration
//   - rdl_checker_validate_duration_seconds: validation duration by schema
//   - rdl_checker_document_size_bytes: size of checked documents
//   - rdl_checker_errors_total: failures by error kind
type CheckMetrics struct {
	checksTotal      *prometheus.CounterVec
	parseDuration    prometheus.Histogram
	validateDuration *prometheus.HistogramVec
	documentSize     prometheus.Histogram
	errorsTotal      *prometheus.CounterVec
}

// NewCheckMetrics creates and registers check metrics with the provided registry.
func NewCheckMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CheckMetrics {
	cm := &CheckMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "checks_total",
				Help:      "Total number of documents checked",
			},
			[]string{"schema", "outcome"},
		),

		parseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parse_duration_seconds",
				Help:      "Duration of document parsing in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		validateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validate_duration_seconds",
				Help:      "Duration of schema validation in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"schema"},
		),

		documentSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_size_bytes",
				Help:      "Size of checked documents in bytes",
				Buckets:   cfg.SizeBuckets,
			},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "errors_total",
				Help:      "Total number of check failures by error kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		cm.checksTotal,
		cm.parseDuration,
		cm.validateDuration,
		cm.documentSize,
		cm.errorsTotal,
	)

	return cm
}

// RecordCheck records the outcome of one check.
func (cm *CheckMetrics) RecordCheck(schema, outcome string) {
	cm.checksTotal.WithLabelValues(schema, outcome).Inc()
}

// RecordParse records parse duration and document size.
func (cm *CheckMetrics) RecordParse(duration time.Duration, sizeBytes int) {
	cm.parseDuration.Observe(duration.Seconds())
	cm.documentSize.Observe(float64(sizeBytes))
}

// RecordValidate records validation duration.
func (cm *CheckMetrics) RecordValidate(schema string, duration time.Duration) {
	cm.validateDuration.WithLabelValues(schema).Observe(duration.Seconds())
}

// RecordError records a failure of the given kind.
func (cm *CheckMetrics) RecordError(kind string) {
	cm.errorsTotal.WithLabelValues(kind).Inc()
}
