package metrics

import (
	"time"

	"mercator-hq/rdl/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SourceMetrics tracks document sources and the HTTP API.
//
// Metrics:
//   - rdl_source_events_total: change events by source ("watch", "git")
//   - rdl_source_git_syncs_total: clone/pull attempts by status
//   - rdl_source_git_sync_duration_seconds: duration of clone/pull
//   - rdl_source_schemas_loaded: number of schemas in the registry
//   - rdl_http_requests_total: API requests by route and status code
type SourceMetrics struct {
	eventsTotal     *prometheus.CounterVec
	gitSyncsTotal   *prometheus.CounterVec
	gitSyncDuration prometheus.Histogram
	schemasLoaded   prometheus.Gauge
	httpRequests    *prometheus.CounterVec
}

// NewSourceMetrics creates and registers source metrics with the provided registry.
func NewSourceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SourceMetrics {
	sm := &SourceMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "source",
				Name:      "events_total",
				Help:      "Total number of document change events",
			},
			[]string{"source"},
		),
		gitSyncsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "source",
				Name:      "git_syncs_total",
				Help:      "Total number of Git clone and pull attempts",
			},
			[]string{"status"},
		),
		gitSyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "source",
			Name:      "git_sync_duration_seconds",
			Help:      "Duration of Git clone and pull operations in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		schemasLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "source",
			Name:      "schemas_loaded",
			Help:      "Number of schemas currently registered",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"route", "code"},
		),
	}

	registry.MustRegister(sm.eventsTotal, sm.gitSyncsTotal, sm.gitSyncDuration, sm.schemasLoaded, sm.httpRequests)
	return sm
}

// RecordEvent records a change event from a source.
func (sm *SourceMetrics) RecordEvent(source string) {
	sm.eventsTotal.WithLabelValues(source).Inc()
}

// RecordGitSync records a clone or pull.
func (sm *SourceMetrics) RecordGitSync(err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	sm.gitSyncsTotal.WithLabelValues(status).Inc()
	sm.gitSyncDuration.Observe(duration.Seconds())
}

// SetSchemasLoaded sets the registry size.
func (sm *SourceMetrics) SetSchemasLoaded(n int) {
	sm.schemasLoaded.Set(float64(n))
}

// RecordHTTPRequest records an API request.
func (sm *SourceMetrics) RecordHTTPRequest(route, code string) {
	sm.httpRequests.WithLabelValues(route, code).Inc()
}
