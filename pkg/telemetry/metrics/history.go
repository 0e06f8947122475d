package metrics

import (
	"time"

	"mercator-hq/rdl/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// HistoryMetrics tracks the check history store.
//
// Metrics:
//   - rdl_history_records_stored_total: records written
//   - rdl_history_store_errors_total: failed writes
//   - rdl_history_records_pruned_total: records removed by retention
//   - rdl_history_prune_duration_seconds: duration of prune runs
type HistoryMetrics struct {
	storedTotal   prometheus.Counter
	errorsTotal   prometheus.Counter
	prunedTotal   prometheus.Counter
	pruneDuration prometheus.Histogram
}

// NewHistoryMetrics creates and registers history metrics with the provided registry.
func NewHistoryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HistoryMetrics {
	hm := &HistoryMetrics{
		storedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "history",
			Name:      "records_stored_total",
			Help:      "Total number of check records stored",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "history",
			Name:      "store_errors_total",
			Help:      "Total number of failed record writes",
		}),
		prunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "history",
			Name:      "records_pruned_total",
			Help:      "Total number of records removed by retention",
		}),
		pruneDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "history",
			Name:      "prune_duration_seconds",
			Help:      "Duration of retention runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	registry.MustRegister(hm.storedTotal, hm.errorsTotal, hm.prunedTotal, hm.pruneDuration)
	return hm
}

// RecordStore records a write attempt.
func (hm *HistoryMetrics) RecordStore(err error) {
	if err != nil {
		hm.errorsTotal.Inc()
		return
	}
	hm.storedTotal.Inc()
}

// RecordPrune records a retention run.
func (hm *HistoryMetrics) RecordPrune(deleted int64, duration time.Duration) {
	hm.prunedTotal.Add(float64(deleted))
	hm.pruneDuration.Observe(duration.Seconds())
}
