package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"mercator-hq/rdl/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// otherLabel replaces label values beyond the cardinality limit.
const otherLabel = "other"

// Collector owns the Prometheus registry and every metric group. All
// Record methods are no-ops on a nil Collector or when metrics are
// disabled, so callers never need to guard them.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	check   *CheckMetrics
	history *HistoryMetrics
	source  *SourceMetrics

	// schema names come from configuration and HTTP paths
	schemaLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector. If registry is nil a
// fresh registry with the Go and process collectors is used.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}
	if len(cfg.SizeBuckets) == 0 {
		cfg.SizeBuckets = append([]float64(nil), config.DefaultSizeBuckets...)
	}

	return &Collector{
		config:        cfg,
		registry:      registry,
		check:         NewCheckMetrics(cfg, registry),
		history:       NewHistoryMetrics(cfg, registry),
		source:        NewSourceMetrics(cfg, registry),
		schemaLimiter: NewCardinalityLimiter(256),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

func (c *Collector) schemaLabel(schema string) string {
	if schema == "" {
		return "none"
	}
	if !c.schemaLimiter.Allow(schema) {
		return otherLabel
	}
	return schema
}

// RecordCheck records the outcome of a document check.
func (c *Collector) RecordCheck(schema, outcome string) {
	if !c.enabled() {
		return
	}
	c.check.RecordCheck(c.schemaLabel(schema), outcome)
}

// RecordParse records parse duration and document size.
func (c *Collector) RecordParse(duration time.Duration, sizeBytes int) {
	if !c.enabled() {
		return
	}
	c.check.RecordParse(duration, sizeBytes)
}

// RecordValidate records validation duration for a schema.
func (c *Collector) RecordValidate(schema string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.check.RecordValidate(c.schemaLabel(schema), duration)
}

// RecordError records a failure by kind (e.g. "lexical", "type_mismatch").
func (c *Collector) RecordError(kind string) {
	if !c.enabled() {
		return
	}
	c.check.RecordError(kind)
}

// RecordHistoryStore records a history write.
func (c *Collector) RecordHistoryStore(err error) {
	if !c.enabled() {
		return
	}
	c.history.RecordStore(err)
}

// RecordHistoryPrune records a retention run.
func (c *Collector) RecordHistoryPrune(deleted int64, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.history.RecordPrune(deleted, duration)
}

// RecordSourceEvent records a change event from "watch" or "git".
func (c *Collector) RecordSourceEvent(source string) {
	if !c.enabled() {
		return
	}
	c.source.RecordEvent(source)
}

// RecordGitSync records a Git clone or pull.
func (c *Collector) RecordGitSync(err error, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.source.RecordGitSync(err, duration)
}

// SetSchemasLoaded records the number of registered schemas.
func (c *Collector) SetSchemasLoaded(n int) {
	if !c.enabled() {
		return
	}
	c.source.SetSchemasLoaded(n)
}

// RecordHTTPRequest records an API request.
func (c *Collector) RecordHTTPRequest(route string, status int) {
	if !c.enabled() {
		return
	}
	c.source.RecordHTTPRequest(route, strconv.Itoa(status))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Instrument wraps h so that every response is counted under route.
func (c *Collector) Instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(sw, r)
		c.RecordHTTPRequest(route, sw.status)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label: it is already
// known or the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
