package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
	rdlerrors "mercator-hq/rdl/pkg/rdl/errors"
	"mercator-hq/rdl/pkg/rdl/rules"
	"mercator-hq/rdl/pkg/telemetry/metrics"
)

// Config controls how records are built and written.
type Config struct {
	// AsyncBuffer is the capacity of the write queue.
	AsyncBuffer int

	// WriteTimeout bounds both a single storage write and how long Record
	// waits for queue space.
	WriteTimeout time.Duration

	// StoreDocuments keeps the document text in the record.
	StoreDocuments bool

	// MaxMessageLength truncates error messages and stored documents.
	MaxMessageLength int
}

// DefaultConfig returns the recorder defaults.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:      1000,
		WriteTimeout:     5 * time.Second,
		MaxMessageLength: config.DefaultHistoryMaxMessageLength,
	}
}

// FromConfig derives a recorder Config from the history section.
func FromConfig(h *config.HistoryConfig) *Config {
	c := DefaultConfig()
	c.StoreDocuments = h.StoreDocuments
	if h.MaxMessageLength > 0 {
		c.MaxMessageLength = h.MaxMessageLength
	}
	if h.SQLite.BusyTimeout > 0 {
		c.WriteTimeout = h.SQLite.BusyTimeout
	}
	return c
}

// Observation is the outcome of one check, as reported by the checker.
type Observation struct {
	// ID becomes the record ID. A random UUID is used when empty.
	ID        string
	Document  string
	Source    string
	Schema    string
	Content   []byte
	CheckedAt time.Time
	Duration  time.Duration
	// Err is nil for a valid document, a *errors.ParseError, a
	// *rules.ValidationError, or an I/O failure.
	Err error
}

// Recorder builds history records and writes them asynchronously.
type Recorder struct {
	storage history.Storage
	config  *Config
	metrics *metrics.Collector
	logger  *slog.Logger

	records   chan *history.Record
	done      chan struct{} // closed first, unblocks waiting senders
	stop      chan struct{} // closed once no sender can reach records
	mu        sync.RWMutex  // held for reading across a send
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New starts a recorder writing to storage. collector may be nil.
func New(storage history.Storage, cfg *Config, collector *metrics.Collector) *Recorder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.AsyncBuffer <= 0 {
		cfg.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	r := &Recorder{
		storage: storage,
		config:  cfg,
		metrics: collector,
		logger:  slog.Default().With("component", "history.recorder"),
		records: make(chan *history.Record, cfg.AsyncBuffer),
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
	r.wg.Go(r.worker)

	r.logger.Debug("history recorder started",
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
		"store_documents", cfg.StoreDocuments,
	)
	return r
}

// NewRecord builds the record for obs without storing it.
func (r *Recorder) NewRecord(obs Observation) *history.Record {
	checkedAt := obs.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}

	id := obs.ID
	if id == "" {
		id = uuid.New().String()
	}

	rec := &history.Record{
		ID:             id,
		CheckedAt:      checkedAt.UTC(),
		Document:       obs.Document,
		Source:         obs.Source,
		Schema:         obs.Schema,
		DocumentHash:   HashContent(obs.Content),
		DocumentSize:   len(obs.Content),
		Valid:          obs.Err == nil,
		DurationMicros: obs.Duration.Microseconds(),
	}
	if r.config.StoreDocuments {
		rec.Content = TruncateString(string(obs.Content), r.config.MaxMessageLength)
	}
	if obs.Err != nil {
		classify(rec, obs.Err)
		rec.ErrorMessage = TruncateString(rec.ErrorMessage, r.config.MaxMessageLength)
	}
	return rec
}

func classify(rec *history.Record, err error) {
	if pe, ok := rdlerrors.AsParseError(err); ok {
		rec.ErrorKind = string(pe.Kind)
		rec.ErrorMessage = pe.Message
		rec.Offset = pe.Location.Offset
		rec.Line = pe.Location.Line
		rec.Column = pe.Location.Column
		return
	}
	if ve, ok := rules.AsValidationError(err); ok {
		rec.ErrorKind = history.KindValidation
		rec.ErrorMessage = ve.Message
		rec.ErrorPath = ve.Path.String()
		return
	}
	rec.ErrorKind = string(rdlerrors.KindIO)
	rec.ErrorMessage = err.Error()
}

// Record builds a record for obs and queues it for writing. It returns the
// record even when queueing fails.
func (r *Recorder) Record(ctx context.Context, obs Observation) (*history.Record, error) {
	rec := r.NewRecord(obs)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return rec, history.NewRecorderError(rec.ID, context.Canceled)
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.records <- rec:
		return rec, nil
	case <-ctx.Done():
		return rec, history.NewRecorderError(rec.ID, ctx.Err())
	case <-timer.C:
		r.logger.Error("history queue full, dropping record",
			"record_id", rec.ID,
			"document", rec.Document,
			"capacity", r.config.AsyncBuffer,
		)
		r.metrics.RecordHistoryStore(context.DeadlineExceeded)
		return rec, history.NewRecorderError(rec.ID, context.DeadlineExceeded)
	case <-r.done:
		return rec, history.NewRecorderError(rec.ID, context.Canceled)
	}
}

// Close stops accepting records, writes everything already queued and
// returns once the queue is empty.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		close(r.stop)
		r.wg.Wait()
		r.logger.Debug("history recorder stopped")
	})
	return nil
}

func (r *Recorder) worker() {
	for {
		select {
		case rec := <-r.records:
			r.write(rec)
		case <-r.stop:
			for {
				select {
				case rec := <-r.records:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(rec *history.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	err := r.storage.Store(ctx, rec)
	r.metrics.RecordHistoryStore(err)
	if err != nil {
		r.logger.Error("failed to store history record",
			"record_id", rec.ID,
			"document", rec.Document,
			"error", err,
		)
		return
	}
	r.logger.Debug("history record stored",
		"record_id", rec.ID,
		"document", rec.Document,
		"valid", rec.Valid,
	)
}
