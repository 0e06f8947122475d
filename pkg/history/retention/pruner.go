package retention

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
	"mercator-hq/rdl/pkg/telemetry/metrics"
)

// deleteBatch bounds the number of IDs in one DELETE.
const deleteBatch = 500

// Pruner enforces the retention policy on a history store.
type Pruner struct {
	storage   history.Storage
	config    config.RetentionConfig
	metrics   *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
	scheduler *Scheduler
}

// NewPruner creates a pruner. collector may be nil.
func NewPruner(storage history.Storage, cfg *config.RetentionConfig, collector *metrics.Collector) *Pruner {
	p := &Pruner{
		storage: storage,
		config:  *cfg,
		metrics: collector,
		logger:  slog.Default().With("component", "history.retention"),
		now:     time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. Either phase is skipped when its limit is
// zero. It returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	start := time.Now()
	var total int64

	if p.config.Days > 0 {
		n, err := p.pruneByAge(ctx)
		total += n
		if err != nil {
			return total, &history.RetentionError{Phase: "age", Cause: err}
		}
	}

	if p.config.MaxRecords > 0 {
		n, err := p.pruneByCount(ctx)
		total += n
		if err != nil {
			return total, &history.RetentionError{Phase: "count", Cause: err}
		}
	}

	p.metrics.RecordHistoryPrune(total, time.Since(start))

	if total > 0 {
		p.logger.Info("history pruned",
			"deleted", total,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Debug("history prune found nothing to delete")
	}
	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.Days)
	return p.storage.Delete(ctx, &history.Query{EndTime: &cutoff})
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &history.Query{})
	if err != nil {
		return 0, err
	}
	excess := count - p.config.MaxRecords
	if excess <= 0 {
		return 0, nil
	}

	oldest, err := p.storage.Query(ctx, &history.Query{
		Limit:     int(excess),
		SortBy:    history.SortCheckedAt,
		SortOrder: "asc",
	})
	if err != nil {
		return 0, err
	}

	var deleted int64
	for start := 0; start < len(oldest); start += deleteBatch {
		end := min(start+deleteBatch, len(oldest))
		ids := make([]string, 0, end-start)
		for _, r := range oldest[start:end] {
			ids = append(ids, r.ID)
		}
		n, err := p.storage.Delete(ctx, &history.Query{IDs: ids})
		deleted += n
		if err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

// Start runs the pruner on the configured schedule until ctx ends or Stop
// is called.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop halts the schedule and waits for a running prune.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns when the next scheduled prune runs, or nil.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
