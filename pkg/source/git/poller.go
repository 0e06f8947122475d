package git

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ChangeFunc receives the documents touched by new commits.
type ChangeFunc func(ctx context.Context, commit *Commit, changed, removed []string)

// Poller pulls a repository on an interval.
type Poller struct {
	repo     *Repository
	interval time.Duration
	onChange ChangeFunc
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewPoller creates a poller. interval must be positive.
func NewPoller(repo *Repository, interval time.Duration, onChange ChangeFunc, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		repo:     repo,
		interval: interval,
		onChange: onChange,
		logger:   logger.With("component", "source.git"),
	}
}

// Start begins polling in the background.
func (p *Poller) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("poller already running")
	}
	head, err := p.repo.Head()
	if err != nil {
		return err
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	p.logger.Info("polling repository", "interval", p.interval, "commit", head.Short())
	go p.loop(ctx)
	return nil
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.doneCh)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil {
				p.logger.Error("poll failed", "error", err)
			}
		}
	}
}

// Poll pulls once and reports changed documents. It is safe to call
// while the background loop runs.
func (p *Poller) Poll(ctx context.Context) error {
	res, err := p.repo.Pull(ctx)
	if err != nil {
		return err
	}
	if !res.HadChanges() {
		return nil
	}

	changed, removed := p.repo.ChangedDocuments(res)
	p.logger.Info("repository updated",
		"from", shortSHA(res.FromSHA),
		"to", shortSHA(res.ToSHA),
		"changed_files", len(res.Changed),
		"documents", len(changed),
		"removed", len(removed),
	)
	if len(changed) == 0 && len(removed) == 0 {
		return nil
	}
	p.repo.metrics.RecordSourceEvent("git")

	head, err := p.repo.Head()
	if err != nil {
		return err
	}
	p.onChange(ctx, head, changed, removed)
	return nil
}

// Stop ends polling and waits for an in-flight poll.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()
	<-done
}

// IsRunning reports whether the background loop is active.
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
