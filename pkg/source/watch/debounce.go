package watch

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Debouncer collects changes and delivers them once no new change has
// arrived for the interval. A later change to the same path replaces the
// earlier one.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	pending  map[string]Change
	timer    *time.Timer
	callback func([]Change)
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval, pending: make(map[string]Change)}
}

// Add records a change and restarts the quiet period. callback replaces
// any earlier one.
func (d *Debouncer) Add(c Change, callback func([]Change)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[c.Path] = c
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]Change, 0, len(d.pending))
	for _, path := range slices.Sorted(maps.Keys(d.pending)) {
		batch = append(batch, d.pending[path])
	}
	clear(d.pending)
	cb := d.callback
	d.mu.Unlock()

	if cb != nil {
		cb(batch)
	}
}

// Stop cancels any pending delivery. Further changes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	clear(d.pending)
	d.callback = nil
}
