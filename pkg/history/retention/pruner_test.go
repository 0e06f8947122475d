package retention

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
	"mercator-hq/rdl/pkg/history/storage"
	"mercator-hq/rdl/pkg/telemetry/metrics"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func seedAges(t *testing.T, s history.Storage, ages map[string]int) {
	t.Helper()
	for id, days := range ages {
		r := &history.Record{ID: id, CheckedAt: now.AddDate(0, 0, -days), Document: id + ".rdl", Valid: true}
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}
}

func remaining(t *testing.T, s history.Storage) string {
	t.Helper()
	records, err := s.Query(context.Background(), &history.Query{SortBy: history.SortCheckedAt})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return strings.Join(ids, ",")
}

func newTestPruner(s history.Storage, cfg config.RetentionConfig, c *metrics.Collector) *Pruner {
	p := NewPruner(s, &cfg, c)
	p.now = func() time.Time { return now }
	return p
}

func TestPruner_Prune(t *testing.T) {
	ages := map[string]int{"d10": 10, "d8": 8, "d5": 5, "d3": 3, "d1": 1}

	tests := []struct {
		name        string
		cfg         config.RetentionConfig
		wantDeleted int64
		wantLeft    string
	}{
		{"disabled", config.RetentionConfig{}, 0, "d10,d8,d5,d3,d1"},
		{"by age", config.RetentionConfig{Days: 7}, 2, "d5,d3,d1"},
		{"by count", config.RetentionConfig{MaxRecords: 2}, 3, "d3,d1"},
		{"age then count", config.RetentionConfig{Days: 7, MaxRecords: 1}, 4, "d1"},
		{"count within limit", config.RetentionConfig{MaxRecords: 10}, 0, "d10,d8,d5,d3,d1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storage.NewMemoryStorage()
			seedAges(t, s, ages)

			deleted, err := newTestPruner(s, tt.cfg, nil).Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() failed: %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("Prune() deleted %d, want %d", deleted, tt.wantDeleted)
			}
			if got := remaining(t, s); got != tt.wantLeft {
				t.Errorf("remaining = %q, want %q", got, tt.wantLeft)
			}
		})
	}
}

func TestPruner_CountBatches(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	for i := range deleteBatch + 50 {
		r := &history.Record{ID: fmt.Sprintf("r%04d", i), CheckedAt: now.Add(time.Duration(i) * time.Second)}
		if err := s.Store(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := newTestPruner(s, config.RetentionConfig{MaxRecords: 10}, nil).Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != deleteBatch+40 {
		t.Errorf("Prune() deleted %d, want %d", deleted, deleteBatch+40)
	}
	n, _ := s.Count(ctx, &history.Query{})
	if n != 10 {
		t.Errorf("Count() = %d, want 10", n)
	}
}

func TestPruner_Metrics(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedAges(t, s, map[string]int{"old": 40, "new": 1})
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "rdl"}, nil)

	if _, err := newTestPruner(s, config.RetentionConfig{Days: 30}, collector).Prune(context.Background()); err != nil {
		t.Fatal(err)
	}

	expected := `
# HELP rdl_history_records_pruned_total Total number of records removed by retention
# TYPE rdl_history_records_pruned_total counter
rdl_history_records_pruned_total 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "rdl_history_records_pruned_total"); err != nil {
		t.Error(err)
	}
}

func TestPruner_StorageError(t *testing.T) {
	s := storage.NewMemoryStorage()
	s.Close()

	_, err := newTestPruner(s, config.RetentionConfig{Days: 1}, nil).Prune(context.Background())
	var re *history.RetentionError
	if !errors.As(err, &re) {
		t.Fatalf("Prune() error = %v, want RetentionError", err)
	}
	if re.Phase != "age" {
		t.Errorf("Phase = %q, want age", re.Phase)
	}
	var se *history.StorageError
	if !errors.As(err, &se) {
		t.Error("RetentionError should wrap the StorageError")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	p := newTestPruner(storage.NewMemoryStorage(), config.RetentionConfig{Days: 1, PruneSchedule: "0 3 * * *"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !p.scheduler.IsRunning() {
		t.Fatal("scheduler should be running")
	}
	next := p.NextPruning()
	if next == nil {
		t.Fatal("NextPruning() = nil")
	}
	if next.Hour() != 3 || next.Minute() != 0 {
		t.Errorf("NextPruning() = %v, want 03:00", next)
	}

	p.Stop()
	if p.scheduler.IsRunning() {
		t.Error("scheduler should be stopped")
	}
	if p.NextPruning() != nil {
		t.Error("NextPruning() should be nil once stopped")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	p := newTestPruner(storage.NewMemoryStorage(), config.RetentionConfig{Days: 1, PruneSchedule: "@hourly"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for p.scheduler.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler still running after context cancel")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestScheduler_NoSchedule(t *testing.T) {
	p := newTestPruner(storage.NewMemoryStorage(), config.RetentionConfig{Days: 1}, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if p.scheduler.IsRunning() {
		t.Error("scheduler should stay idle without a schedule")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	p := newTestPruner(storage.NewMemoryStorage(), config.RetentionConfig{PruneSchedule: "every tuesday"}, nil)
	if err := p.Start(context.Background()); err == nil {
		t.Error("Start() should reject an invalid cron expression")
	}
}
