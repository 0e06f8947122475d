package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
)

type backend struct {
	name string
	open func(t *testing.T) history.Storage
}

func sqliteBackend(driver string) func(t *testing.T) history.Storage {
	return func(t *testing.T) history.Storage {
		t.Helper()
		cfg := &config.SQLiteConfig{
			Path:         filepath.Join(t.TempDir(), "history.db"),
			Driver:       driver,
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			WALMode:      true,
			BusyTimeout:  5 * time.Second,
		}
		s, err := NewSQLiteStorage(cfg)
		if err != nil {
			// go-sqlite3 builds without cgo only as a stub.
			if driver == "sqlite3" && strings.Contains(err.Error(), "cgo") {
				t.Skipf("sqlite3 driver unavailable: %v", err)
			}
			t.Fatalf("NewSQLiteStorage(%s) failed: %v", driver, err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	}
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) history.Storage { return NewMemoryStorage() }},
		{"sqlite", sqliteBackend("sqlite")},
		{"sqlite3", sqliteBackend("sqlite3")},
	}
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, s history.Storage) {
	t.Helper()
	records := []*history.Record{
		{ID: "a", CheckedAt: base, Document: "prices.rdl", Schema: "stock", Valid: true, DurationMicros: 40, Source: "cli"},
		{ID: "b", CheckedAt: base.Add(time.Hour), Document: "prices.rdl", Schema: "stock", Valid: false,
			ErrorKind: history.KindValidation, ErrorPath: "$.ticker", ErrorMessage: "expected String", DurationMicros: 10, Source: "watch"},
		{ID: "c", CheckedAt: base.Add(2 * time.Hour), Document: "broken.rdl", Valid: false,
			ErrorKind: "syntax", Offset: 6, Line: 1, Column: 7, DurationMicros: 25, Source: "http"},
		{ID: "d", CheckedAt: base.Add(3 * time.Hour), Document: "other.rdl", Schema: "user", Valid: true, DurationMicros: 90, Source: "cli"},
	}
	for _, r := range records {
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatalf("Store(%s) failed: %v", r.ID, err)
		}
	}
}

func ids(records []*history.Record) string {
	var out []string
	for _, r := range records {
		out = append(out, r.ID)
	}
	return strings.Join(out, ",")
}

func TestStorage_Query(t *testing.T) {
	end := base.Add(2 * time.Hour)
	start := base.Add(time.Hour)

	tests := []struct {
		name  string
		query history.Query
		want  string
	}{
		{"all ascending", history.Query{}, "a,b,c,d"},
		{"newest first", history.Query{SortOrder: "desc"}, "d,c,b,a"},
		{"by schema", history.Query{Schema: "stock"}, "a,b"},
		{"invalid only", history.Query{Valid: history.Bool(false)}, "b,c"},
		{"valid only", history.Query{Valid: history.Bool(true)}, "a,d"},
		{"error kind", history.Query{ErrorKind: "syntax"}, "c"},
		{"document", history.Query{Document: "prices.rdl"}, "a,b"},
		{"source", history.Query{Source: "cli"}, "a,d"},
		{"ids", history.Query{IDs: []string{"d", "a"}}, "a,d"},
		{"time range inclusive", history.Query{StartTime: &start, EndTime: &end}, "b,c"},
		{"limit", history.Query{Limit: 2}, "a,b"},
		{"limit offset", history.Query{Limit: 2, Offset: 1}, "b,c"},
		{"offset only", history.Query{Offset: 3}, "d"},
		{"offset past end", history.Query{Offset: 10}, ""},
		{"sort by duration", history.Query{SortBy: history.SortDuration}, "b,c,a,d"},
		{"sort by document desc", history.Query{SortBy: history.SortDocument, SortOrder: "desc"}, "b,a,d,c"},
	}

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			seed(t, s)
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					q := tt.query
					got, err := s.Query(context.Background(), &q)
					if err != nil {
						t.Fatalf("Query() failed: %v", err)
					}
					if ids(got) != tt.want {
						t.Errorf("Query() = %q, want %q", ids(got), tt.want)
					}
				})
			}
		})
	}
}

func TestStorage_RoundTripFields(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			seed(t, s)

			got, err := s.Query(context.Background(), &history.Query{IDs: []string{"c"}})
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("Query() returned %d records, want 1", len(got))
			}
			r := got[0]
			if !r.CheckedAt.Equal(base.Add(2 * time.Hour)) {
				t.Errorf("CheckedAt = %v", r.CheckedAt)
			}
			if r.Valid || r.ErrorKind != "syntax" || r.Offset != 6 || r.Line != 1 || r.Column != 7 {
				t.Errorf("error fields not preserved: %+v", r)
			}
			if r.Duration() != 25*time.Microsecond {
				t.Errorf("Duration() = %v", r.Duration())
			}
		})
	}
}

func TestStorage_StoreReplaces(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			r := &history.Record{ID: "x", CheckedAt: base, Document: "a.rdl", Valid: false}
			if err := s.Store(ctx, r); err != nil {
				t.Fatal(err)
			}
			r.Valid = true
			if err := s.Store(ctx, r); err != nil {
				t.Fatal(err)
			}
			n, err := s.Count(ctx, &history.Query{})
			if err != nil || n != 1 {
				t.Fatalf("Count() = %d, %v; want 1", n, err)
			}
			got, _ := s.Query(ctx, &history.Query{})
			if !got[0].Valid {
				t.Error("second Store() did not replace the record")
			}
		})
	}
}

func TestStorage_StoreRequiresID(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			err := s.Store(context.Background(), &history.Record{Document: "a.rdl"})
			var se *history.StorageError
			if !errors.As(err, &se) {
				t.Fatalf("Store() error = %v, want StorageError", err)
			}
		})
	}
}

func TestStorage_CountAndDelete(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			seed(t, s)
			ctx := context.Background()

			n, err := s.Count(ctx, &history.Query{Valid: history.Bool(false), Limit: 1})
			if err != nil || n != 2 {
				t.Fatalf("Count() = %d, %v; want 2 (limit ignored)", n, err)
			}

			cutoff := base.Add(time.Hour)
			deleted, err := s.Delete(ctx, &history.Query{EndTime: &cutoff})
			if err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}
			if deleted != 2 {
				t.Errorf("Delete() = %d, want 2", deleted)
			}

			rest, _ := s.Query(ctx, &history.Query{})
			if ids(rest) != "c,d" {
				t.Errorf("remaining = %q, want c,d", ids(rest))
			}
		})
	}
}

func TestStorage_Ping(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			if err := s.Ping(context.Background()); err != nil {
				t.Errorf("Ping() = %v", err)
			}
		})
	}
}

func TestMemoryStorage_Closed(t *testing.T) {
	s := NewMemoryStorage()
	s.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() after Close() should fail")
	}
	if err := s.Store(context.Background(), &history.Record{ID: "x"}); err == nil {
		t.Error("Store() after Close() should fail")
	}
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	r := &history.Record{ID: "x", Document: "a.rdl"}
	s.Store(ctx, r)
	r.Document = "changed"

	got, _ := s.Query(ctx, &history.Query{})
	got[0].Document = "mutated"

	again, _ := s.Query(ctx, &history.Query{})
	if again[0].Document != "a.rdl" {
		t.Errorf("stored record was mutated: %q", again[0].Document)
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	cfg := &config.SQLiteConfig{Path: path, Driver: "sqlite", BusyTimeout: time.Second}

	s, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() failed: %v", err)
	}
	if err := s.Store(context.Background(), &history.Record{ID: "kept", CheckedAt: base, Document: "a.rdl"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	n, _ := s.Count(context.Background(), &history.Query{})
	if n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	s, err := NewSQLiteStorage(&config.SQLiteConfig{Path: ":memory:", Driver: "sqlite"})
	if err != nil {
		t.Fatalf("NewSQLiteStorage(:memory:) failed: %v", err)
	}
	defer s.Close()
	seed(t, s)
	n, _ := s.Count(context.Background(), &history.Query{})
	if n != 4 {
		t.Errorf("Count() = %d, want 4", n)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"memory", false},
		{"sqlite", false},
		{"postgres", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.HistoryConfig{
				Backend: tt.backend,
				SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "h.db")},
			}
			s, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%s) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}

func BenchmarkSQLiteStorage_Store(b *testing.B) {
	s, err := NewSQLiteStorage(&config.SQLiteConfig{
		Path:        filepath.Join(b.TempDir(), "bench.db"),
		Driver:      "sqlite",
		WALMode:     true,
		BusyTimeout: time.Second,
	})
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	for i := 0; b.Loop(); i++ {
		r := &history.Record{ID: fmt.Sprintf("r-%d", i), CheckedAt: base, Document: "bench.rdl", Valid: true}
		if err := s.Store(ctx, r); err != nil {
			b.Fatal(err)
		}
	}
}
