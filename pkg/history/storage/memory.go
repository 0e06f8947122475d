package storage

import (
	"context"
	"errors"
	"slices"
	"sync"

	"mercator-hq/rdl/pkg/history"
)

// MemoryStorage implements history.Storage in process memory. Records are
// lost on exit.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*history.Record
	closed  bool
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*history.Record)}
}

var errClosed = errors.New("storage closed")

// Store keeps a copy of the record.
func (s *MemoryStorage) Store(_ context.Context, r *history.Record) error {
	if r.ID == "" {
		return history.NewStorageError("memory", "store", errors.New("record has no id"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return history.NewStorageError("memory", "store", errClosed)
	}
	c := *r
	s.records[r.ID] = &c
	return nil
}

// Query returns copies of the matching records.
func (s *MemoryStorage) Query(ctx context.Context, q *history.Query) ([]*history.Record, error) {
	matched, err := s.match(ctx, "query", q)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(matched, q.Compare)

	if q.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	out := make([]*history.Record, len(matched))
	for i, r := range matched {
		c := *r
		out[i] = &c
	}
	return out, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, q *history.Query) (int64, error) {
	matched, err := s.match(ctx, "count", q)
	return int64(len(matched)), err
}

// Delete removes the matching records.
func (s *MemoryStorage) Delete(ctx context.Context, q *history.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, history.NewStorageError("memory", "delete", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, history.NewStorageError("memory", "delete", errClosed)
	}
	var n int64
	for id, r := range s.records {
		if q.Matches(r) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

// Ping fails once the store is closed.
func (s *MemoryStorage) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return history.NewStorageError("memory", "ping", errClosed)
	}
	return nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	return nil
}

func (s *MemoryStorage) match(ctx context.Context, op string, q *history.Query) ([]*history.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, history.NewStorageError("memory", op, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, history.NewStorageError("memory", op, errClosed)
	}
	var matched []*history.Record
	for _, r := range s.records {
		if q.Matches(r) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}
