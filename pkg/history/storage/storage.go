package storage

import (
	"fmt"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
)

// New opens the backend named by cfg.Backend.
func New(cfg *config.HistoryConfig) (history.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "", "sqlite":
		return NewSQLiteStorage(&cfg.SQLite)
	default:
		return nil, history.NewStorageError(cfg.Backend, "open", fmt.Errorf("unknown history backend %q", cfg.Backend))
	}
}
