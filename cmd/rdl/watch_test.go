package main

import (
	"slices"
	"testing"
	"time"
)

func TestSchemaWatchConfig(t *testing.T) {
	cfg := schemaWatchConfig(map[string]string{
		"quote": "schemas/quote.schema",
		"fx":    "schemas/fx.SCHEMA",
		"tags":  "other/tags.rdls",
	}, 50*time.Millisecond)

	wantPaths := []string{"other/tags.rdls", "schemas/fx.SCHEMA", "schemas/quote.schema"}
	if !slices.Equal(cfg.Paths, wantPaths) {
		t.Errorf("Paths = %v, want %v", cfg.Paths, wantPaths)
	}
	wantExts := []string{".rdls", ".schema"}
	if !slices.Equal(cfg.Extensions, wantExts) {
		t.Errorf("Extensions = %v, want %v", cfg.Extensions, wantExts)
	}
	if cfg.Debounce != 50*time.Millisecond || !cfg.SkipHidden {
		t.Errorf("config = %+v", cfg)
	}
}
