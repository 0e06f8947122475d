package config

import (
	"errors"
	"strings"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestNewDefault_IsValid(t *testing.T) {
	if err := Validate(NewDefault()); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := NewDefault()
	cfg.Parser.MaxDepth = 7
	ApplyDefaults(cfg)
	ApplyDefaults(cfg)
	if cfg.Parser.MaxDepth != 7 {
		t.Errorf("ApplyDefaults overwrote explicit value: %d", cfg.Parser.MaxDepth)
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) != len(DefaultDurationBuckets) {
		t.Errorf("unexpected buckets: %v", cfg.Telemetry.Metrics.DurationBuckets)
	}

	cfg.Telemetry.Metrics.DurationBuckets[0] = 42
	if DefaultDurationBuckets[0] == 42 {
		t.Error("default buckets share storage with config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{
			name:   "zero max depth",
			modify: func(c *Config) { c.Parser.MaxDepth = 0 },
			field:  "parser.max_depth",
		},
		{
			name:   "negative context lines",
			modify: func(c *Config) { c.Parser.ContextLines = intPtr(-1) },
			field:  "parser.context_lines",
		},
		{
			name:   "empty schema path",
			modify: func(c *Config) { c.Schemas["stock"] = "" },
			field:  "schemas.stock",
		},
		{
			name: "binding to unknown schema",
			modify: func(c *Config) {
				c.Documents.Bindings = []Binding{{Pattern: "*.rdl", Schema: "nope"}}
			},
			field: "documents.bindings[0].schema",
		},
		{
			name: "bad binding pattern",
			modify: func(c *Config) {
				c.Schemas["s"] = "s.schema"
				c.Documents.Bindings = []Binding{{Pattern: "[", Schema: "s"}}
			},
			field: "documents.bindings[0].pattern",
		},
		{
			name:   "unknown history backend",
			modify: func(c *Config) { c.History.Backend = "postgres" },
			field:  "history.backend",
		},
		{
			name:   "unknown sqlite driver",
			modify: func(c *Config) { c.History.SQLite.Driver = "pgx" },
			field:  "history.sqlite.driver",
		},
		{
			name:   "bad cron",
			modify: func(c *Config) { c.History.Retention.PruneSchedule = "every day" },
			field:  "history.retention.prune_schedule",
		},
		{
			name:   "default limit above max",
			modify: func(c *Config) { c.History.Query.DefaultLimit = c.History.Query.MaxLimit + 1 },
			field:  "history.query.default_limit",
		},
		{
			name:   "extension without dot",
			modify: func(c *Config) { c.Watch.Extensions = []string{"rdl"} },
			field:  "watch.extensions[0]",
		},
		{
			name: "git without repository",
			modify: func(c *Config) {
				c.Git.Enabled = true
			},
			field: "git.repository",
		},
		{
			name: "git token missing",
			modify: func(c *Config) {
				c.Git.Enabled = true
				c.Git.Repository = "https://example.com/r.git"
				c.Git.Auth.Type = "token"
			},
			field: "git.auth.token",
		},
		{
			name:   "bad listen address",
			modify: func(c *Config) { c.Server.ListenAddress = "localhost" },
			field:  "server.listen_address",
		},
		{
			name:   "bad log level",
			modify: func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			field:  "telemetry.logging.level",
		},
		{
			name:   "unsorted buckets",
			modify: func(c *Config) { c.Telemetry.Metrics.DurationBuckets = []float64{1, 0.5} },
			field:  "telemetry.metrics.duration_buckets",
		},
		{
			name: "tracing without endpoint",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
			},
			field: "telemetry.tracing.endpoint",
		},
		{
			name:   "sample ratio out of range",
			modify: func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 },
			field:  "telemetry.tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_DisabledSectionsSkipped(t *testing.T) {
	cfg := NewDefault()
	cfg.History.Enabled = false
	cfg.History.Backend = "bogus"
	cfg.Git.Auth.Type = "bogus"
	if err := Validate(cfg); err != nil {
		t.Errorf("disabled sections should not be validated: %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message: %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	got := multi.Error()
	if !strings.HasPrefix(got, "configuration validation failed with 2 errors:") {
		t.Errorf("unexpected message: %q", got)
	}
	if !strings.Contains(got, "  - b: worse") {
		t.Errorf("missing field error in %q", got)
	}
}

func TestValidate_APIKeys(t *testing.T) {
	cfg := NewDefault()
	cfg.Server.APIKeys = []APIKeyConfig{
		{Name: "ci", Key: "a"},
		{Name: "ci", Key: "b"},
		{Name: "", Key: "c"},
		{Name: "deploy"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, field := range []string{"server.api_keys[1].name", "server.api_keys[2].name", "server.api_keys[3].key"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error missing %s: %v", field, err)
		}
	}
}
