package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/rdl/pkg/cli"
)

func recordChecks(t *testing.T) (cfg string, f checkFixture) {
	t.Helper()
	f = newCheckFixture(t)
	cfg = writeConfig(t, f.dir, "")

	_, _, err := execute(t, "", "check", "--config", cfg, "--schema-file", f.schema, f.good, f.bad)
	wantExit(t, err, cli.ExitInvalid)
	return cfg, f
}

type recordJSON struct {
	ID        string `json:"id"`
	Document  string `json:"document"`
	Schema    string `json:"schema"`
	Source    string `json:"source"`
	Valid     bool   `json:"valid"`
	ErrorKind string `json:"error_kind"`
	ErrorPath string `json:"error_path"`
}

func historyJSON(t *testing.T, args ...string) []recordJSON {
	t.Helper()
	stdout, _, err := execute(t, "", append([]string{"history", "--format", "json"}, args...)...)
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	var records []recordJSON
	if err := json.Unmarshal([]byte(stdout), &records); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	return records
}

func TestHistoryCommand(t *testing.T) {
	cfg, f := recordChecks(t)

	records := historyJSON(t, "--config", cfg)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.Schema != "point" || r.Source != "cli" || r.ID == "" {
			t.Errorf("record = %+v", r)
		}
	}

	invalid := historyJSON(t, "--config", cfg, "--invalid")
	if len(invalid) != 1 {
		t.Fatalf("got %d invalid records, want 1", len(invalid))
	}
	if invalid[0].Document != f.bad || invalid[0].ErrorKind != "validation" || invalid[0].ErrorPath != "$.y" {
		t.Errorf("invalid record = %+v", invalid[0])
	}

	if got := historyJSON(t, "--config", cfg, "--document", f.good); len(got) != 1 || !got[0].Valid {
		t.Errorf("document filter = %+v", got)
	}
	if got := historyJSON(t, "--config", cfg, "--since", "1h"); len(got) != 2 {
		t.Errorf("--since 1h returned %d records", len(got))
	}
	if got := historyJSON(t, "--config", cfg, "--until", "1h"); len(got) != 0 {
		t.Errorf("--until 1h ago returned %d records", len(got))
	}
}

func TestHistoryCommand_Text(t *testing.T) {
	cfg, f := recordChecks(t)

	stdout, _, err := execute(t, "", "history", "--config", cfg, "--limit", "1", "--sort", "document", "--order", "asc")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.HasPrefix(stdout, "ID") || !strings.Contains(stdout, "CHECKED AT") {
		t.Errorf("missing header:\n%s", stdout)
	}
	// bad.rdl sorts first.
	if !strings.Contains(stdout, f.bad) || strings.Contains(stdout, f.good) {
		t.Errorf("expected only the bad document:\n%s", stdout)
	}
	if !strings.Contains(stdout, "validation at $.y") {
		t.Errorf("missing error summary:\n%s", stdout)
	}
	if !strings.HasSuffix(stdout, "1 record(s)\n") {
		t.Errorf("missing count:\n%s", stdout)
	}
}

func TestHistoryExportCommand(t *testing.T) {
	cfg, _ := recordChecks(t)
	out := filepath.Join(t.TempDir(), "checks.csv")

	_, stderr, err := execute(t, "", "history", "export", "--config", cfg, "--format", "csv", "--output", out)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(stderr, "exported 2 record(s)") {
		t.Errorf("stderr = %q", stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows:\n%s", data)
	}
	if !strings.HasPrefix(lines[0], "id,checked_at,document") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestHistoryPruneCommand(t *testing.T) {
	cfg, _ := recordChecks(t)

	stdout, _, err := execute(t, "", "history", "prune", "--config", cfg, "--max-records", "1")
	if err != nil {
		t.Fatalf("prune error = %v", err)
	}
	if stdout != "pruned 1 record(s)\n" {
		t.Errorf("prune output = %q", stdout)
	}
	if got := historyJSON(t, "--config", cfg); len(got) != 1 {
		t.Errorf("%d records left, want 1", len(got))
	}
}

func TestHistoryCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	disabled := writeFile(t, dir, "disabled.yaml", "history:\n  enabled: false\n")

	tests := []struct {
		name string
		args []string
	}{
		{"disabled", []string{"history", "--config", disabled}},
		{"valid and invalid", []string{"history", "--config", cfg, "--valid", "--invalid"}},
		{"bad since", []string{"history", "--config", cfg, "--since", "yesterday"}},
		{"bad sort", []string{"history", "--config", cfg, "--sort", "size"}},
		{"bad error kind", []string{"history", "--config", cfg, "--error-kind", "fatal"}},
		{"bad export format", []string{"history", "export", "--config", cfg, "--format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			wantExit(t, err, cli.ExitFailure)
		})
	}
}

func TestParseTimeFlag(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseTimeFlag("since", "2h", now)
	if err != nil || !got.Equal(now.Add(-2*time.Hour)) {
		t.Errorf("parseTimeFlag(2h) = %v, %v", got, err)
	}
	got, err = parseTimeFlag("since", "2026-02-01T00:00:00Z", now)
	if err != nil || got.Month() != time.February {
		t.Errorf("parseTimeFlag(RFC 3339) = %v, %v", got, err)
	}
	if got, err := parseTimeFlag("since", "", now); got != nil || err != nil {
		t.Errorf("empty flag = %v, %v", got, err)
	}
	if _, err := parseTimeFlag("since", "-5m", now); err == nil {
		t.Error("negative duration should be rejected")
	}
}
