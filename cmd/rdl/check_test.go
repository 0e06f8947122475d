package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/rdl/pkg/cli"
)

type checkFixture struct {
	dir    string
	schema string
	good   string
	bad    string
}

func newCheckFixture(t *testing.T) checkFixture {
	t.Helper()
	dir := t.TempDir()
	return checkFixture{
		dir:    dir,
		schema: writeFile(t, dir, "point.schema", "(x Integer, y Integer)"),
		good:   writeFile(t, dir, "docs/good.rdl", "(x 1, y 2)"),
		bad:    writeFile(t, dir, "docs/bad.rdl", `(x 1, y "2")`),
	}
}

func TestCheckCommand_Valid(t *testing.T) {
	f := newCheckFixture(t)

	stdout, _, err := execute(t, "", "check", "--no-history", "--schema-file", f.schema, f.good)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(stdout, "ok    "+f.good+" (point)") {
		t.Errorf("output missing ok line:\n%s", stdout)
	}
	if !strings.HasSuffix(stdout, "1 checked, 0 invalid\n") {
		t.Errorf("output missing summary:\n%s", stdout)
	}
}

func TestCheckCommand_Invalid(t *testing.T) {
	f := newCheckFixture(t)

	stdout, _, err := execute(t, "", "check", "--no-history", "--schema-file", f.schema, f.good, f.bad)
	wantExit(t, err, cli.ExitInvalid)
	for _, want := range []string{"FAIL  " + f.bad, "$.y", "2 checked, 1 invalid"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestCheckCommand_ParseOnlyWithoutSchema(t *testing.T) {
	f := newCheckFixture(t)
	broken := writeFile(t, f.dir, "broken.rdl", "(x 1")

	stdout, _, err := execute(t, "", "check", "--no-history", f.bad, broken)
	wantExit(t, err, cli.ExitInvalid)
	if !strings.Contains(stdout, "ok    "+f.bad+"\n") {
		t.Errorf("document without schema should only be parsed:\n%s", stdout)
	}
	if !strings.Contains(stdout, "[syntax]") {
		t.Errorf("output missing the syntax error:\n%s", stdout)
	}
}

func TestCheckCommand_Directory(t *testing.T) {
	f := newCheckFixture(t)
	writeFile(t, f.dir, "docs/.hidden.rdl", "(x 1, y 1)")
	writeFile(t, f.dir, "docs/notes.txt", "not a document")
	writeFile(t, f.dir, "docs/nested/deep.RDL", "(x 3, y 4)")

	stdout, _, err := execute(t, "", "check", "--no-history", "--schema-file", f.schema, filepath.Join(f.dir, "docs"))
	wantExit(t, err, cli.ExitInvalid)
	if !strings.Contains(stdout, "3 checked, 1 invalid") {
		t.Errorf("expected three documents:\n%s", stdout)
	}
	if strings.Contains(stdout, "hidden") || strings.Contains(stdout, "notes.txt") {
		t.Errorf("hidden and non-document files should be skipped:\n%s", stdout)
	}
}

func TestCheckCommand_JSON(t *testing.T) {
	f := newCheckFixture(t)

	stdout, _, err := execute(t, "", "check", "--no-history", "--format", "json", "--schema-file", f.schema, f.bad, f.good)
	wantExit(t, err, cli.ExitInvalid)

	var rep struct {
		Results []struct {
			Document string `json:"document"`
			Valid    bool   `json:"valid"`
			Value    any    `json:"value"`
			Error    *struct {
				Kind string `json:"kind"`
				Path string `json:"path"`
			} `json:"error"`
		} `json:"results"`
		Checked int `json:"checked"`
		Invalid int `json:"invalid"`
	}
	if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if rep.Checked != 2 || rep.Invalid != 1 || len(rep.Results) != 2 {
		t.Fatalf("report = %+v", rep)
	}

	bad, good := rep.Results[0], rep.Results[1]
	if bad.Valid || bad.Error == nil || bad.Error.Kind != "type_mismatch" || bad.Error.Path != "$.y" {
		t.Errorf("bad result = %+v", bad)
	}
	if !good.Valid || good.Error != nil || good.Value == nil {
		t.Errorf("good result = %+v", good)
	}
}

func TestCheckCommand_CSV(t *testing.T) {
	f := newCheckFixture(t)

	stdout, _, err := execute(t, "", "check", "--no-history", "--format", "csv", "--schema-file", f.schema, f.good)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got:\n%s", stdout)
	}
	if lines[0] != "document,schema,valid,error_kind,line,column,path,message" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], f.good+",point,true,") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestCheckCommand_Stdin(t *testing.T) {
	f := newCheckFixture(t)

	stdout, _, err := execute(t, "(x 5, y 6)", "check", "--no-history", "--schema-file", f.schema, "-")
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(stdout, "ok    <stdin> (point)") {
		t.Errorf("output = %s", stdout)
	}
}

func TestCheckCommand_ConfiguredSchema(t *testing.T) {
	f := newCheckFixture(t)
	cfg := writeConfig(t, f.dir, `
schemas:
  point: `+f.schema+`
documents:
  bindings:
    - pattern: "good.rdl"
      schema: point
`)

	stdout, _, err := execute(t, "", "check", "--config", cfg, "--no-history", f.good)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(stdout, "(point)") {
		t.Errorf("binding should select the point schema:\n%s", stdout)
	}

	stdout, _, err = execute(t, "", "check", "--config", cfg, "--no-history", "--schema", "point", f.bad)
	wantExit(t, err, cli.ExitInvalid)
	if !strings.Contains(stdout, "$.y") {
		t.Errorf("output = %s", stdout)
	}
}

func TestCheckCommand_Errors(t *testing.T) {
	f := newCheckFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no documents", []string{"check", "--no-history"}},
		{"both schema flags", []string{"check", "--no-history", "--schema", "a", "--schema-file", f.schema, f.good}},
		{"unknown format", []string{"check", "--no-history", "--format", "xml", f.good}},
		{"unknown schema", []string{"check", "--no-history", "--schema", "nope", f.good}},
		{"broken schema file", []string{"check", "--no-history", "--schema-file", f.bad, f.good}},
		{"git without repository", []string{"check", "--no-history", "--git"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			wantExit(t, err, cli.ExitFailure)
		})
	}
}
