package main

import (
	"os"
	"strings"
	"testing"

	"mercator-hq/rdl/pkg/cli"
)

func TestFmtCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "quote.rdl", "# quote\n(a \"x\",\n b [1,2_000, -3.5], c None)\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"canonical", []string{"fmt", doc}, "(a \"x\", b [1, 2000, -3.5], c None)\n"},
		{"indent", []string{"fmt", "--indent", "2", doc}, "(\n  a \"x\",\n  b [\n    1,\n    2000,\n    -3.5,\n  ],\n  c None,\n)\n"},
		{"json", []string{"fmt", "--json", doc}, `{"a":"x","b":[1,2000,-3.5],"c":null}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tt.args...)
			if err != nil {
				t.Fatalf("fmt error = %v", err)
			}
			if stdout != tt.want {
				t.Errorf("fmt output =\n%q\nwant\n%q", stdout, tt.want)
			}
		})
	}
}

func TestFmtCommand_Stdin(t *testing.T) {
	stdout, _, err := execute(t, "[True,False]", "fmt", "-")
	if err != nil {
		t.Fatalf("fmt error = %v", err)
	}
	if stdout != "[True, False]\n" {
		t.Errorf("fmt output = %q", stdout)
	}
}

func TestFmtCommand_Write(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "a.rdl", "( n   1 )")

	stdout, _, err := execute(t, "", "fmt", "-w", doc)
	if err != nil {
		t.Fatalf("fmt -w error = %v", err)
	}
	if stdout != "" {
		t.Errorf("fmt -w printed %q", stdout)
	}
	data, err := os.ReadFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "(n 1)\n" {
		t.Errorf("rewritten file = %q", data)
	}
}

func TestFmtCommand_WriteKeepsCommentedFiles(t *testing.T) {
	dir := t.TempDir()
	plain := writeFile(t, dir, "plain.rdl", "( n   1 )")
	const src = "# closing price\n(n 1)\n"
	commented := writeFile(t, dir, "commented.rdl", src)

	_, _, err := execute(t, "", "fmt", "-w", plain, commented)
	wantExit(t, err, cli.ExitFailure)
	if !strings.Contains(err.Error(), "--strip-comments") {
		t.Errorf("error = %v, want a hint about --strip-comments", err)
	}
	for path, want := range map[string]string{plain: "( n   1 )", commented: src} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want {
			t.Errorf("%s was rewritten to %q", path, data)
		}
	}

	if _, _, err := execute(t, "", "fmt", "-w", "--strip-comments", commented); err != nil {
		t.Fatalf("fmt -w --strip-comments error = %v", err)
	}
	data, err := os.ReadFile(commented)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "(n 1)\n" {
		t.Errorf("rewritten file = %q", data)
	}
}

func TestFmtCommand_ParseError(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.rdl", "(a 1)")
	bad := writeFile(t, dir, "bad.rdl", "(a 1, a 2)")

	stdout, stderr, err := execute(t, "", "fmt", good, bad)
	wantExit(t, err, cli.ExitInvalid)
	if stdout != "(a 1)\n" {
		t.Errorf("stdout = %q, want the good document only", stdout)
	}
	if !strings.Contains(stderr, "bad.rdl") {
		t.Errorf("stderr should name the failing file:\n%s", stderr)
	}
}

func TestFmtCommand_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative indent", []string{"fmt", "--indent", "-1", "x.rdl"}},
		{"write with json", []string{"fmt", "-w", "--json", "x.rdl"}},
		{"write stdin", []string{"fmt", "-w", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			wantExit(t, err, cli.ExitFailure)
		})
	}
}
