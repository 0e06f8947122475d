package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/rdl/pkg/checker"
	"mercator-hq/rdl/pkg/cli"
	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/server"
	"mercator-hq/rdl/pkg/source/git"
	"mercator-hq/rdl/pkg/source/watch"
)

var checkFlags struct {
	schema     string
	schemaFile string
	git        bool
	format     string
	workers    int
	progress   bool
	noHistory  bool
}

var checkCmd = &cobra.Command{
	Use:   "check [FILE|DIR]...",
	Short: "Validate documents against schemas",
	Long: `Parse documents and validate them against their schemas.

The schema for each document is, in order of precedence: --schema or
--schema-file, the first matching documents.bindings entry in the config,
then documents.default_schema. Documents without a schema are only parsed.

Directories are searched recursively for files with one of the
watch.extensions (default .rdl). Use "-" to read standard input.

Exit status is 1 if any document is invalid.

Examples:
  # Check against a schema registered in the config
  rdl check --config rdl.yaml --schema quote quotes/

  # Check against a schema file
  rdl check --schema-file quote.schema aapl.rdl msft.rdl

  # Check every document in the configured Git repository
  rdl check --config rdl.yaml --git

  # Machine-readable output
  rdl check --format json quotes/`,
	RunE: checkDocuments,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.schema, "schema", "s", "", "registered schema to validate against")
	checkCmd.Flags().StringVarP(&checkFlags.schemaFile, "schema-file", "f", "", "schema file to validate against")
	checkCmd.Flags().BoolVar(&checkFlags.git, "git", false, "check the documents of the configured Git repository")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json, csv")
	checkCmd.Flags().IntVarP(&checkFlags.workers, "workers", "j", 4, "documents checked in parallel")
	checkCmd.Flags().BoolVar(&checkFlags.progress, "progress", false, "show a progress bar on stderr")
	checkCmd.Flags().BoolVar(&checkFlags.noHistory, "no-history", false, "do not record checks in the history store")
}

func checkDocuments(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(checkFlags.format)
	if err != nil {
		return usageError("%v", err)
	}
	if checkFlags.schema != "" && checkFlags.schemaFile != "" {
		return usageError("--schema and --schema-file are mutually exclusive")
	}
	if checkFlags.git && len(args) > 0 {
		return usageError("--git takes no file arguments")
	}
	if !checkFlags.git && len(args) == 0 {
		return usageError("no documents given")
	}

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	opts := appOptions{history: !checkFlags.noHistory, logs: cmd.ErrOrStderr()}
	schema := checkFlags.schema
	if checkFlags.schemaFile != "" {
		schema = schemaName(checkFlags.schemaFile)
		opts.schemaFiles = map[string]string{schema: checkFlags.schemaFile}
	}

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()

	a, err := newApp(cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	var reqs []checker.Request
	if checkFlags.git {
		reqs, err = gitRequests(ctx, cfg, a)
	} else {
		reqs, err = fileRequests(cmd.InOrStdin(), args, cfg, a)
	}
	if err != nil {
		return &cli.ExitError{Code: cli.ExitFailure, Err: err}
	}
	for i := range reqs {
		reqs[i].Schema = schema
	}

	results, err := runChecks(ctx, a.checker, reqs, cmd.ErrOrStderr())
	if err != nil {
		return &cli.ExitError{Code: cli.ExitFailure, Err: err}
	}

	rep := newCheckReport(results)
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), rep); err != nil {
		return cli.NewCommandError("check", err)
	}
	if rep.Invalid > 0 {
		return &cli.ExitError{Code: cli.ExitInvalid}
	}
	return nil
}

// fileRequests expands directories and reads "-" from stdin.
func fileRequests(stdin io.Reader, args []string, cfg *config.Config, a *app) ([]checker.Request, error) {
	var reqs []checker.Request
	var dirs []string
	for _, arg := range args {
		if arg == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read standard input: %w", err)
			}
			reqs = append(reqs, checker.Request{Document: "<stdin>", Content: data, Source: checker.SourceCLI})
			continue
		}
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			dirs = append(dirs, arg)
			continue
		}
		// Missing files are reported as io errors by the checker.
		reqs = append(reqs, checker.Request{Document: arg, Source: checker.SourceCLI})
	}

	if len(dirs) > 0 {
		wcfg := watch.FromConfig(cfg.Watch)
		wcfg.Paths = dirs
		w, err := watch.New(wcfg, a.tel.Logger.Slog(), a.tel.Metrics)
		if err != nil {
			return nil, err
		}
		files, err := w.Files()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			reqs = append(reqs, checker.Request{Document: f, Source: checker.SourceCLI})
		}
	}
	return reqs, nil
}

func gitRequests(ctx context.Context, cfg *config.Config, a *app) ([]checker.Request, error) {
	if cfg.Git.Repository == "" {
		return nil, cli.NewConfigError("git.repository", "must be set for --git")
	}
	repo, err := git.NewRepository(cfg.Git, cfg.Watch.Extensions, a.tel.Metrics)
	if err != nil {
		return nil, err
	}
	if err := repo.Clone(ctx); err != nil {
		return nil, err
	}
	files, err := repo.Documents()
	if err != nil {
		return nil, err
	}
	reqs := make([]checker.Request, len(files))
	for i, f := range files {
		reqs[i] = checker.Request{Document: f, Source: checker.SourceGit}
	}
	return reqs, nil
}

// runChecks checks reqs in batches so the progress bar can advance.
func runChecks(ctx context.Context, c *checker.Checker, reqs []checker.Request, stderr io.Writer) ([]*checker.Result, error) {
	workers := max(checkFlags.workers, 1)
	if !checkFlags.progress {
		return c.CheckAll(ctx, reqs, workers)
	}

	progress := cli.NewProgressReporter(stderr)
	progress.Start(int64(len(reqs)))
	defer progress.Finish()

	results := make([]*checker.Result, 0, len(reqs))
	batch := workers * 4
	for start := 0; start < len(reqs); start += batch {
		end := min(start+batch, len(reqs))
		part, err := c.CheckAll(ctx, reqs[start:end], workers)
		if err != nil {
			progress.Error(err)
			return nil, err
		}
		results = append(results, part...)
		progress.Update(int64(end))
	}
	return results, nil
}

// checkReport is the output of check in every format.
type checkReport struct {
	Results []*server.CheckResponse `json:"results"`
	Checked int                     `json:"checked"`
	Invalid int                     `json:"invalid"`

	errs []string
}

func newCheckReport(results []*checker.Result) *checkReport {
	rep := &checkReport{Results: make([]*server.CheckResponse, 0, len(results))}
	for _, res := range results {
		rep.Results = append(rep.Results, server.NewCheckResponse(res))
		rep.errs = append(rep.errs, errorText(res))
		if !res.Valid {
			rep.Invalid++
		}
	}
	rep.Checked = len(results)
	return rep
}

func errorText(res *checker.Result) string {
	switch {
	case res.ParseError != nil:
		return res.ParseError.Error()
	case res.ValidationError != nil:
		return fmt.Sprintf("%s: %v", res.Document, res.ValidationError)
	}
	return ""
}

func (r *checkReport) String() string {
	var sb strings.Builder
	for i, res := range r.Results {
		if res.Valid {
			fmt.Fprintf(&sb, "ok    %s", res.Document)
			if res.Schema != "" {
				fmt.Fprintf(&sb, " (%s)", res.Schema)
			}
			sb.WriteByte('\n')
			continue
		}
		fmt.Fprintf(&sb, "FAIL  %s\n", res.Document)
		for line := range strings.Lines(r.errs[i]) {
			sb.WriteString("      " + line)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%d checked, %d invalid", r.Checked, r.Invalid)
	return sb.String()
}

func (r *checkReport) Header() []string {
	return []string{"document", "schema", "valid", "error_kind", "line", "column", "path", "message"}
}

func (r *checkReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		row := []string{res.Document, res.Schema, strconv.FormatBool(res.Valid), "", "", "", "", ""}
		if e := res.Error; e != nil {
			row[3] = e.Kind
			if e.Line > 0 {
				row[4] = strconv.Itoa(e.Line)
				row[5] = strconv.Itoa(e.Column)
			}
			row[6] = e.Path
			row[7] = e.Message
		}
		rows = append(rows, row)
	}
	return rows
}
