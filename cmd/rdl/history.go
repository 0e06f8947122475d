package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/rdl/pkg/cli"
	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
	"mercator-hq/rdl/pkg/history/export"
	"mercator-hq/rdl/pkg/history/retention"
)

// historyFilter holds the query flags shared by history and history export.
type historyFilter struct {
	document  string
	schema    string
	source    string
	errorKind string
	valid     bool
	invalid   bool
	since     string
	until     string
	sortBy    string
	order     string
}

func (f *historyFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.document, "document", "", "filter by document path")
	cmd.Flags().StringVar(&f.schema, "schema", "", "filter by schema name")
	cmd.Flags().StringVar(&f.source, "source", "", "filter by source: cli, http, watch, git")
	cmd.Flags().StringVar(&f.errorKind, "error-kind", "", "filter by error kind: lexical, syntax, semantic, io, validation")
	cmd.Flags().BoolVar(&f.valid, "valid", false, "only valid documents")
	cmd.Flags().BoolVar(&f.invalid, "invalid", false, "only invalid documents")
	cmd.Flags().StringVar(&f.since, "since", "", "start time: RFC 3339 or a duration ago such as 24h")
	cmd.Flags().StringVar(&f.until, "until", "", "end time: RFC 3339 or a duration ago")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "sort by: checked_at, document, schema, duration")
	cmd.Flags().StringVar(&f.order, "order", "", "sort order: asc, desc")
}

func (f *historyFilter) query(now time.Time) (*history.Query, error) {
	if f.valid && f.invalid {
		return nil, fmt.Errorf("--valid and --invalid are mutually exclusive")
	}
	q := &history.Query{
		Document:  f.document,
		Schema:    f.schema,
		Source:    f.source,
		ErrorKind: f.errorKind,
		SortBy:    f.sortBy,
		SortOrder: f.order,
	}
	switch {
	case f.valid:
		q.Valid = history.Bool(true)
	case f.invalid:
		q.Valid = history.Bool(false)
	}
	var err error
	if q.StartTime, err = parseTimeFlag("since", f.since, now); err != nil {
		return nil, err
	}
	if q.EndTime, err = parseTimeFlag("until", f.until, now); err != nil {
		return nil, err
	}
	return q, nil
}

// parseTimeFlag accepts an RFC 3339 time or a duration before now.
func parseTimeFlag(name, s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return nil, fmt.Errorf("--%s must be an RFC 3339 time or a positive duration, got %q", name, s)
	}
	t := now.Add(-d)
	return &t, nil
}

var historyFlags struct {
	filter historyFilter
	limit  int
	offset int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query recorded checks",
	Long: `List checks recorded in the history store, newest first.

Examples:
  # Last 50 checks
  rdl history

  # Invalid documents in the last day
  rdl history --invalid --since 24h

  # Validation failures for one schema as JSON
  rdl history --schema quote --error-kind validation --format json`,
	Args: cobra.NoArgs,
	RunE: queryHistory,
}

var historyExportFlags struct {
	filter historyFilter
	format string
	output string
	pretty bool
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded checks as JSON or CSV",
	Long: `Write every record matching the filters to a file or standard output.

Examples:
  rdl history export --format csv --output checks.csv
  rdl history export --since 168h --invalid`,
	Args: cobra.NoArgs,
	RunE: exportHistory,
}

var historyPruneFlags struct {
	days       int
	maxRecords int64
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete records outside the retention policy",
	Long: `Apply history.retention now: delete records older than the retention
days, then the oldest records beyond max_records.

Examples:
  rdl history prune
  rdl history prune --days 7 --max-records 10000`,
	Args: cobra.NoArgs,
	RunE: pruneHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyFlags.filter.register(historyCmd)
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 0, "maximum records (default history.query.default_limit)")
	historyCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "records to skip")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json, csv")

	historyExportFlags.filter.register(historyExportCmd)
	historyExportCmd.Flags().StringVar(&historyExportFlags.format, "format", "json", "export format: json, csv")
	historyExportCmd.Flags().StringVarP(&historyExportFlags.output, "output", "o", "", "output file (default stdout)")
	historyExportCmd.Flags().BoolVar(&historyExportFlags.pretty, "pretty", false, "indent JSON output")

	historyPruneCmd.Flags().IntVar(&historyPruneFlags.days, "days", -1, "override history.retention.days")
	historyPruneCmd.Flags().Int64Var(&historyPruneFlags.maxRecords, "max-records", -1, "override history.retention.max_records")
}

// openHistory loads the config and opens the store. The caller closes
// the app.
func openHistory(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(true)
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, &cli.ExitError{Code: cli.ExitFailure, Err: cli.NewConfigError("history.enabled", "history is disabled")}
	}
	return newApp(cfg, appOptions{history: true, logs: cmd.ErrOrStderr()})
}

func queryHistory(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return usageError("%v", err)
	}
	q, err := historyFlags.filter.query(time.Now())
	if err != nil {
		return usageError("%v", err)
	}
	q.Limit = historyFlags.limit
	q.Offset = historyFlags.offset

	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer a.Close(context.WithoutCancel(ctx))

	q.ApplyDefaults(a.cfg.History.Query.DefaultLimit)
	if err := q.Validate(a.cfg.History.Query.MaxLimit); err != nil {
		return usageError("%v", err)
	}
	records, err := a.store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case cli.FormatText:
		return writeHistoryTable(out, records)
	default:
		exp, err := export.New(string(format), true)
		if err != nil {
			return usageError("%v", err)
		}
		return exp.Export(ctx, records, out)
	}
}

func writeHistoryTable(w io.Writer, records []*history.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCHECKED AT\tDOCUMENT\tSCHEMA\tSOURCE\tVALID\tERROR")
	for _, r := range records {
		errText := "-"
		if !r.Valid {
			errText = r.ErrorKind
			if r.ErrorPath != "" {
				errText += " at " + r.ErrorPath
			} else if r.Line > 0 {
				errText += fmt.Sprintf(" at %d:%d", r.Line, r.Column)
			}
			if r.ErrorMessage != "" {
				errText += ": " + firstLine(r.ErrorMessage)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			shortID(r.ID),
			r.CheckedAt.Local().Format(time.DateTime),
			r.Document,
			orDash(r.Schema),
			orDash(r.Source),
			r.Valid,
			errText,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d record(s)\n", len(records))
	return err
}

func exportHistory(cmd *cobra.Command, _ []string) error {
	exp, err := export.New(historyExportFlags.format, historyExportFlags.pretty)
	if err != nil {
		return usageError("%v", err)
	}
	q, err := historyExportFlags.filter.query(time.Now())
	if err != nil {
		return usageError("%v", err)
	}

	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer a.Close(context.WithoutCancel(ctx))

	records, err := queryAll(ctx, a.store, q, a.cfg.History.Query)
	if err != nil {
		return cli.NewCommandError("history export", err)
	}

	out := cmd.OutOrStdout()
	if historyExportFlags.output != "" {
		f, err := os.Create(historyExportFlags.output)
		if err != nil {
			return cli.NewCommandError("history export", err)
		}
		defer f.Close()
		out = f
	}
	if err := exp.Export(ctx, records, out); err != nil {
		return cli.NewCommandError("history export", err)
	}
	if historyExportFlags.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d record(s) to %s\n", len(records), historyExportFlags.output)
	}
	return nil
}

// queryAll pages through every record matching q.
func queryAll(ctx context.Context, store history.Storage, q *history.Query, qc config.QueryConfig) ([]*history.Record, error) {
	page := qc.MaxLimit
	if page <= 0 {
		page = config.DefaultQueryMaxLimit
	}
	q.Limit = page
	q.ApplyDefaults(page)
	if err := q.Validate(page); err != nil {
		return nil, err
	}

	var all []*history.Record
	for {
		records, err := store.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if len(records) < page {
			return all, nil
		}
		q.Offset += page
	}
}

func pruneHistory(cmd *cobra.Command, _ []string) error {
	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer a.Close(context.WithoutCancel(ctx))

	rc := a.cfg.History.Retention
	if historyPruneFlags.days >= 0 {
		rc.Days = historyPruneFlags.days
	}
	if historyPruneFlags.maxRecords >= 0 {
		rc.MaxRecords = historyPruneFlags.maxRecords
	}

	deleted, err := retention.NewPruner(a.store, &rc, a.tel.Metrics).Prune(ctx)
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d record(s)\n", deleted)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
