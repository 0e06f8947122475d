package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/rdl/pkg/checker"
	"mercator-hq/rdl/pkg/cli"
	"mercator-hq/rdl/pkg/source/watch"
)

var watchFlags struct {
	schema    string
	noHistory bool
}

var watchCmd = &cobra.Command{
	Use:   "watch [PATH]...",
	Short: "Re-check documents whenever they change",
	Long: `Check every document under the given paths (or watch.paths from the
config), then keep running and re-check each document that is written.

Schema files listed in the config are watched too. When one changes the
schemas are reloaded and every document is checked again. A schema that
fails to compile leaves the previous set in place.

Examples:
  # Watch a directory with schemas from the config
  rdl watch --config rdl.yaml docs/

  # Validate everything against one schema
  rdl watch --config rdl.yaml --schema quote quotes/`,
	RunE: watchDocuments,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.schema, "schema", "s", "", "registered schema to validate against")
	watchCmd.Flags().BoolVar(&watchFlags.noHistory, "no-history", false, "do not record checks in the history store")
}

func watchDocuments(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Watch.Paths = args
	}
	if len(cfg.Watch.Paths) == 0 {
		return usageError("no paths to watch (pass them as arguments or set watch.paths)")
	}

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()

	a, err := newApp(cfg, appOptions{history: !watchFlags.noHistory, logs: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	docs, err := watch.New(watch.FromConfig(cfg.Watch), a.tel.Logger.Slog(), a.tel.Metrics)
	if err != nil {
		return &cli.ExitError{Code: cli.ExitFailure, Err: err}
	}
	defer docs.Stop()

	s := &watchSession{checker: a.checker, docs: docs, out: cmd.OutOrStdout(), schema: watchFlags.schema}
	if err := s.checkAll(ctx); err != nil {
		return &cli.ExitError{Code: cli.ExitFailure, Err: err}
	}

	var wg sync.WaitGroup
	if len(cfg.Schemas) > 0 {
		schemas, err := watch.New(schemaWatchConfig(cfg.Schemas, cfg.Watch.Debounce), a.tel.Logger.Slog(), a.tel.Metrics)
		if err != nil {
			return &cli.ExitError{Code: cli.ExitFailure, Err: err}
		}
		defer schemas.Stop()

		wg.Go(func() {
			err := schemas.Watch(ctx, func(ctx context.Context, _ []watch.Change) {
				if err := a.checker.ReloadSchemas(cfg.Schemas); err != nil {
					s.printf("schema reload failed: %v\n", err)
					return
				}
				if err := s.checkAll(ctx); err != nil {
					s.printf("recheck failed: %v\n", err)
				}
			})
			if err != nil {
				a.tel.Logger.Error("schema watch stopped", "error", err)
			}
		})
	}

	err = docs.Watch(ctx, s.onChange)
	cancel()
	wg.Wait()
	if err != nil {
		return &cli.ExitError{Code: cli.ExitFailure, Err: err}
	}
	return nil
}

// schemaWatchConfig follows the configured schema files.
func schemaWatchConfig(files map[string]string, debounce time.Duration) *watch.Config {
	paths := slices.Sorted(maps.Values(files))
	var exts []string
	for _, p := range paths {
		if ext := strings.ToLower(filepath.Ext(p)); ext != "" && !slices.Contains(exts, ext) {
			exts = append(exts, ext)
		}
	}
	return &watch.Config{Paths: paths, Extensions: exts, Debounce: debounce, SkipHidden: true}
}

type watchSession struct {
	checker *checker.Checker
	docs    *watch.Watcher
	schema  string

	mu  sync.Mutex
	out io.Writer
}

func (s *watchSession) checkAll(ctx context.Context) error {
	files, err := s.docs.Files()
	if err != nil {
		return err
	}
	return s.check(ctx, files)
}

func (s *watchSession) onChange(ctx context.Context, changes []watch.Change) {
	var files []string
	for _, c := range changes {
		if c.Removed {
			s.printf("gone  %s\n", c.Path)
			continue
		}
		files = append(files, c.Path)
	}
	if err := s.check(ctx, files); err != nil {
		s.printf("check failed: %v\n", err)
	}
}

func (s *watchSession) check(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	reqs := make([]checker.Request, len(files))
	for i, f := range files {
		reqs[i] = checker.Request{Document: f, Schema: s.schema, Source: checker.SourceWatch}
	}
	results, err := s.checker.CheckAll(ctx, reqs, 4)
	if err != nil {
		return err
	}
	s.printf("%s\n", newCheckReport(results))
	return nil
}

func (s *watchSession) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
