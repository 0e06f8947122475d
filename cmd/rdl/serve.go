package main

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"mercator-hq/rdl/pkg/checker"
	"mercator-hq/rdl/pkg/cli"
	"mercator-hq/rdl/pkg/history/retention"
	"mercator-hq/rdl/pkg/server"
	"mercator-hq/rdl/pkg/source/git"
	"mercator-hq/rdl/pkg/source/watch"
	"mercator-hq/rdl/pkg/telemetry/health"
)

var serveFlags struct {
	listen string
	watch  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  POST /v1/parse             parse the request body
  POST /v1/check/{schema}    parse and validate the request body
  GET  /v1/schemas           list registered schemas
  GET  /v1/history           query recorded checks (history enabled)
  GET  /health, /ready       liveness and readiness
  GET  /version              build information
  GET  /metrics              Prometheus metrics

With git.enabled the configured repository is cloned, its documents are
checked, and new commits are checked as they are pulled. With --watch
the watch.paths are followed as well. Every check is recorded in the
history store when history is enabled, and old records are pruned on
history.retention.prune_schedule.

The server stops gracefully on SIGINT or SIGTERM.

Examples:
  rdl serve --config rdl.yaml
  rdl serve --listen 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listen, "listen", "l", "", "listen address (overrides server.listen_address)")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "also re-check documents under watch.paths when they change")
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if serveFlags.listen != "" {
		cfg.Server.ListenAddress = serveFlags.listen
	}

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()

	a, err := newApp(cfg, appOptions{history: true, logs: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))
	logger := a.tel.Logger.Slog()

	hc := health.New(0)
	hc.RegisterCheck("schemas", a.checker.HealthCheck(len(cfg.Schemas)))
	if a.store != nil {
		hc.RegisterCheck("history", a.store.Ping)

		pruner := retention.NewPruner(a.store, &cfg.History.Retention, a.tel.Metrics)
		if err := pruner.Start(ctx); err != nil {
			return &cli.ExitError{Code: cli.ExitFailure, Err: err}
		}
		defer pruner.Stop()
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	if cfg.Git.Enabled {
		poller, err := startGit(ctx, a)
		if err != nil {
			return &cli.ExitError{Code: cli.ExitFailure, Err: err}
		}
		if poller != nil {
			defer poller.Stop()
		}
	}

	if serveFlags.watch {
		if len(cfg.Watch.Paths) == 0 {
			return usageError("--watch needs watch.paths in the config")
		}
		w, err := watch.New(watch.FromConfig(cfg.Watch), logger, a.tel.Metrics)
		if err != nil {
			return &cli.ExitError{Code: cli.ExitFailure, Err: err}
		}
		defer w.Stop()
		wg.Go(func() {
			if err := w.Watch(ctx, func(ctx context.Context, changes []watch.Change) {
				var files []string
				for _, c := range changes {
					if !c.Removed {
						files = append(files, c.Path)
					}
				}
				checkInBackground(ctx, a, files, checker.SourceWatch)
			}); err != nil {
				logger.Error("watch stopped", "error", err)
			}
		})
	}

	srv := server.New(server.Options{
		Config:       cfg.Server,
		Checker:      a.checker,
		Health:       hc,
		Metrics:      a.tel.Metrics,
		MetricsPath:  cfg.Telemetry.Metrics.Path,
		Tracer:       a.tel.Tracer,
		Logger:       logger,
		History:      a.store,
		HistoryQuery: cfg.History.Query,
		Version:      Version,
		Commit:       GitCommit,
		BuildTime:    BuildDate,
	})

	err = srv.Start(ctx)
	cancel()
	if err != nil {
		return &cli.ExitError{Code: cli.ExitFailure, Err: err}
	}
	return nil
}

// startGit clones the repository, checks its documents and starts
// polling when an interval is configured.
func startGit(ctx context.Context, a *app) (*git.Poller, error) {
	cfg := a.cfg
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
	checkInBackground(ctx, a, files, checker.SourceGit)

	if cfg.Git.Poll.Interval <= 0 {
		return nil, nil
	}
	poller := git.NewPoller(repo, cfg.Git.Poll.Interval, func(ctx context.Context, commit *git.Commit, changed, removed []string) {
		a.tel.Logger.Info("new commit",
			"commit", commit.Short(),
			"changed", len(changed),
			"removed", len(removed),
		)
		checkInBackground(ctx, a, changed, checker.SourceGit)
	}, a.tel.Logger.Slog())
	if err := poller.Start(ctx); err != nil {
		return nil, err
	}
	return poller, nil
}

// checkInBackground checks files for the history and metrics they
// produce; results are not printed.
func checkInBackground(ctx context.Context, a *app, files []string, source string) {
	if len(files) == 0 {
		return
	}
	reqs := make([]checker.Request, len(files))
	for i, f := range files {
		reqs[i] = checker.Request{Document: f, Source: source}
	}
	results, err := a.checker.CheckAll(ctx, reqs, 4)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.tel.Logger.Warn("background check failed", "error", err)
	}
	invalid := 0
	for _, res := range results {
		if res != nil && !res.Valid {
			invalid++
		}
	}
	a.tel.Logger.Info("documents checked", "source", source, "checked", len(files), "invalid", invalid)
}
