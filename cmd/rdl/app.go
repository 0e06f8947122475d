package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"mercator-hq/rdl/pkg/checker"
	"mercator-hq/rdl/pkg/cli"
	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
	"mercator-hq/rdl/pkg/history/recorder"
	"mercator-hq/rdl/pkg/history/storage"
	"mercator-hq/rdl/pkg/telemetry"
)

// app holds the components a command works with.
type app struct {
	cfg      *config.Config
	tel      *telemetry.Telemetry
	registry *checker.Registry
	checker  *checker.Checker
	store    history.Storage
	recorder *recorder.Recorder
}

type appOptions struct {
	// history opens the history store and records every check.
	history bool

	// schemaFiles are registered in addition to the configured schemas,
	// keyed by name.
	schemaFiles map[string]string

	logs io.Writer
}

func newApp(cfg *config.Config, opts appOptions) (*app, error) {
	tel, err := telemetry.Setup(cfg.Telemetry, opts.logs, Version)
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitFailure, Err: cli.NewConfigError("telemetry", err.Error())}
	}
	slog.SetDefault(tel.Logger.Slog())

	a := &app{cfg: cfg, tel: tel, registry: checker.NewRegistry()}

	if len(opts.schemaFiles) > 0 && cfg.Schemas == nil {
		cfg.Schemas = make(map[string]string, len(opts.schemaFiles))
	}
	maps.Copy(cfg.Schemas, opts.schemaFiles)
	if err := a.registry.Load(cfg.Schemas); err != nil {
		a.Close(context.Background())
		return nil, &cli.ExitError{Code: cli.ExitFailure, Err: fmt.Errorf("failed to load schemas: %w", err)}
	}

	if opts.history && cfg.History.Enabled {
		a.store, err = storage.New(&cfg.History)
		if err != nil {
			a.Close(context.Background())
			return nil, &cli.ExitError{Code: cli.ExitFailure, Err: fmt.Errorf("failed to open history: %w", err)}
		}
		a.recorder = recorder.New(a.store, recorder.FromConfig(&cfg.History), tel.Metrics)
	}

	a.checker = checker.New(a.registry, checker.Options{
		Parser:   cfg.Parser,
		Resolve:  cfg.SchemaFor,
		Logger:   tel.Logger,
		Metrics:  tel.Metrics,
		Tracer:   tel.Tracer,
		Recorder: a.recorder,
	})
	return a, nil
}

// Close drains the recorder, closes the store and flushes telemetry.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.recorder != nil {
		errs = append(errs, a.recorder.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	errs = append(errs, a.tel.Shutdown(ctx))
	return errors.Join(errs...)
}

// schemaName derives a registry name from a schema file path.
func schemaName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
