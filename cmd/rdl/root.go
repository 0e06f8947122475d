package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/rdl/pkg/cli"
	"mercator-hq/rdl/pkg/config"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "rdl",
	Short: "Parse, format and validate RDL documents",
	Long: `rdl works with documents written in RDL, a small data-literal language,
and validates them against schemas written in the RDL schema notation.

Documents:
  (symbol "ACME", prices [101.5, 99.25], listed True, note None)

Schemas:
  (symbol {String, AllUppercase}, prices [Number], listed Boolean, note Default(None))

Configuration is read from --config (YAML). Every setting can be
overridden with an RDL_SECTION_FIELD environment variable.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (log level debug)")
}

// loadConfig reads the configuration and applies flag overrides. quiet
// raises the default info level to warn for one-shot commands whose
// output is the result itself.
func loadConfig(quiet bool) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitFailure, Err: cli.NewConfigError("", err.Error())}
	}

	switch {
	case verbose:
		cfg.Telemetry.Logging.Level = "debug"
	case logLevel != "":
		cfg.Telemetry.Logging.Level = logLevel
	case quiet && cfg.Telemetry.Logging.Level == config.DefaultLoggingLevel:
		cfg.Telemetry.Logging.Level = "warn"
	}

	config.SetConfig(cfg)
	return cfg, nil
}

// usageError marks bad arguments.
func usageError(format string, args ...any) error {
	return &cli.ExitError{Code: cli.ExitFailure, Err: fmt.Errorf(format, args...)}
}
