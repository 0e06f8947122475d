package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/rdl/pkg/cli"
	"mercator-hq/rdl/pkg/server"
)

var schemasFlags struct {
	format string
}

var schemasCmd = &cobra.Command{
	Use:   "schemas [SCHEMA_FILE]...",
	Short: "List the configured schemas",
	Long: `Compile the schemas named in the config, plus any schema files given as
arguments, and print each one in canonical schema notation.

A schema that fails to compile is reported with its location and the
exit status is 2.

Examples:
  rdl schemas --config rdl.yaml
  rdl schemas quote.schema`,
	RunE: listSchemas,
}

func init() {
	rootCmd.AddCommand(schemasCmd)

	schemasCmd.Flags().StringVar(&schemasFlags.format, "format", "text", "output format: text, json, csv")
}

type schemaList server.SchemasResponse

func (l schemaList) String() string {
	if len(l.Schemas) == 0 {
		return "no schemas"
	}
	var sb strings.Builder
	for i, s := range l.Schemas {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s", s.Name)
		if s.Path != "" {
			fmt.Fprintf(&sb, " (%s)", s.Path)
		}
		fmt.Fprintf(&sb, "\n  %s", s.Rule)
	}
	return sb.String()
}

func (schemaList) Header() []string {
	return []string{"name", "path", "hash", "rule"}
}

func (l schemaList) Rows() [][]string {
	rows := make([][]string, len(l.Schemas))
	for i, s := range l.Schemas {
		rows[i] = []string{s.Name, s.Path, s.Hash, s.Rule}
	}
	return rows
}

func listSchemas(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(schemasFlags.format)
	if err != nil {
		return usageError("%v", err)
	}
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	opts := appOptions{logs: cmd.ErrOrStderr()}
	if len(args) > 0 {
		opts.schemaFiles = make(map[string]string, len(args))
		for _, path := range args {
			opts.schemaFiles[schemaName(path)] = path
		}
	}
	a, err := newApp(cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	list := schemaList(server.ListSchemas(a.registry))
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), list)
}
