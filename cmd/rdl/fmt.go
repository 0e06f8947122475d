package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/rdl/pkg/cli"
	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/rdl/lexer"
	"mercator-hq/rdl/pkg/rdl/parser"
	"mercator-hq/rdl/pkg/rdl/value"
)

var fmtFlags struct {
	indent        int
	json          bool
	write         bool
	stripComments bool
}

var fmtCmd = &cobra.Command{
	Use:   "fmt FILE...",
	Short: "Print documents in canonical form",
	Long: `Parse RDL documents and print them in canonical form.

Canonical form puts every value on one line with ", " between items and
one space between a field name and its value. With --indent each list
item and object field goes on its own line instead.

Use "-" to read a document from standard input.

Comments are not part of a document's value, so the output never contains
them. --write refuses files that have comments unless --strip-comments is
given.

Examples:
  # Canonical one-line form
  rdl fmt quote.rdl

  # Indented, two spaces per level
  rdl fmt --indent 2 quote.rdl

  # Rewrite files in place
  rdl fmt -w docs/*.rdl

  # Convert to JSON
  rdl fmt --json quote.rdl`,
	Args: cobra.MinimumNArgs(1),
	RunE: formatDocuments,
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().IntVar(&fmtFlags.indent, "indent", 0, "spaces per nesting level (0 for one line)")
	fmtCmd.Flags().BoolVar(&fmtFlags.json, "json", false, "print JSON instead of RDL")
	fmtCmd.Flags().BoolVarP(&fmtFlags.write, "write", "w", false, "write the result back to each file")
	fmtCmd.Flags().BoolVar(&fmtFlags.stripComments, "strip-comments", false, "allow --write to drop comments")
}

func formatDocuments(cmd *cobra.Command, args []string) error {
	if fmtFlags.indent < 0 {
		return usageError("--indent must not be negative")
	}
	if fmtFlags.write && fmtFlags.json {
		return usageError("--write cannot be combined with --json")
	}
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	if fmtFlags.write {
		for _, path := range args {
			if path == "-" {
				return usageError("--write needs a file, not standard input")
			}
			if fmtFlags.stripComments {
				continue
			}
			// Unreadable files are reported by the formatting pass.
			if hasComments(path) {
				return usageError("%s has comments that --write would remove; pass --strip-comments to rewrite it anyway", path)
			}
		}
	}

	invalid := 0
	for _, path := range args {
		out, err := formatOne(cmd.InOrStdin(), path, cfg.Parser)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			invalid++
			continue
		}
		if fmtFlags.write {
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				return cli.NewCommandError("fmt", err)
			}
			continue
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	}
	if invalid > 0 {
		return &cli.ExitError{Code: cli.ExitInvalid}
	}
	return nil
}

func formatOne(stdin io.Reader, path string, pc config.ParserConfig) (string, error) {
	p := documentParser(pc)

	var (
		v   value.Value
		err error
	)
	if path == "-" {
		var data []byte
		if data, err = io.ReadAll(stdin); err != nil {
			return "", err
		}
		v, err = p.ParseNamed("<stdin>", string(data))
	} else {
		v, err = p.ParseFile(path)
	}
	if err != nil {
		return "", err
	}

	if fmtFlags.json {
		indent := strings.Repeat(" ", fmtFlags.indent)
		var b []byte
		if indent == "" {
			b, err = json.Marshal(v)
		} else {
			b, err = json.MarshalIndent(v, "", indent)
		}
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	}

	s, err := value.Indent(v, strings.Repeat(" ", fmtFlags.indent))
	if err != nil {
		return "", err
	}
	return s + "\n", nil
}

// hasComments reports whether the file at path contains a comment token.
func hasComments(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	for tok := range lexer.Tokens(string(data)) {
		if tok.Kind == lexer.Comment {
			return true
		}
	}
	return false
}

func documentParser(pc config.ParserConfig) *parser.Parser {
	p := parser.NewParser()
	if pc.MaxDepth > 0 {
		p.WithMaxDepth(pc.MaxDepth)
	}
	if pc.MaxSize > 0 {
		p.WithMaxSize(pc.MaxSize)
	}
	if pc.ContextLines != nil {
		p.WithContextLines(*pc.ContextLines)
	}
	return p
}
