package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/rdl/pkg/cli"
	rdlerrors "mercator-hq/rdl/pkg/rdl/errors"
	"mercator-hq/rdl/pkg/rdl/lexer"
)

var tokensFlags struct {
	noComments bool
	format     string
}

var tokensCmd = &cobra.Command{
	Use:   "tokens FILE",
	Short: "Print the tokens of a document",
	Long: `Print the token stream the lexer produces for a document or schema,
one token per line with its byte offset, line and column.

The stream ends at the first invalid token; the exit status is then 1.

Examples:
  rdl tokens quote.rdl
  rdl tokens --no-comments quote.schema
  echo '(a [1, 2])' | rdl tokens -`,
	Args: cobra.ExactArgs(1),
	RunE: printTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().BoolVar(&tokensFlags.noComments, "no-comments", false, "leave out comment tokens")
	tokensCmd.Flags().StringVar(&tokensFlags.format, "format", "text", "output format: text, json, csv")
}

type tokenInfo struct {
	Kind   string `json:"kind"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

type tokenList []tokenInfo

func (l tokenList) String() string {
	var sb strings.Builder
	for i, t := range l {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%5d-%-5d %4d:%-3d %-14s %q", t.Start, t.End, t.Line, t.Column, t.Kind, t.Text)
	}
	return sb.String()
}

func (tokenList) Header() []string {
	return []string{"kind", "start", "end", "line", "column", "text"}
}

func (l tokenList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, t := range l {
		rows[i] = []string{
			t.Kind,
			strconv.Itoa(t.Start),
			strconv.Itoa(t.End),
			strconv.Itoa(t.Line),
			strconv.Itoa(t.Column),
			t.Text,
		}
	}
	return rows
}

func printTokens(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(tokensFlags.format)
	if err != nil {
		return usageError("%v", err)
	}

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return cli.NewCommandError("tokens", err)
	}
	src := string(data)

	seq := lexer.Tokens(src)
	if tokensFlags.noComments {
		seq = lexer.WithoutComments(seq)
	}

	list := tokenList{}
	invalid := false
	for tok := range seq {
		loc := rdlerrors.Locate(src, tok.Start)
		list = append(list, tokenInfo{
			Kind:   tok.Kind.String(),
			Start:  tok.Start,
			End:    tok.End,
			Line:   loc.Line,
			Column: loc.Column,
			Text:   tok.Text(src),
		})
		invalid = invalid || tok.Kind == lexer.Invalid
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), list); err != nil {
		return cli.NewCommandError("tokens", err)
	}
	if invalid {
		return &cli.ExitError{Code: cli.ExitInvalid}
	}
	return nil
}
