// Command rdl parses, formats and validates RDL documents.
//
// RDL is a small data-literal language: integers, floats, strings,
// booleans, None, lists and objects with snake_case field names.
// Schemas written in the companion schema notation describe the shape a
// document must have.
//
// Usage:
//
//	# Print a document in canonical form
//	rdl fmt quote.rdl
//
//	# Validate documents against a named schema from the config
//	rdl check --config rdl.yaml --schema quote quotes/*.rdl
//
//	# Validate against a schema file directly
//	rdl check --schema-file quote.schema quote.rdl
//
//	# Re-check documents whenever they change
//	rdl watch docs/
//
//	# Serve the HTTP API
//	rdl serve --listen :8080
//
//	# Inspect recorded checks
//	rdl history --invalid --since 24h
//
// Exit status is 0 when every document is valid, 1 when any document is
// invalid, and 2 on usage or configuration errors.
package main

import (
	"errors"
	"fmt"
	"os"

	"mercator-hq/rdl/pkg/cli"
)

func main() {
	err := Execute()
	if err != nil {
		var exit *cli.ExitError
		if !errors.As(err, &exit) || exit.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.ExitCode(err))
}
