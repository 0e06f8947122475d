/*
Package cli holds the helpers shared by the rdl commands.

Exit codes:

	0  every document is valid
	1  at least one document failed to parse or validate
	2  usage, configuration or I/O error

A command returns an *ExitError (or any error, which maps to 2) and main
calls ExitCode to pick the process status.

Output formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, results); err != nil {
		return err
	}

Text output goes through fmt's %v, so types meant for the terminal
implement String. CSV output needs a value implementing Table.

Progress for long batches is written to stderr:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(files)))
	...
	progress.Finish()

Graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
