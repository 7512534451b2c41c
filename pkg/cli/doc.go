/*
Package cli provides command-line interface utilities for pressgate.

The cli package includes output formatters, progress reporters, and common
helpers used by the pressgate command.

Output Formatting:

Command results can be rendered as text, JSON, or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, results); err != nil {
		return err
	}

CSV output works on tabular data ([][]string records); the JSON and text
formatters accept any value.

Progress Reporting:

For long-running operations such as warming the response cache from an
endpoint list, use the progress reporter:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(int64(len(endpoints)))
	for i, endpoint := range endpoints {
		// Fetch the endpoint
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
