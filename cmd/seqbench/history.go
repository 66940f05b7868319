package main

import (
	"github.com/spf13/cobra"

	"seqlock/cmd/internal/exitcode"
	"seqlock/results"
)

const defaultHistoryLimit = 10

func newHistoryCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs recorded with --db",
		Long: `Print the most recent benchmark runs from the SQLite history, newest first.

Example:
  seqbench history --db runs.db --limit 5
  seqbench history --db runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", defaultHistoryLimit, "maximum number of runs to list")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *options) error {
	if opts.db == "" {
		return exitcode.Command("history requires --db", nil)
	}
	if opts.limit <= 0 {
		return exitcode.Command("--limit must be positive", nil)
	}

	store, err := results.Open(opts.db)
	if err != nil {
		return exitcode.Command("open history", err)
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), opts.limit)
	if err != nil {
		return exitcode.Fail("read history", err)
	}

	for i, r := range runs {
		if i > 0 && opts.format == "text" {
			if _, err := cmd.OutOrStdout().Write([]byte("\n")); err != nil {
				return err
			}
		}
		if err := render(cmd, opts.format, r); err != nil {
			return err
		}
	}
	return nil
}
