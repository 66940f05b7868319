// ════════════════════════════════════════════════════════════════════════════════════════════════
// Sequence Lock Torn-Read Stress - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Stress CLI
//
// Description:
//   One writer publishes invariant-carrying payloads while many readers load and check every
//   snapshot. Exits non-zero if any reader observed a torn value.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seqlock/cmd/internal/exitcode"
	"seqlock/constants"
	"seqlock/debug"
	"seqlock/report"
	"seqlock/results"
	"seqlock/stress"
)

func newRootCommand() *cobra.Command {
	cfg := stress.DefaultConfig()
	var payload, db string

	cmd := &cobra.Command{
		Use:   "seqstress",
		Short: "Hammer a Seqlock with one writer and many readers, checking every snapshot",
		Long: `Publish a sequence of invariant-carrying values from one writer while readers
load continuously. A snapshot that breaks its invariant mixes two stores.

Payloads:
  triple  {x, x+100, 2x+100}, three words
  digest  a 224-byte body with its SHA3-256 digest, several cache lines

Example:
  seqstress
  seqstress --writes 1000000 --readers 16 --payload digest
  seqstress --db runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Payload = stress.Payload(payload)
			if err := cfg.Validate(); err != nil {
				return exitcode.Command("invalid configuration", err)
			}

			var store *results.Store
			if db != "" {
				var err error
				if store, err = results.Open(db); err != nil {
					return exitcode.Command("open history", err)
				}
				defer store.Close()
			}

			res, runErr := stress.Run(cmd.Context(), cfg)

			if err := writeSummary(cmd.OutOrStdout(), cfg, res); err != nil {
				return exitcode.Fail("write summary", err)
			}

			if store != nil && runErr == nil {
				r, err := stressReport(res)
				if err != nil {
					return exitcode.Fail("summarize run", err)
				}
				if err := store.Record(cmd.Context(), r); err != nil {
					return exitcode.Fail("record run", err)
				}
			}
			return runErr
		},
	}

	f := cmd.Flags()
	f.Uint64Var(&cfg.Writes, "writes", cfg.Writes, "number of stores published by the writer")
	f.IntVar(&cfg.Readers, "readers", cfg.Readers, "number of concurrent readers")
	f.StringVar(&payload, "payload", string(cfg.Payload), "payload type (triple|digest)")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log the run summary to stderr")
	f.StringVar(&db, "db", "", "SQLite run history (empty: do not record)")
	return cmd
}

func writeSummary(w io.Writer, cfg stress.Config, res stress.Result) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "payload: %s  writes: %d  readers: %d\n", cfg.Payload, res.Writes, cfg.Readers); err != nil {
		return err
	}
	if _, err := p.Fprintf(w, "loads: %d  torn: %d\n", res.Loads, res.Violations); err != nil {
		return err
	}
	return nil
}

// stressReport records a clean run as a single trial of aggregate reader
// throughput; Iterations holds the number of stores.
func stressReport(res stress.Result) (*report.Report, error) {
	r := &report.Report{
		RunID:      report.NewRunID(),
		Kind:       report.KindStress,
		Started:    time.Now().Add(-res.Elapsed).UTC(),
		Iterations: res.Writes,
		ReaderCPU:  constants.NoCPU,
		WriterCPU:  constants.NoCPU,
		Trials:     []uint64{report.OpsPerMilli(res.Loads, res.Elapsed)},
	}
	if err := r.Summarize(); err != nil {
		return nil, err
	}
	return r, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		debug.DropError("SEQSTRESS", err)
		os.Exit(exitcode.Code(err))
	}
}
