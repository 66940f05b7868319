// ════════════════════════════════════════════════════════════════════════════════════════════════
// Sequence Lock Throughput Benchmark - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Benchmark CLI & Run Orchestration
//
// Description:
//   Measures reader throughput of a Seqlock while a single writer stores continuously, over a
//   series of trials, and prints the mean and median in operations per millisecond.
//
// Architecture:
//   - Phase 0: Resolve configuration (defaults → profile file → flags)
//   - Phase 1: Heap consolidation so collection does not land inside a trial
//   - Phase 2: Pinned trials with the collector optionally disabled
//   - Phase 3: Report rendering and optional history recording
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	rtdebug "runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"seqlock/bench"
	"seqlock/cmd/internal/exitcode"
	"seqlock/debug"
	"seqlock/report"
	"seqlock/results"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// COMMAND TREE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

var validFormats = []string{"text", "json"}

// options holds every flag of the root command and the history subcommand.
type options struct {
	bench.Config

	profile string
	format  string
	db      string
	noGC    bool
	limit   int
}

func newRootCommand() *cobra.Command {
	def := bench.DefaultConfig()
	opts := &options{Config: def}

	cmd := &cobra.Command{
		Use:   "seqbench",
		Short: "Measure Seqlock reader throughput against a continuous writer",
		Long: `Run a series of trials in which one pinned writer stores continuously while
one pinned reader loads the same number of times. Each trial reports reader
throughput in operations per millisecond; the run reports mean and median.

Configuration is resolved as defaults, then --profile, then explicit flags.

Example:
  seqbench --reader-cpu 2 --writer-cpu 3
  seqbench --profile bench.yaml --format json --db runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.format {
					return nil
				}
			}
			return exitcode.Command(fmt.Sprintf("invalid format %q: must be one of %v", opts.format, validFormats), nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.Uint64Var(&opts.Iterations, "iters", def.Iterations, "store/load operations per trial")
	f.IntVar(&opts.Trials, "trials", def.Trials, "number of trials (odd)")
	f.IntVar(&opts.ReaderCPU, "reader-cpu", def.ReaderCPU, "CPU for the reader thread (-1: unpinned)")
	f.IntVar(&opts.WriterCPU, "writer-cpu", def.WriterCPU, "CPU for the writer thread (-1: unpinned)")
	f.StringVar(&opts.profile, "profile", "", "YAML profile applied before explicit flags")
	f.BoolVar(&opts.noGC, "no-gc", false, "disable the garbage collector during trials")

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "log every trial")
	pf.StringVar(&opts.format, "format", "text", "output format (text|json)")
	pf.StringVar(&opts.db, "db", "", "SQLite run history (empty: do not record)")

	cmd.AddCommand(newHistoryCommand(opts))
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// BENCHMARK RUN
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func runBench(cmd *cobra.Command, opts *options) error {
	// PHASE 0: configuration
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return exitcode.Command("invalid configuration", err)
	}

	var store *results.Store
	if opts.db != "" {
		if store, err = results.Open(opts.db); err != nil {
			return exitcode.Command("open history", err)
		}
		defer store.Close()
	}

	// PHASE 1: heap consolidation
	runtime.GC()
	runtime.GC()
	rtdebug.FreeOSMemory()

	// PHASE 2: trials
	if opts.noGC {
		prev := rtdebug.SetGCPercent(-1)
		defer rtdebug.SetGCPercent(prev)
	}

	debug.DropMessage("BENCH", fmt.Sprintf("%d trials × %d iterations", cfg.Trials, cfg.Iterations))
	r, err := bench.Run(cmd.Context(), cfg)
	if err != nil {
		return exitcode.Fail("benchmark", err)
	}

	// PHASE 3: output
	if store != nil {
		if err := store.Record(cmd.Context(), r); err != nil {
			return exitcode.Fail("record run", err)
		}
	}
	return render(cmd, opts.format, r)
}

// resolveConfig layers the profile under any flag the user set explicitly.
func resolveConfig(cmd *cobra.Command, opts *options) (bench.Config, error) {
	cfg := opts.Config
	if opts.profile == "" {
		return cfg, nil
	}

	p, err := bench.LoadProfile(opts.profile)
	if err != nil {
		return cfg, exitcode.Command("load profile", err)
	}
	fromProfile := p.Apply(bench.DefaultConfig())

	f := cmd.Flags()
	if !f.Changed("iters") {
		cfg.Iterations = fromProfile.Iterations
	}
	if !f.Changed("trials") {
		cfg.Trials = fromProfile.Trials
	}
	if !f.Changed("reader-cpu") {
		cfg.ReaderCPU = fromProfile.ReaderCPU
	}
	if !f.Changed("writer-cpu") {
		cfg.WriterCPU = fromProfile.WriterCPU
	}
	return cfg, nil
}

func render(cmd *cobra.Command, format string, r *report.Report) error {
	if format == "json" {
		return report.WriteJSON(cmd.OutOrStdout(), r)
	}
	return report.WriteText(cmd.OutOrStdout(), r)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ENTRY POINT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		debug.DropError("SEQBENCH", err)
		os.Exit(exitcode.Code(err))
	}
}
