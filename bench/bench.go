// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ PINNED WRITER/READER THROUGHPUT HARNESS
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Benchmark Collaborator
//
// Description:
//   Measures Seqlock throughput with one writer and one reader on dedicated cores. Each trial
//   runs a pinned reader goroutine performing Iterations loads while the pinned writer performs
//   Iterations stores; the trial ends when both have finished.
//
// Measurement methodology:
//   - Throughput per trial: Iterations × 10⁶ / elapsed ns (ops/ms)
//   - Odd trial count so the median is an observed trial
//   - Context checked between trials only; a running trial is never interrupted
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seqlock"
	"seqlock/constants"
	"seqlock/debug"
	"seqlock/pin"
	"seqlock/report"
	"seqlock/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

var (
	// ErrEvenTrials rejects trial counts without a single middle value.
	ErrEvenTrials = errors.New("bench: trial count must be odd and positive")
	// ErrNoIterations rejects empty trials.
	ErrNoIterations = errors.New("bench: iterations must be positive")
)

// Config describes one harness run. A negative CPU leaves that role unpinned.
type Config struct {
	Iterations uint64
	Trials     int
	ReaderCPU  int
	WriterCPU  int
	Verbose    bool
}

// DefaultConfig mirrors the reference benchmark: 21 trials of 10M operations,
// no pinning.
func DefaultConfig() Config {
	return Config{
		Iterations: constants.BenchIterations,
		Trials:     constants.BenchTrials,
		ReaderCPU:  constants.NoCPU,
		WriterCPU:  constants.NoCPU,
	}
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if c.Iterations == 0 {
		return ErrNoIterations
	}
	if c.Trials <= 0 || c.Trials%2 == 0 {
		return fmt.Errorf("%w: got %d", ErrEvenTrials, c.Trials)
	}
	return nil
}

// tick is the benchmark payload: a single 4-byte field, as small as a
// payload gets.
type tick struct {
	x int32
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// EXECUTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Run executes cfg.Trials trials and returns the summarized report.
func Run(ctx context.Context, cfg Config) (*report.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &report.Report{
		RunID:      report.NewRunID(),
		Kind:       report.KindThroughput,
		Started:    time.Now().UTC(),
		Iterations: cfg.Iterations,
		ReaderCPU:  cfg.ReaderCPU,
		WriterCPU:  cfg.WriterCPU,
		Trials:     make([]uint64, 0, cfg.Trials),
	}

	// The writer role runs on this goroutine for every trial.
	unlock := pin.Lock(cfg.WriterCPU)
	defer unlock()

	sl := seqlock.New[tick]()

	for i := 0; i < cfg.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("bench: trial %d: %w", i, err)
		}

		elapsed := trial(sl, cfg)
		ops := report.OpsPerMilli(cfg.Iterations, elapsed)
		r.Trials = append(r.Trials, ops)

		if cfg.Verbose {
			debug.DropMessage("TRIAL", utils.Itoa(i+1)+"/"+utils.Itoa(cfg.Trials)+" "+utils.Utoa(ops)+" ops/ms in "+
				utils.Ftoa(float64(elapsed.Microseconds())/1000, 2)+" ms")
		}
	}

	if err := r.Summarize(); err != nil {
		return nil, err
	}
	return r, nil
}

// trial runs one reader/writer round and returns its wall time, measured
// from the writer's first store until the reader has finished.
func trial(sl *seqlock.Seqlock[tick], cfg Config) time.Duration {
	done := make(chan struct{})
	iters := cfg.Iterations

	pin.Go(cfg.ReaderCPU, func() {
		var sink tick
		for i := uint64(0); i < iters; i++ {
			sl.LoadInto(&sink)
		}
		_ = sink
	}, done)

	start := time.Now()
	for i := uint64(0); i < iters; i++ {
		sl.Store(tick{x: int32(i)})
	}
	<-done
	return time.Since(start)
}
