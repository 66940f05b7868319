// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🧪 TORN-READ STRESS DRIVER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Stress Collaborator
//
// Description:
//   One writer publishes invariant-carrying payloads while many readers load and check every
//   snapshot. A snapshot that breaks its invariant is a mix of two stores: a torn read.
//
// Payloads:
//   - triple: {x, y = x+100, z = x+y}, three words on one line
//   - digest: a body and its SHA3-256 digest, spanning several cache lines
//
// Lifecycle:
//   1. Writer publishes the first payload, then opens the start gate
//   2. Readers load and check until the writer signals stop
//   3. Writer publishes the remaining payloads, stops, and drains the readers
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package stress

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/sha3"

	"seqlock"
	"seqlock/constants"
	"seqlock/control"
	"seqlock/debug"
	"seqlock/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Payload selects the invariant-carrying value type.
type Payload string

const (
	PayloadTriple Payload = "triple"
	PayloadDigest Payload = "digest"
)

var (
	// ErrTornRead reports that at least one reader observed a broken invariant.
	ErrTornRead = errors.New("stress: torn read observed")
	// ErrBadConfig reports an unusable configuration.
	ErrBadConfig = errors.New("stress: invalid config")
)

// Config describes one stress run.
type Config struct {
	Writes  uint64
	Readers int
	Payload Payload
	Verbose bool
}

// DefaultConfig is the full-size run: 10M triples against 100 readers.
func DefaultConfig() Config {
	return Config{
		Writes:  constants.StressWrites,
		Readers: constants.StressReaders,
		Payload: PayloadTriple,
	}
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	switch {
	case c.Writes == 0:
		return fmt.Errorf("%w: writes must be positive", ErrBadConfig)
	case c.Readers <= 0:
		return fmt.Errorf("%w: readers must be positive", ErrBadConfig)
	case c.Payload != PayloadTriple && c.Payload != PayloadDigest:
		return fmt.Errorf("%w: unknown payload %q", ErrBadConfig, c.Payload)
	}
	return nil
}

// Result counts what the readers saw. Elapsed runs from the opening of the
// start gate until every reader has drained.
type Result struct {
	Writes     uint64
	Loads      uint64
	Violations uint64
	Elapsed    time.Duration
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PAYLOADS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Triple carries y = x+100 and z = x+y.
type Triple struct {
	X, Y, Z uint64
}

// MakeTriple builds the i-th triple.
func MakeTriple(i uint64) Triple {
	return Triple{X: i, Y: i + 100, Z: i + i + 100}
}

// Valid reports whether the invariant holds.
func (t Triple) Valid() bool {
	return t.Y == t.X+100 && t.Z == t.X+t.Y
}

// Digest carries a body and the SHA3-256 of that body.
type Digest struct {
	Body [constants.DigestBodySize]byte
	Sum  [32]byte
}

// MakeDigest builds the i-th digest payload: the body is i's little-endian
// encoding repeated.
func MakeDigest(i uint64) Digest {
	var d Digest
	for off := 0; off+8 <= len(d.Body); off += 8 {
		binary.LittleEndian.PutUint64(d.Body[off:], i)
	}
	d.Sum = sha3.Sum256(d.Body[:])
	return d
}

// Valid reports whether Sum matches Body.
func (d *Digest) Valid() bool {
	return sha3.Sum256(d.Body[:]) == d.Sum
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// EXECUTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Run executes one stress run. It returns ErrTornRead, alongside the full
// Result, if any reader observed a broken invariant. The writer checks ctx
// every 64Ki stores; a cancelled run still stops and drains its readers and
// returns the wrapped ctx.Err().
func Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	switch cfg.Payload {
	case PayloadDigest:
		return run(ctx, cfg, MakeDigest, func(d *Digest) bool { return d.Valid() })
	default:
		return run(ctx, cfg, MakeTriple, func(t *Triple) bool { return t.Valid() })
	}
}

func run[T any](ctx context.Context, cfg Config, gen func(uint64) T, valid func(*T) bool) (Result, error) {
	sl := seqlock.New[T]()
	var (
		latch      control.Latch
		loads      atomic.Uint64
		violations atomic.Uint64
	)

	for r := 0; r < cfg.Readers; r++ {
		go func() {
			defer latch.Done()
			latch.Wait()

			var (
				v    T
				n    uint64
				torn uint64
			)
			for !latch.Stopped() {
				sl.LoadInto(&v)
				n++
				if !valid(&v) {
					torn++
				}
			}
			loads.Add(n)
			violations.Add(torn)
		}()
	}

	// Readers must never see the zero value, which breaks both invariants.
	sl.Store(gen(0))
	start := time.Now()
	latch.Arm(cfg.Readers)

	var (
		written = uint64(1)
		err     error
	)
	for ; written < cfg.Writes; written++ {
		if written&0xFFFF == 0 {
			if err = ctx.Err(); err != nil {
				break
			}
		}
		sl.Store(gen(written))
	}

	latch.Stop()
	latch.Drain()

	res := Result{
		Writes:     written,
		Loads:      loads.Load(),
		Violations: violations.Load(),
		Elapsed:    time.Since(start),
	}
	if cfg.Verbose {
		debug.DropMessage("STRESS", utils.Utoa(res.Writes)+" writes, "+utils.Utoa(res.Loads)+" loads, "+
			utils.Utoa(res.Violations)+" violations")
	}

	if err != nil {
		return res, fmt.Errorf("stress: stopped after %d writes: %w", written, err)
	}
	if res.Violations != 0 {
		return res, fmt.Errorf("%w: %d of %d loads", ErrTornRead, res.Violations, res.Loads)
	}
	return res, nil
}
