// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go - Layout Tunables & Harness Defaults
//
// Purpose:
//   - Defines the cache-line size used to isolate the sequence counter and
//     the value slot from each other and from neighbouring memory.
//   - Holds the defaults used by the benchmark harness and stress driver.
//
// Notes:
//   - CacheLineSize comes from golang.org/x/sys/cpu, which reports the
//     destructive-interference size of the target architecture.
//   - Layout constants are a performance property only; correctness never
//     depends on their numeric value.
//
// ⚠️ No runtime logic here - all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// ───────────────────────────── Memory Layout ──────────────────────────────

const (
	// CacheLineSize is the platform-reported interference size: 64 bytes on
	// amd64, 128 on arm64 and ppc64, 256 on s390x.
	CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

	// FallbackCacheLineSize is the documented line size for platforms that
	// report none. x/sys/cpu uses it for every architecture it does not
	// special-case.
	FallbackCacheLineSize = 64

	// WordSize is the unit in which payloads are moved in and out of the
	// value slot. Pointers are always exactly one word.
	WordSize = unsafe.Sizeof(uintptr(0))
)

// ─────────────────────────── Benchmark Harness ─────────────────────────────

const (
	// BenchIterations is the number of store/load operations per trial.
	BenchIterations = 10_000_000

	// BenchTrials is the default trial count. Must stay odd so the median
	// is a single observed trial.
	BenchTrials = 21

	// NoCPU disables thread pinning for a role.
	NoCPU = -1
)

// ──────────────────────────── Stress Driver ────────────────────────────────

const (
	// StressWrites is the number of invariant-carrying stores published by
	// the single writer in a full stress run.
	StressWrites = 10_000_000

	// StressReaders is the number of concurrent readers in a full run.
	StressReaders = 100

	// DigestBodySize is the body length of the SHA3 digest payload. Together
	// with the 32-byte digest it spans several cache lines on every platform.
	DigestBodySize = 224
)

// ──────────────────────────── Spin Behaviour ───────────────────────────────

const (
	// SpinBudget is the number of failed polls a coordination loop performs
	// before issuing a CPU relax hint.
	SpinBudget = 224
)
