// control.go - start/stop coordination between one writer and many readers
// ============================================================================
// WRITER / READER ORCHESTRATION
// ============================================================================
//
// Control provides the signalling the stress driver, the benchmark harness
// and the example program use around a Seqlock. None of it sits on the
// Store/Load path; it only decides when readers start and stop.
//
// Architecture overview:
//   • Start gate: readers spin in Wait until the writer has published a first
//     snapshot and calls Arm
//   • Stop flag: the writer calls Stop once its last Store has returned
//   • Drain: each reader calls Done on exit; the writer spins in Drain until
//     every participant has left
//
// Threading model:
//   • One goroutine arms and stops, any number wait and report done
//   • All flags live on one padded block; they are written rarely and polled
//     often, so they must not share a line with a Seqlock counter

package control

import (
	"sync/atomic"

	"seqlock/constants"
	"seqlock/pin"

	"golang.org/x/sys/cpu"
)

// ============================================================================
// LATCH STATE
// ============================================================================

// Latch coordinates the lifetime of a group of readers around one writer.
// The zero value is ready to use and unarmed.
type Latch struct {
	_ cpu.CacheLinePad

	armed   atomic.Uint32 // 1 once Arm has been called
	stop    atomic.Uint32 // 1 once Stop has been called
	pending atomic.Int64  // participants that have not called Done

	_ cpu.CacheLinePad
}

// ============================================================================
// START GATE
// ============================================================================

// Arm registers n participants and opens the start gate.
func (l *Latch) Arm(n int) {
	l.pending.Store(int64(n))
	l.armed.Store(1)
}

// Armed reports whether the start gate is open.
func (l *Latch) Armed() bool {
	return l.armed.Load() == 1
}

// Wait spins until the start gate opens, relaxing the CPU every
// constants.SpinBudget polls.
func (l *Latch) Wait() {
	miss := 0
	for l.armed.Load() == 0 {
		if miss++; miss >= constants.SpinBudget {
			miss = 0
			pin.Relax()
		}
	}
}

// ============================================================================
// SHUTDOWN
// ============================================================================

// Stop signals every participant to finish.
func (l *Latch) Stop() {
	l.stop.Store(1)
}

// Stopped reports whether Stop has been called.
func (l *Latch) Stopped() bool {
	return l.stop.Load() == 1
}

// Done records that one participant has exited.
func (l *Latch) Done() {
	l.pending.Add(-1)
}

// Remaining returns the number of participants still running.
func (l *Latch) Remaining() int64 {
	return l.pending.Load()
}

// Drain spins until every participant has called Done.
func (l *Latch) Drain() {
	miss := 0
	for l.pending.Load() > 0 {
		if miss++; miss >= constants.SpinBudget {
			miss = 0
			pin.Relax()
		}
	}
}
