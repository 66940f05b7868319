// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ CORE-PINNED GOROUTINES
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Thread Placement for Writers and Readers
//
// Description:
//   Benchmark and stress collaborators run the single writer and its readers on dedicated
//   cores so that throughput reflects cache-line transfer cost and not scheduler noise.
//   A pinned goroutine is locked to its OS thread and that thread is bound to one CPU.
//
// Threading model:
//   - runtime.LockOSThread before binding, so the affinity applies to this goroutine
//   - The previous CPU mask is restored before the thread is unlocked
//   - Affinity failures are reported, never fatal: the work still runs unpinned
//   - done is closed after fn returns and the thread is unlocked
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package pin

import (
	"runtime"

	"seqlock/debug"
)

// Lock locks the calling goroutine to its OS thread and binds that thread to
// cpu. The returned function restores the thread's previous CPU mask and
// unlocks it, so the runtime never reuses a thread stuck on one core. A
// failed bind is logged and the caller continues unpinned. A failed restore
// is logged and the thread stays locked to the goroutine; if the goroutine
// exits, the runtime terminates the thread.
func Lock(cpu int) (unlock func()) {
	runtime.LockOSThread()
	if cpu < 0 {
		return runtime.UnlockOSThread
	}

	saved, err := currentAffinity()
	if err != nil {
		debug.DropError("PIN", err)
		return runtime.UnlockOSThread
	}
	if err := SetAffinity(cpu); err != nil {
		debug.DropError("PIN", err)
		return runtime.UnlockOSThread
	}

	return func() {
		if err := restoreAffinity(&saved); err != nil {
			debug.DropError("PIN", err)
			return
		}
		runtime.UnlockOSThread()
	}
}

// Go launches fn on a goroutine pinned to cpu and closes done when fn
// returns. A negative cpu locks the OS thread without binding it.
func Go(cpu int, fn func(), done chan<- struct{}) {
	go func() {
		unlock := Lock(cpu)
		defer func() {
			unlock()
			close(done)
		}()

		fn()
	}()
}
