// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - AMD64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: x86-64 Spin-Wait Hint
//
// Description:
//   Emits PAUSE inside coordination spin loops (start gates, drain loops, example readers).
//   Never used inside Seqlock.Load: a cgo transition costs more than a retry.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build amd64 && cgo && !noasm

package pin

/*
static inline void cpu_pause() {
    __asm__ __volatile__("pause" ::: "memory");
}
*/
import "C"

// Relax hints to the processor that the caller is busy-waiting, letting a
// sibling hyperthread make progress.
func Relax() {
	C.cpu_pause()
}
