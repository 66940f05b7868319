// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - ARM64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: ARM64 Spin-Wait Hint
//
// Description:
//   Emits YIELD inside coordination spin loops. Never used inside Seqlock.Load.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build arm64 && cgo && !noasm

package pin

/*
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
*/
import "C"

// Relax hints to the processor that the caller is busy-waiting.
func Relax() {
	C.cpu_yield()
}
