// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ SINGLE-WRITER SEQUENCE LOCK
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Lock-Free Snapshot Publication
//
// Description:
//   Publishes an in-place snapshot of a value from exactly one writer to any number of
//   concurrent readers. The writer never blocks and never waits on readers; readers copy
//   optimistically and retry when the version counter shows their copy may be torn.
//
// Protocol:
//   - Counter even: no write in progress, slot holds the snapshot of that version
//   - Counter odd: a write is in progress, anything read from the slot is untrusted
//   - Store: counter → odd, copy value in, counter → even
//   - Load: read counter, copy value out, re-read counter, retry on odd or mismatch
//
// Performance characteristics:
//   - Store is wait-free: constant work regardless of reader count or activity
//   - Load is lock-free: a reader retries only while a store overlaps its copy
//   - Zero allocation on both paths
//   - Counter and slot sit on separate cache lines
//
// Safety model:
//   - ⚠️  Single writer only: concurrent Store calls corrupt the snapshot undetectably
//   - No freshness guarantee: a Load returns some complete snapshot, not necessarily the latest
//   - Counter wraparound is harmless: only parity and short-window equality are compared
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package seqlock

import (
	"sync/atomic"
	"unsafe"

	"seqlock/constants"

	"golang.org/x/sys/cpu"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CORE DATA STRUCTURES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// noCopy makes go vet flag copies of a Seqlock after construction.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// slot is the value cell. The leading zero-length array aligns it to a machine
// word and the trailing bytes guarantee that the last, possibly partial, word
// of T can be moved without leaving the cell.
type slot[T any] struct {
	_ [0]uintptr
	v T
	_ [constants.WordSize - 1]byte
}

// Seqlock publishes snapshots of T from one writer to many readers.
//
// Memory layout:
//   - Guard line: isolates the copy plan from whatever precedes the instance
//   - Copy plan: read-only after New, shared by the writer and all readers
//   - Counter line: the sequence counter, written only by the writer
//   - Value slot: starts on its own line, written only by the writer
//   - Guard line: isolates the slot from whatever follows the instance
//
// A Seqlock must be created with New and must not be copied afterwards.
type Seqlock[T any] struct {
	_ noCopy
	_ cpu.CacheLinePad

	plan copyPlan
	_    cpu.CacheLinePad

	seq atomic.Uint64
	_   [constants.CacheLineSize - 8]byte

	slot slot[T]
	_    cpu.CacheLinePad
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTOR
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New creates a Seqlock holding the zero value of T at version 0.
//
// The copy strategy for T is resolved here, once: pointer-free types move
// through plain word atomics, types holding pointers move through a
// pointer-aware word copy that keeps the garbage collector informed.
// A Load before any Store returns the zero value.
func New[T any]() *Seqlock[T] {
	return &Seqlock[T]{plan: planFor[T]()}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WRITER PROTOCOL
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Store publishes v as the new snapshot.
//
// Algorithm:
//  1. Load the counter (only the writer mutates it, so no race is possible)
//  2. Publish counter+1: readers now treat the slot as unstable
//  3. Copy v into the slot word by word
//  4. Publish counter+2: the new snapshot is complete
//
// Every step is a sequentially consistent atomic, so neither the compiler nor
// the CPU can move a slot write outside the odd window.
//
// ⚠️  SAFETY REQUIREMENTS:
//   - Exactly one goroutine may call Store over the lifetime of the instance
//
//go:norace
//go:nocheckptr
func (s *Seqlock[T]) Store(v T) {
	var src slot[T]
	src.v = v

	seq0 := s.beginWrite()
	s.plan.store(unsafe.Pointer(&s.slot), unsafe.Pointer(&src))
	s.endWrite(seq0)
}

// beginWrite marks the slot unstable and returns the even version it replaces.
func (s *Seqlock[T]) beginWrite() uint64 {
	seq0 := s.seq.Load()
	s.seq.Store(seq0 + 1)
	return seq0
}

// endWrite publishes the version following seq0's write window.
func (s *Seqlock[T]) endWrite(seq0 uint64) {
	s.seq.Store(seq0 + 2)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// READER PROTOCOL
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Load returns a consistent snapshot of the most recently completed Store
// observed by this reader. Safe to call from any number of goroutines
// concurrently with each other and with the writer.
//
// Load spins while a Store overlaps its copy. It never sleeps and never
// allocates; callers needing a latency bound must impose it themselves.
func (s *Seqlock[T]) Load() T {
	var dst slot[T]
	s.read(&dst)
	return dst.v
}

// LoadInto is Load with a caller-owned destination. *dst is assigned exactly
// once, after a consistent snapshot has been taken; it never observes a torn
// value.
func (s *Seqlock[T]) LoadInto(dst *T) {
	var buf slot[T]
	s.read(&buf)
	*dst = buf.v
}

// read copies the slot into dst until the copy is bracketed by the same even
// version.
//
// Algorithm:
//  1. start := counter; an odd start means a write is in progress, poll again
//  2. Copy every slot word into dst
//  3. end := counter; start == end proves no write overlapped step 2
//
// Equality and parity are the only tests applied to the counter, so the
// protocol is unaffected when it wraps.
//
//go:norace
//go:nocheckptr
func (s *Seqlock[T]) read(dst *slot[T]) {
	for {
		start := s.seq.Load()
		if start&1 != 0 {
			continue
		}

		s.plan.load(unsafe.Pointer(dst), unsafe.Pointer(&s.slot))

		if s.seq.Load() == start {
			return
		}
	}
}
