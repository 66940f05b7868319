// ════════════════════════════════════════════════════════════════════════════════════════════════
// PAYLOAD COPY STRATEGY
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Type Compatibility Contract
//
// Description:
//   Every Go type is default-constructible (its zero value) and assignment cannot fail, so any
//   T is accepted. What differs between types is how the slot may be copied while a racing
//   writer is overwriting it. The plan is resolved once per instance:
//
//   - Scalar path: T holds no pointers. Each machine word moves through a uintptr atomic.
//   - Pointer-aware path: T holds pointers. A per-word bitmap sends pointer words through
//     pointer atomics, which keep the garbage collector's write barrier, and scalar words
//     through uintptr atomics.
//
//   Torn copies only ever land in the reader's stack buffer and are discarded before use.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package seqlock

import (
	"reflect"
	"sync/atomic"
	"unsafe"

	"seqlock/constants"
)

const wordSize = constants.WordSize

// copyPlan describes how to move one T between a slot and a buffer.
type copyPlan struct {
	words int      // machine words spanned by T, rounded up
	ptrs  []uint64 // bit i set: word i holds a pointer; nil for pointer-free T
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PLAN CONSTRUCTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// planFor builds the copy plan for T.
func planFor[T any]() copyPlan {
	t := reflect.TypeOf((*T)(nil)).Elem()
	p := copyPlan{words: int((t.Size() + wordSize - 1) / wordSize)}
	if hasPointers(t) {
		p.ptrs = make([]uint64, (p.words+63)/64)
		markPointers(t, 0, p.ptrs)
	}
	return p
}

// scalar reports whether the plan uses the pointer-free path.
func (p *copyPlan) scalar() bool {
	return p.ptrs == nil
}

// isPointer reports whether word i holds a pointer.
func (p *copyPlan) isPointer(i int) bool {
	return p.ptrs != nil && p.ptrs[i>>6]&(1<<(uint(i)&63)) != 0
}

// hasPointers reports whether values of t contain any word the garbage
// collector scans.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.String, reflect.Slice, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

// markPointers sets the bit of every pointer word of a t stored at byte
// offset off.
func markPointers(t reflect.Type, off uintptr, bits []uint64) {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.String, reflect.Slice:
		// Data pointer is the first word; len/cap words are scalars.
		setBit(bits, off)
	case reflect.Interface:
		// Type word and data word.
		setBit(bits, off)
		setBit(bits, off+wordSize)
	case reflect.Array:
		elem := t.Elem()
		if !hasPointers(elem) {
			return
		}
		for i := 0; i < t.Len(); i++ {
			markPointers(elem, off+uintptr(i)*elem.Size(), bits)
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			markPointers(f.Type, off+f.Offset, bits)
		}
	}
}

func setBit(bits []uint64, off uintptr) {
	w := off / wordSize
	bits[w>>6] |= 1 << (w & 63)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WORD COPY
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// load copies the slot at src into the private buffer at dst. Every read of
// src is atomic; dst belongs to the calling reader.
//
//go:nocheckptr
func (p *copyPlan) load(dst, src unsafe.Pointer) {
	n := p.words
	if p.ptrs == nil {
		for i := 0; i < n; i++ {
			off := uintptr(i) * wordSize
			*(*uintptr)(unsafe.Add(dst, off)) = atomic.LoadUintptr((*uintptr)(unsafe.Add(src, off)))
		}
		return
	}

	for i := 0; i < n; i++ {
		off := uintptr(i) * wordSize
		if p.ptrs[i>>6]&(1<<(uint(i)&63)) != 0 {
			*(*unsafe.Pointer)(unsafe.Add(dst, off)) = atomic.LoadPointer((*unsafe.Pointer)(unsafe.Add(src, off)))
			continue
		}
		*(*uintptr)(unsafe.Add(dst, off)) = atomic.LoadUintptr((*uintptr)(unsafe.Add(src, off)))
	}
}

// store copies the private buffer at src into the slot at dst. Every write
// of dst is atomic; src belongs to the writer.
//
//go:nocheckptr
func (p *copyPlan) store(dst, src unsafe.Pointer) {
	n := p.words
	if p.ptrs == nil {
		for i := 0; i < n; i++ {
			off := uintptr(i) * wordSize
			atomic.StoreUintptr((*uintptr)(unsafe.Add(dst, off)), *(*uintptr)(unsafe.Add(src, off)))
		}
		return
	}

	for i := 0; i < n; i++ {
		off := uintptr(i) * wordSize
		if p.ptrs[i>>6]&(1<<(uint(i)&63)) != 0 {
			atomic.StorePointer((*unsafe.Pointer)(unsafe.Add(dst, off)), *(*unsafe.Pointer)(unsafe.Add(src, off)))
			continue
		}
		atomic.StoreUintptr((*uintptr)(unsafe.Add(dst, off)), *(*uintptr)(unsafe.Add(src, off)))
	}
}
