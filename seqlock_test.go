// ============================================================================
// SEQUENCE LOCK CORRECTNESS VALIDATION SUITE
// ============================================================================
//
// Unit testing for the single-writer sequence lock with emphasis on the
// version protocol and payload integrity.
//
// Test categories:
//   - Construction: zero payload, version zero
//   - Basic operations: Store/Load round trips across payload shapes
//   - Determinism: repeated loads without an intervening store
//   - Version protocol: counter parity and wraparound
//   - Write in progress: readers never accept an odd window
//   - Allocation: Store and Load are allocation-free
//
// Validation methodology:
//   - Single-threaded checks of every payload shape the copy plan handles
//   - Direct manipulation of the counter for wraparound scenarios
//   - Split writes (beginWrite / endWrite) to freeze a store mid-flight

package seqlock

import (
	"crypto/rand"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"
	"unsafe"
)

// ============================================================================
// TEST UTILITIES AND HELPERS
// ============================================================================

// triple carries y = x+100 and z = x+y.
type triple struct {
	x, y, z uint64
}

func makeTriple(x uint64) triple {
	return triple{x: x, y: x + 100, z: x + x + 100}
}

// pair is only ever assigned by value.
type pair struct {
	a, b int
}

// odd13 has a size that is not a multiple of the word size.
type odd13 [13]byte

// quote exercises every pointer-bearing kind the copy plan knows about.
type quote struct {
	Seq    uint64
	Symbol string
	Levels []int64
	Tags   map[string]int
	Meta   any
	Prev   *quote
	Notify chan struct{}
	Fn     func() int
	Flag   bool
}

// writeRaw copies v into the slot without touching the counter, for tests
// that drive the version protocol by hand.
func writeRaw[T any](s *Seqlock[T], v T) {
	var src slot[T]
	src.v = v
	s.plan.store(unsafe.Pointer(&s.slot), unsafe.Pointer(&src))
}

// randomBytes fills a payload with random content.
func randomBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

// ============================================================================
// CONSTRUCTION
// ============================================================================

// TestNewLoadsZeroValue validates the first Load before any Store
func TestNewLoadsZeroValue(t *testing.T) {
	if got := New[int]().Load(); got != 0 {
		t.Fatalf("Load = %d, want 0", got)
	}
	if got := New[triple]().Load(); got != (triple{}) {
		t.Fatalf("Load = %+v, want zero", got)
	}
	if got := New[quote]().Load(); !reflect.DeepEqual(got, quote{}) {
		t.Fatalf("Load = %+v, want zero", got)
	}
	if got := New[string]().Load(); got != "" {
		t.Fatalf("Load = %q, want empty", got)
	}
}

// TestNewStartsAtVersionZero validates the counter's initial state
func TestNewStartsAtVersionZero(t *testing.T) {
	s := New[int]()
	if v := s.seq.Load(); v != 0 {
		t.Fatalf("initial version = %d, want 0", v)
	}
}

// ============================================================================
// BASIC OPERATION VALIDATION
// ============================================================================

// TestBasicScenario validates consecutive stores on an int
func TestBasicScenario(t *testing.T) {
	s := New[int]()

	s.Store(1)
	if got := s.Load(); got != 1 {
		t.Fatalf("Load = %d, want 1", got)
	}

	s.Store(2)
	if got := s.Load(); got != 2 {
		t.Fatalf("Load = %d, want 2", got)
	}
}

// TestRoundTripScalarShapes validates payloads on the pointer-free path
func TestRoundTripScalarShapes(t *testing.T) {
	t.Run("uint8", func(t *testing.T) {
		s := New[uint8]()
		s.Store(0xAB)
		if got := s.Load(); got != 0xAB {
			t.Fatalf("Load = %#x", got)
		}
	})

	t.Run("float64", func(t *testing.T) {
		s := New[float64]()
		s.Store(math.Pi)
		if got := s.Load(); got != math.Pi {
			t.Fatalf("Load = %v", got)
		}
	})

	t.Run("triple", func(t *testing.T) {
		s := New[triple]()
		want := makeTriple(12345)
		s.Store(want)
		if got := s.Load(); got != want {
			t.Fatalf("Load = %+v, want %+v", got, want)
		}
	})

	t.Run("odd_size", func(t *testing.T) {
		s := New[odd13]()
		var want odd13
		copy(want[:], randomBytes(len(want)))
		s.Store(want)
		if got := s.Load(); got != want {
			t.Fatalf("Load = %v, want %v", got, want)
		}
	})

	t.Run("empty_struct", func(t *testing.T) {
		s := New[struct{}]()
		s.Store(struct{}{})
		_ = s.Load()
		if v := s.seq.Load(); v != 2 {
			t.Fatalf("version = %d, want 2", v)
		}
	})

	t.Run("large_array", func(t *testing.T) {
		s := New[[4096]byte]()
		var want [4096]byte
		copy(want[:], randomBytes(len(want)))
		s.Store(want)
		if got := s.Load(); got != want {
			t.Fatal("large payload mismatch")
		}
	})

	t.Run("pair", func(t *testing.T) {
		s := New[pair]()
		s.Store(pair{1, 2})
		if got := s.Load(); got != (pair{1, 2}) {
			t.Fatalf("Load = %+v, want {1 2}", got)
		}
	})
}

// TestRoundTripPointerShapes validates payloads on the pointer-aware path
func TestRoundTripPointerShapes(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		s := New[string]()
		s.Store("hello")
		if got := s.Load(); got != "hello" {
			t.Fatalf("Load = %q", got)
		}
	})

	t.Run("slice", func(t *testing.T) {
		s := New[[]int]()
		want := []int{1, 2, 3}
		s.Store(want)
		got := s.Load()
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Load = %v, want %v", got, want)
		}
		if &got[0] != &want[0] {
			t.Fatal("slice must share its backing array, assignment semantics")
		}
	})

	t.Run("interface", func(t *testing.T) {
		s := New[any]()
		s.Store(pair{3, 4})
		if got, ok := s.Load().(pair); !ok || got != (pair{3, 4}) {
			t.Fatalf("Load = %#v", got)
		}
		s.Store("text")
		if got := s.Load(); got != "text" {
			t.Fatalf("Load = %#v", got)
		}
	})

	t.Run("quote", func(t *testing.T) {
		s := New[quote]()
		prev := &quote{Seq: 1}
		ch := make(chan struct{})
		want := quote{
			Seq:    2,
			Symbol: "ES",
			Levels: []int64{5000, 5001},
			Tags:   map[string]int{"venue": 1},
			Meta:   3.5,
			Prev:   prev,
			Notify: ch,
			Fn:     func() int { return 7 },
			Flag:   true,
		}
		s.Store(want)
		got := s.Load()

		if got.Seq != 2 || got.Symbol != "ES" || !got.Flag {
			t.Fatalf("scalar fields mismatch: %+v", got)
		}
		if !reflect.DeepEqual(got.Levels, want.Levels) || !reflect.DeepEqual(got.Tags, want.Tags) {
			t.Fatalf("reference fields mismatch: %+v", got)
		}
		if got.Meta != 3.5 || got.Prev != prev || got.Notify != ch || got.Fn() != 7 {
			t.Fatalf("pointer fields mismatch: %+v", got)
		}
	})
}

// TestLoadInto validates the caller-owned destination convention
func TestLoadInto(t *testing.T) {
	s := New[triple]()
	want := makeTriple(77)
	s.Store(want)

	var got triple
	s.LoadInto(&got)
	if got != want {
		t.Fatalf("LoadInto = %+v, want %+v", got, want)
	}

	q := New[quote]()
	q.Store(quote{Symbol: "NQ"})
	dst := quote{Symbol: "stale", Levels: []int64{1}}
	q.LoadInto(&dst)
	if dst.Symbol != "NQ" || dst.Levels != nil {
		t.Fatalf("LoadInto must overwrite every field: %+v", dst)
	}
}

// ============================================================================
// DETERMINISM BETWEEN WRITES
// ============================================================================

// TestRepeatedLoadsIdentical validates that loads without a store agree
func TestRepeatedLoadsIdentical(t *testing.T) {
	s := New[[64]byte]()
	var want [64]byte
	copy(want[:], randomBytes(64))
	s.Store(want)

	first := s.Load()
	for i := 0; i < 1000; i++ {
		if got := s.Load(); got != first {
			t.Fatalf("load %d differs from first load", i)
		}
	}
	if first != want {
		t.Fatal("first load differs from stored value")
	}
}

// ============================================================================
// VERSION PROTOCOL
// ============================================================================

// TestStoreAdvancesVersionByTwo validates one odd→even transition per store
func TestStoreAdvancesVersionByTwo(t *testing.T) {
	s := New[int]()
	for i := 1; i <= 100; i++ {
		s.Store(i)
		if v := s.seq.Load(); v != uint64(2*i) {
			t.Fatalf("after %d stores version = %d, want %d", i, v, 2*i)
		}
	}
}

// TestLoadLeavesVersionUntouched validates that readers never write
func TestLoadLeavesVersionUntouched(t *testing.T) {
	s := New[int]()
	s.Store(5)
	for i := 0; i < 100; i++ {
		_ = s.Load()
	}
	if v := s.seq.Load(); v != 2 {
		t.Fatalf("version = %d after loads, want 2", v)
	}
}

// TestBeginEndWriteParity validates the split write helpers
func TestBeginEndWriteParity(t *testing.T) {
	s := New[int]()
	seq0 := s.beginWrite()
	if seq0 != 0 || s.seq.Load()&1 != 1 {
		t.Fatalf("beginWrite: seq0 = %d, version = %d", seq0, s.seq.Load())
	}
	s.endWrite(seq0)
	if s.seq.Load() != 2 {
		t.Fatalf("endWrite: version = %d, want 2", s.seq.Load())
	}
}

// TestWraparoundRoundTrip validates store/load across the counter's wrap
func TestWraparoundRoundTrip(t *testing.T) {
	for _, seed := range []uint64{math.MaxUint64 - 1, math.MaxUint64 - 3, math.MaxUint64 - 5} {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			s := New[triple]()
			s.seq.Store(seed)

			for i := uint64(0); i < 8; i++ {
				want := makeTriple(i)
				s.Store(want)
				if got := s.Load(); got != want {
					t.Fatalf("store %d: Load = %+v, want %+v", i, got, want)
				}
				if v := s.seq.Load(); v&1 != 0 {
					t.Fatalf("store %d: version %d left odd", i, v)
				}
			}

			if v := s.seq.Load(); v != seed+16 {
				t.Fatalf("version = %d, want wrapped %d", v, seed+16)
			}
		})
	}
}

// ============================================================================
// WRITE IN PROGRESS
// ============================================================================

// loadAsync starts a Load on another goroutine and returns its result channel
func loadAsync[T any](s *Seqlock[T]) <-chan T {
	out := make(chan T, 1)
	go func() { out <- s.Load() }()
	return out
}

// TestLoadSpinsWhileWriteInProgress validates that an odd window is never
// accepted as a snapshot
func TestLoadSpinsWhileWriteInProgress(t *testing.T) {
	s := New[triple]()
	s.Store(makeTriple(1))

	seq0 := s.beginWrite()
	// Half of a store: the slot holds a value whose invariant is broken.
	writeRaw(s, triple{x: 2, y: 102, z: 0})

	out := loadAsync(s)
	select {
	case got := <-out:
		t.Fatalf("Load returned %+v during a write", got)
	case <-time.After(50 * time.Millisecond):
	}

	writeRaw(s, makeTriple(2))
	s.endWrite(seq0)

	select {
	case got := <-out:
		if got != makeTriple(2) {
			t.Fatalf("Load = %+v, want completed store", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Load did not return after the write completed")
	}
}

// TestLoadSpinsAcrossWrappedWrite validates a write whose odd window sits
// at the counter's maximum and whose completion wraps to zero
func TestLoadSpinsAcrossWrappedWrite(t *testing.T) {
	s := New[triple]()
	s.seq.Store(math.MaxUint64 - 1)
	s.Store(makeTriple(10)) // version wraps to 0

	if v := s.seq.Load(); v != 0 {
		t.Fatalf("version = %d, want 0 after wrap", v)
	}

	s.seq.Store(math.MaxUint64 - 1)
	seq0 := s.beginWrite() // version = MaxUint64, odd
	if s.seq.Load() != math.MaxUint64 {
		t.Fatalf("version = %d, want MaxUint64", s.seq.Load())
	}
	writeRaw(s, triple{x: 11})

	out := loadAsync(s)
	select {
	case got := <-out:
		t.Fatalf("Load returned %+v while version was odd at the wrap", got)
	case <-time.After(50 * time.Millisecond):
	}

	writeRaw(s, makeTriple(11))
	s.endWrite(seq0) // wraps to 0

	select {
	case got := <-out:
		if got != makeTriple(11) {
			t.Fatalf("Load = %+v, want %+v", got, makeTriple(11))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Load did not return after the wrapped write completed")
	}
}

// ============================================================================
// ALLOCATION
// ============================================================================

// TestZeroAllocations validates that neither path touches the heap
func TestZeroAllocations(t *testing.T) {
	s := New[triple]()
	v := makeTriple(1)

	if n := testing.AllocsPerRun(1000, func() { s.Store(v) }); n != 0 {
		t.Errorf("Store allocates %v times per call", n)
	}
	if n := testing.AllocsPerRun(1000, func() { _ = s.Load() }); n != 0 {
		t.Errorf("Load allocates %v times per call", n)
	}

	var dst triple
	if n := testing.AllocsPerRun(1000, func() { s.LoadInto(&dst) }); n != 0 {
		t.Errorf("LoadInto allocates %v times per call", n)
	}
}
