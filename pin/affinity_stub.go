// ============================================================================
// CPU AFFINITY NO-OP IMPLEMENTATION
// ============================================================================
//
// Platforms without sched_setaffinity(2) (macOS, Windows, BSDs, wasm) keep
// the same API; threads simply stay wherever the scheduler puts them.

//go:build !linux

package pin

// Supported reports whether SetAffinity actually binds threads here.
const Supported = false

// SetAffinity accepts any cpu and does nothing on this platform.
func SetAffinity(cpu int) error {
	return nil
}

type affinity struct{}

func currentAffinity() (affinity, error) { return affinity{}, nil }

func restoreAffinity(*affinity) error { return nil }
