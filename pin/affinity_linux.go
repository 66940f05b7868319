// affinity_linux.go - Linux CPU affinity via sched_setaffinity(2)

//go:build linux

package pin

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Supported reports whether SetAffinity actually binds threads here.
const Supported = true

// maxCPU is the number of CPUs a unix.CPUSet can describe.
const maxCPU = int(unsafe.Sizeof(unix.CPUSet{})) * 8

// SetAffinity binds the calling OS thread to cpu. A negative cpu leaves the
// thread unpinned. Callers must hold runtime.LockOSThread, otherwise the
// goroutine may migrate to an unpinned thread.
func SetAffinity(cpu int) error {
	if cpu < 0 {
		return nil
	}
	if cpu >= maxCPU {
		return fmt.Errorf("pin: cpu %d out of range [0,%d)", cpu, maxCPU)
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)

	// pid 0 targets the calling thread.
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("pin: sched_setaffinity cpu %d: %w", cpu, err)
	}
	return nil
}

type affinity = unix.CPUSet

// currentAffinity snapshots the calling thread's CPU mask.
func currentAffinity() (affinity, error) {
	var set unix.CPUSet
	err := unix.SchedGetaffinity(0, &set)
	return set, err
}

// restoreAffinity reapplies a mask taken by currentAffinity.
func restoreAffinity(set *affinity) error {
	if err := unix.SchedSetaffinity(0, set); err != nil {
		return fmt.Errorf("pin: restore affinity: %w", err)
	}
	return nil
}
