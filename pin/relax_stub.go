// relax_stub.go - no-op Relax for builds without cgo, with noasm, or on
// architectures without a dedicated spin-wait instruction.

//go:build !cgo || noasm || !(amd64 || arm64)

package pin

// Relax is a no-op on this platform; callers keep spinning at full speed.
//
//go:nosplit
func Relax() {}
