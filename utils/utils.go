package utils

import (
	"os"
	"strconv"
)

///////////////////////////////////////////////////////////////////////////////
// Number Formatting - For Diagnostic Lines
///////////////////////////////////////////////////////////////////////////////

// Itoa formats a signed integer in base 10 using a stack buffer.
func Itoa(n int) string {
	var buf [20]byte
	return string(strconv.AppendInt(buf[:0], int64(n), 10))
}

// Utoa formats an unsigned 64-bit integer in base 10.
func Utoa(n uint64) string {
	var buf [20]byte
	return string(strconv.AppendUint(buf[:0], n, 10))
}

// Ftoa formats f with a fixed number of decimals.
func Ftoa(f float64, decimals int) string {
	var buf [32]byte
	return string(strconv.AppendFloat(buf[:0], f, 'f', decimals, 64))
}

///////////////////////////////////////////////////////////////////////////////
// Output - Unbuffered Stderr Writes
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg to stderr in a single write call. Errors are
// dropped: there is nowhere left to report them.
func PrintWarning(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// PrintInfo writes msg to stdout in a single write call.
func PrintInfo(msg string) {
	_, _ = os.Stdout.WriteString(msg)
}
