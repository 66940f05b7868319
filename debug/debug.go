// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go - cold-path diagnostics for harness and tools
//
// Purpose:
//   - Logs progress lines and failures from the benchmark harness, the
//     stress driver and the CLIs.
//   - Writes `PREFIX: message` straight to stderr through utils.PrintWarning.
//
// Notes:
//   - Avoids fmt and log to keep the footprint predictable while pinned
//     threads are running.
//
// ⚠️ Never invoke from Seqlock.Store or Seqlock.Load.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "seqlock/utils"

// DropError logs err under prefix. A nil err logs the bare prefix, which is
// how tagged warnings without a cause are reported.
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
		return
	}
	utils.PrintWarning(prefix + "\n")
}

// DropMessage logs a progress or state-change message under prefix.
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}
