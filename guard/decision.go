package guard

import "github.com/Shrike-Security/shrike-guard-go/config"

// Decision is the fail-mode policy's output for one outcome.
type Decision string

const (
	// Proceed lets the wrapped provider call run.
	Proceed Decision = "proceed"
	// RaiseBlocked surfaces a BlockedError; the provider is never called.
	RaiseBlocked Decision = "raise_blocked"
	// RaiseScanError surfaces a ScanError; the provider is never called.
	RaiseScanError Decision = "raise_scan_error"
)

// Decide applies the fail-mode policy table to an outcome.
//
// A blocked outcome is never suppressed by fail mode: fail-open governs only
// the scanner's own unavailability, not a positive threat detection.
//
//	outcome  | open           | closed
//	allowed  | Proceed        | Proceed
//	blocked  | RaiseBlocked   | RaiseBlocked
//	failed   | Proceed        | RaiseScanError
func Decide(o Outcome, mode config.FailMode) Decision {
	switch o.Status {
	case StatusBlocked:
		return RaiseBlocked
	case StatusFailed:
		if mode == config.FailClosed {
			return RaiseScanError
		}
		return Proceed
	default:
		return Proceed
	}
}
