package guard

import (
	"fmt"

	"github.com/Shrike-Security/shrike-guard-go/scan"
)

// BlockedError is returned when the scanner positively identified a threat.
// It is never retried and never suppressed by fail mode.
type BlockedError struct {
	Reason          string
	ThreatType      string
	Severity        string
	Confidence      float64
	ConfidenceLevel string
	Violations      []scan.Violation
}

func (e *BlockedError) Error() string {
	if e.ThreatType != "" {
		return fmt.Sprintf("shrike: request blocked (%s): %s", e.ThreatType, e.Reason)
	}
	return fmt.Sprintf("shrike: request blocked: %s", e.Reason)
}

// ScanError is returned under fail-closed mode when the scan itself could
// not be completed. Cause wraps the transport error for diagnostics.
type ScanError struct {
	Cause error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("shrike: scan failed and fail_mode is closed: %v", e.Cause)
}

func (e *ScanError) Unwrap() error {
	return e.Cause
}

// blockedError builds a BlockedError from a blocked outcome.
func blockedError(o Outcome) *BlockedError {
	return &BlockedError{
		Reason:          o.Reason,
		ThreatType:      o.ThreatType,
		Severity:        o.Severity,
		Confidence:      o.Confidence,
		ConfidenceLevel: o.ConfidenceLevel,
		Violations:      o.Violations,
	}
}
