// Package guard implements the request-interception engine: it interprets
// scan results, applies the fail-mode policy, and wraps provider calls so
// that no request reaches a provider before its scan outcome is known.
package guard

import (
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

// Status discriminates the variants of an Outcome.
type Status string

const (
	// StatusAllowed means the backend scanned the content and found it safe.
	StatusAllowed Status = "allowed"
	// StatusBlocked means the backend positively identified a threat.
	StatusBlocked Status = "blocked"
	// StatusFailed means the scan itself could not be completed.
	StatusFailed Status = "failed"
)

// Outcome is the interpreted result of one scan: exactly one of the three
// statuses, with the fields of the active variant populated. It is created
// fresh per call and consumed by Decide.
type Outcome struct {
	Status Status

	// Blocked variant fields.
	Reason          string
	ThreatType      string
	Severity        string
	Confidence      float64
	ConfidenceLevel string
	Violations      []scan.Violation

	// Failed variant field. Cause preserves the transport error for
	// diagnostics; it is never exposed as a block reason.
	Cause error
}

// Allowed returns the allowed outcome.
func Allowed() Outcome {
	return Outcome{Status: StatusAllowed}
}

// Failed returns a failed outcome preserving the underlying cause.
func Failed(cause error) Outcome {
	return Outcome{Status: StatusFailed, Cause: cause}
}

// Interpret classifies one scan round trip into an Outcome. It is pure:
// no retries, no policy, no I/O. Every transport failure maps to
// StatusFailed regardless of its kind; the kind survives in Cause.
func Interpret(v *scan.Verdict, err error) Outcome {
	if err != nil {
		return Failed(err)
	}
	if v.Safe {
		return Allowed()
	}
	return Outcome{
		Status:          StatusBlocked,
		Reason:          v.Reason,
		ThreatType:      v.ThreatType,
		Severity:        v.Severity,
		Confidence:      v.Confidence,
		ConfidenceLevel: v.ConfidenceLevel,
		Violations:      v.Violations,
	}
}
