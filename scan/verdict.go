package scan

import (
	"encoding/json"

	"github.com/Shrike-Security/shrike-guard-go/sanitize"
)

// Violation is a single specific finding reported by the backend.
type Violation struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Verdict is the sanitized result of one successful scan round trip.
type Verdict struct {
	// Safe reports whether the content may be forwarded to the provider.
	Safe bool `json:"safe"`

	// Reason explains the verdict. For unsafe verdicts it defaults to the
	// per-threat guidance when the backend omits one.
	Reason string `json:"reason,omitempty"`

	// ThreatType is the canonical threat type (set iff unsafe).
	ThreatType string `json:"threat_type,omitempty"`

	// Severity is critical, high, medium, or low (set iff unsafe).
	Severity string `json:"severity,omitempty"`

	// Confidence is the detection confidence in [0,1] (set iff unsafe).
	Confidence float64 `json:"confidence,omitempty"`

	// ConfidenceLevel is the bucketed confidence: high, medium, or low.
	ConfidenceLevel string `json:"confidence_level,omitempty"`

	// Guidance is the user-facing advice for the detected threat.
	Guidance string `json:"guidance,omitempty"`

	// Violations lists specific findings, when the backend reports them.
	Violations []Violation `json:"violations,omitempty"`
}

// wireResult mirrors the backend response. Unknown fields are ignored;
// internal detection fields (matched patterns, layer details, reasoning)
// are dropped by construction since they are never decoded.
type wireResult struct {
	Safe       *bool       `json:"safe"`
	Reason     string      `json:"reason"`
	ThreatType string      `json:"threat_type"`
	Severity   string      `json:"severity"`
	Confidence *float64    `json:"confidence"`
	Violations []Violation `json:"violations"`
}

// decodeVerdict parses a backend response body into a sanitized Verdict.
// A body that is not a JSON object, or one missing the safe flag, is a
// protocol error: the backend contract requires it on every response.
func decodeVerdict(body []byte) (*Verdict, error) {
	var raw wireResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, protocolError("malformed scan response: %v", err)
	}
	if raw.Safe == nil {
		return nil, protocolError("scan response missing safe flag")
	}

	if *raw.Safe {
		return &Verdict{Safe: true, Reason: raw.Reason}, nil
	}

	threatType := sanitize.NormalizeThreatType(raw.ThreatType)
	guidance := sanitize.Guidance(threatType)

	v := &Verdict{
		Safe:       false,
		ThreatType: threatType,
		Severity:   sanitize.DeriveSeverity(threatType, raw.Severity),
		Guidance:   guidance,
		Reason:     raw.Reason,
		Violations: raw.Violations,
	}
	if v.Reason == "" {
		v.Reason = guidance
	}
	if raw.Confidence != nil {
		v.Confidence = *raw.Confidence
	}
	v.ConfidenceLevel = sanitize.BucketConfidence(v.Confidence, raw.Confidence != nil)
	return v, nil
}
