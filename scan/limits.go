package scan

import "fmt"

// MaxContentSize is the client-side limit on combined scan content, matching
// the backend's request body limit. Oversized content is rejected before the
// network round trip.
const MaxContentSize = 100 * 1024

// checkContentSize returns a synthetic blocked verdict when the combined
// content exceeds MaxContentSize, nil otherwise.
func checkContentSize(content, context string) *Verdict {
	total := len(content) + len(context)
	if total <= MaxContentSize {
		return nil
	}
	return &Verdict{
		Safe:            false,
		Reason:          fmt.Sprintf("Content too large (%dKB > %dKB limit)", total/1024, MaxContentSize/1024),
		ThreatType:      "size_limit_exceeded",
		Severity:        "low",
		Confidence:      1.0,
		ConfidenceLevel: "high",
		Guidance:        "The content exceeds the maximum allowed size.",
		Violations: []Violation{
			{
				Type:        "size_limit",
				Description: fmt.Sprintf("Content exceeds maximum size of %dKB", MaxContentSize/1024),
			},
		},
	}
}
