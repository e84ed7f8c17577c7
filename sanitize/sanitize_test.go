package sanitize

import "testing"

func TestNormalizeThreatType(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"prompt_injection", ThreatPromptInjection},
		{"instruction_override", ThreatPromptInjection},
		{"role_hijacking", ThreatPromptInjection},
		{"jailbreak_attempt", ThreatJailbreak},
		{"tonality_drift_hostile", ThreatJailbreak},
		{"system_prompt_extraction", ThreatSystemPromptLeak},
		{"credential_extraction", ThreatDataExfiltration},
		{"tautology_or", ThreatSQLInjection},
		{"union_injection", ThreatSQLInjection},
		{"directory_traversal", ThreatPathTraversal},
		{"aws_key", ThreatSecretsExposure},
		{"unexpected_pii_leakage", ThreatPIIExposure},
		{"suspicious_tld", ThreatBlockedDomain},
		{"reverse_shell", ThreatMaliciousCode},
		{"authority_claim", ThreatSocialEngineering},
		{"size_limit", ThreatSizeLimitExceeded},
		{"timeout", ThreatScanError},

		// Case and separator normalization
		{"Prompt-Injection", ThreatPromptInjection},
		{"JAILBREAK", ThreatJailbreak},

		// Unknown and empty labels
		{"novel_attack_v2", ThreatUnknown},
		{"", ThreatUnknown},
	}

	for _, tc := range tests {
		got := NormalizeThreatType(tc.raw)
		if got != tc.expected {
			t.Errorf("NormalizeThreatType(%q): expected %s, got %s", tc.raw, tc.expected, got)
		}
	}
}

func TestGuidance(t *testing.T) {
	if g := Guidance(ThreatSQLInjection); g == "" {
		t.Error("expected guidance for sql_injection")
	}
	// Unknown types fall back to the generic message
	if g := Guidance("never_heard_of_it"); g != Guidance(ThreatUnknown) {
		t.Errorf("expected generic guidance for unknown type, got %q", g)
	}
}

func TestDeriveSeverity(t *testing.T) {
	tests := []struct {
		threatType string
		raw        string
		expected   string
	}{
		// Backend-provided severity wins when valid
		{ThreatPromptInjection, "low", "low"},
		{ThreatSQLInjection, "HIGH", "high"},

		// Invalid or missing severity derives from the threat type
		{ThreatSQLInjection, "", "critical"},
		{ThreatSecretsExposure, "severe", "critical"},
		{ThreatBlockedDomain, "", "medium"},
		{ThreatSizeLimitExceeded, "", "low"},

		// Unknown threat type defaults to medium
		{"mystery", "", "medium"},
	}

	for _, tc := range tests {
		got := DeriveSeverity(tc.threatType, tc.raw)
		if got != tc.expected {
			t.Errorf("DeriveSeverity(%q, %q): expected %s, got %s",
				tc.threatType, tc.raw, tc.expected, got)
		}
	}
}

func TestBucketConfidence(t *testing.T) {
	tests := []struct {
		score    float64
		ok       bool
		expected string
	}{
		{0.97, true, "high"},
		{0.9, true, "high"},
		{0.89, true, "medium"},
		{0.7, true, "medium"},
		{0.69, true, "low"},
		{0, true, "low"},
		{0, false, "medium"},
	}

	for _, tc := range tests {
		got := BucketConfidence(tc.score, tc.ok)
		if got != tc.expected {
			t.Errorf("BucketConfidence(%v, %v): expected %s, got %s",
				tc.score, tc.ok, tc.expected, got)
		}
	}
}
