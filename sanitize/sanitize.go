// Package sanitize normalizes raw scan backend responses for external
// consumption. It maps the backend's internal threat labels onto a stable
// public set, derives severities, and buckets confidence scores so that
// detection thresholds are not exposed verbatim.
package sanitize

import "strings"

// Canonical threat types exposed to SDK users.
const (
	ThreatPromptInjection      = "prompt_injection"
	ThreatJailbreak            = "jailbreak"
	ThreatSystemPromptLeak     = "system_prompt_leak"
	ThreatDataExfiltration     = "data_exfiltration"
	ThreatSQLInjection         = "sql_injection"
	ThreatPathTraversal        = "path_traversal"
	ThreatSecretsExposure      = "secrets_exposure"
	ThreatPIIExposure          = "pii_exposure"
	ThreatBlockedDomain        = "blocked_domain"
	ThreatToxicity             = "toxicity"
	ThreatMaliciousCode        = "malicious_code"
	ThreatHarmfulIntent        = "harmful_intent"
	ThreatSocialEngineering    = "social_engineering"
	ThreatPrivilegeEscalation  = "privilege_escalation"
	ThreatDestructiveOperation = "destructive_operation"
	ThreatScanError            = "scan_error"
	ThreatSizeLimitExceeded    = "size_limit_exceeded"
	ThreatUnknown              = "unknown"
)

// threatTypeMap maps raw backend labels onto canonical threat types.
var threatTypeMap = map[string]string{
	// Prompt injection variants
	"prompt_injection":     ThreatPromptInjection,
	"injection":            ThreatPromptInjection,
	"inject":               ThreatPromptInjection,
	"instruction_override": ThreatPromptInjection,
	"role_hijacking":       ThreatPromptInjection,
	"context_manipulation": ThreatPromptInjection,
	"token_manipulation":   ThreatPromptInjection,
	"indirect_injection":   ThreatPromptInjection,
	"context_poisoning":    ThreatPromptInjection,
	"function_injection":   ThreatPromptInjection,
	"memory_injection":     ThreatPromptInjection,
	"topic_mismatch":       ThreatPromptInjection,
	// Jailbreak
	"jailbreak":                ThreatJailbreak,
	"jailbreak_attempt":        ThreatJailbreak,
	"safety_bypass":            ThreatJailbreak,
	"roleplay":                 ThreatJailbreak,
	"hypothetical":             ThreatJailbreak,
	"completion_baiting":       ThreatJailbreak,
	"override":                 ThreatJailbreak,
	"manipulate":               ThreatJailbreak,
	"tonality_drift_profanity": ThreatJailbreak,
	"tonality_drift_casual":    ThreatJailbreak,
	"tonality_drift_hostile":   ThreatJailbreak,
	// System prompt leak
	"system_prompt_leak":       ThreatSystemPromptLeak,
	"system_prompt_extraction": ThreatSystemPromptLeak,
	// Data exfiltration
	"data_exfiltration":      ThreatDataExfiltration,
	"exfiltration":           ThreatDataExfiltration,
	"exfiltrate":             ThreatDataExfiltration,
	"extract":                ThreatDataExfiltration,
	"data_leak":              ThreatDataExfiltration,
	"information_disclosure": ThreatDataExfiltration,
	"credential_extraction":  ThreatDataExfiltration,
	// SQL injection
	"sql_injection":   ThreatSQLInjection,
	"sqli":            ThreatSQLInjection,
	"tautology":       ThreatSQLInjection,
	"tautology_or":    ThreatSQLInjection,
	"tautology_and":   ThreatSQLInjection,
	"union_injection": ThreatSQLInjection,
	"stacked_query":   ThreatSQLInjection,
	// Path traversal
	"path_traversal":      ThreatPathTraversal,
	"directory_traversal": ThreatPathTraversal,
	"path_violation":      ThreatPathTraversal,
	"file_access":         ThreatPathTraversal,
	"sensitive_path":      ThreatPathTraversal,
	"sensitive_extension": ThreatPathTraversal,
	"blocked_extension":   ThreatPathTraversal,
	// Secrets
	"secrets_exposure":  ThreatSecretsExposure,
	"secrets":           ThreatSecretsExposure,
	"api_key":           ThreatSecretsExposure,
	"credential":        ThreatSecretsExposure,
	"sensitive_file":    ThreatSecretsExposure,
	"content_violation": ThreatSecretsExposure,
	"sensitive_content": ThreatSecretsExposure,
	"secret_key":        ThreatSecretsExposure,
	"aws_key":           ThreatSecretsExposure,
	"private_key":       ThreatSecretsExposure,
	// PII
	"pii_exposure":           ThreatPIIExposure,
	"pii":                    ThreatPIIExposure,
	"pii_leak":               ThreatPIIExposure,
	"personal_data":          ThreatPIIExposure,
	"pii_in_search":          ThreatPIIExposure,
	"pii_extraction":         ThreatPIIExposure,
	"ssn":                    ThreatPIIExposure,
	"credit_card":            ThreatPIIExposure,
	"email_exposure":         ThreatPIIExposure,
	"phone_number":           ThreatPIIExposure,
	"unexpected_pii_leakage": ThreatPIIExposure,
	// Domain blocking
	"blocked_domain":    ThreatBlockedDomain,
	"suspicious_tld":    ThreatBlockedDomain,
	"suspicious_domain": ThreatBlockedDomain,
	"malicious_url":     ThreatBlockedDomain,
	// Toxicity
	"toxicity":        ThreatToxicity,
	"harmful_content": ThreatToxicity,
	// Malicious code
	"malicious_content": ThreatMaliciousCode,
	"malicious_code":    ThreatMaliciousCode,
	"reverse_shell":     ThreatMaliciousCode,
	"web_shell":         ThreatMaliciousCode,
	"fork_bomb":         ThreatMaliciousCode,
	"crypto_miner":      ThreatMaliciousCode,
	"persistence":       ThreatMaliciousCode,
	"shell_injection":   ThreatMaliciousCode,
	// Harmful intent
	"harmful_intent":    ThreatHarmfulIntent,
	"dangerous_request": ThreatHarmfulIntent,
	// Social engineering
	"social_engineering": ThreatSocialEngineering,
	"emotional":          ThreatSocialEngineering,
	"authority_claim":    ThreatSocialEngineering,
	// Privilege escalation
	"privilege_escalation": ThreatPrivilegeEscalation,
	// Destructive operation
	"destructive_operation": ThreatDestructiveOperation,
	// Errors
	"scan_error":          ThreatScanError,
	"size_limit_exceeded": ThreatSizeLimitExceeded,
	"size_limit":          ThreatSizeLimitExceeded,
	"timeout":             ThreatScanError,
}

// guidance holds the user-facing message per canonical threat type.
var guidance = map[string]string{
	ThreatPromptInjection:      "This prompt contains patterns consistent with instruction override attempts.",
	ThreatJailbreak:            "This prompt attempts to bypass safety guidelines. The request has been blocked.",
	ThreatSystemPromptLeak:     "The response contains system prompt disclosure. The response has been blocked.",
	ThreatDataExfiltration:     "This prompt may attempt to extract sensitive information.",
	ThreatSQLInjection:         "This query contains potentially dangerous SQL patterns.",
	ThreatPathTraversal:        "This file path attempts to access directories outside the allowed scope.",
	ThreatSecretsExposure:      "This content contains patterns matching API keys, tokens, or credentials.",
	ThreatPIIExposure:          "This content contains personally identifiable information.",
	ThreatBlockedDomain:        "This web search targets a restricted domain.",
	ThreatToxicity:             "This content contains potentially harmful or inappropriate language.",
	ThreatMaliciousCode:        "This content contains patterns associated with malicious code.",
	ThreatHarmfulIntent:        "This request contains content associated with harmful intent.",
	ThreatSocialEngineering:    "This prompt contains social engineering patterns.",
	ThreatPrivilegeEscalation:  "This query attempts to escalate privileges or gain unauthorized access.",
	ThreatDestructiveOperation: "This query contains destructive operations. Review carefully.",
	ThreatScanError:            "The security scan could not be completed. Blocked as precaution.",
	ThreatSizeLimitExceeded:    "The content exceeds the maximum allowed size.",
	ThreatUnknown:              "A security concern was detected. Please review the content.",
}

// severity holds the default severity per canonical threat type.
// Ordering: critical > high > medium > low.
var severity = map[string]string{
	ThreatPromptInjection:      "high",
	ThreatJailbreak:            "high",
	ThreatSystemPromptLeak:     "high",
	ThreatDataExfiltration:     "high",
	ThreatSQLInjection:         "critical",
	ThreatPathTraversal:        "high",
	ThreatSecretsExposure:      "critical",
	ThreatPIIExposure:          "high",
	ThreatBlockedDomain:        "medium",
	ThreatToxicity:             "medium",
	ThreatMaliciousCode:        "critical",
	ThreatHarmfulIntent:        "high",
	ThreatSocialEngineering:    "medium",
	ThreatPrivilegeEscalation:  "critical",
	ThreatDestructiveOperation: "critical",
	ThreatScanError:            "medium",
	ThreatSizeLimitExceeded:    "low",
	ThreatUnknown:              "medium",
}

// NormalizeThreatType maps a raw backend threat label onto a canonical type.
func NormalizeThreatType(raw string) string {
	if raw == "" {
		return ThreatUnknown
	}
	normalized := strings.ReplaceAll(strings.ToLower(raw), "-", "_")
	if t, ok := threatTypeMap[normalized]; ok {
		return t
	}
	return ThreatUnknown
}

// Guidance returns the user-facing message for a canonical threat type.
func Guidance(threatType string) string {
	if g, ok := guidance[threatType]; ok {
		return g
	}
	return guidance[ThreatUnknown]
}

// DeriveSeverity validates a backend-provided severity and uses it when
// valid, otherwise derives one from the canonical threat type.
func DeriveSeverity(threatType, raw string) string {
	switch strings.ToLower(raw) {
	case "critical", "high", "medium", "low":
		return strings.ToLower(raw)
	}
	if s, ok := severity[threatType]; ok {
		return s
	}
	return "medium"
}

// BucketConfidence converts a raw confidence score into a coarse level so
// exact detection thresholds are not exposed. ok reports whether the
// backend supplied a score at all.
func BucketConfidence(score float64, ok bool) string {
	switch {
	case !ok:
		return "medium"
	case score >= 0.9:
		return "high"
	case score >= 0.7:
		return "medium"
	default:
		return "low"
	}
}
