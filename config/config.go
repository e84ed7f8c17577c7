// Package config holds the client configuration for the Shrike Guard SDK.
// A Config is populated once at construction time from explicit values, an
// injected environment reader, or a YAML file, and is read-only afterwards.
package config

import (
	"fmt"
	"strconv"
	"time"
)

// FailMode defines behavior when a scan operation cannot be completed.
//
// FailOpen allows the request to proceed. This is the default, suitable
// where availability is prioritized over strict security.
//
// FailClosed blocks the request with a scan error. Use it where blocking
// a potentially safe request is preferable to letting an unscanned one
// through.
type FailMode string

const (
	FailOpen   FailMode = "open"
	FailClosed FailMode = "closed"
)

// ParseFailMode converts a string into a FailMode.
func ParseFailMode(s string) (FailMode, error) {
	switch FailMode(s) {
	case FailOpen, FailClosed:
		return FailMode(s), nil
	default:
		return "", fmt.Errorf("invalid fail_mode %q (must be %q or %q)", s, FailOpen, FailClosed)
	}
}

// Default configuration values.
const (
	// DefaultScanTimeout accounts for backend cold starts.
	DefaultScanTimeout = 10 * time.Second
	DefaultFailMode    = FailOpen
	// DefaultEndpoint uses the load balancer. Override for VPC deployments.
	DefaultEndpoint = "https://api.shrikesecurity.com/agent"
)

// SDK identification sent with every scan request.
const (
	SDKName = "go"
)

// Environment variables recognized by FromEnv.
const (
	EnvShrikeAPIKey = "SHRIKE_API_KEY"
	EnvEndpoint     = "SHRIKE_ENDPOINT"
	EnvFailMode     = "SHRIKE_FAIL_MODE"
	EnvScanTimeout  = "SHRIKE_SCAN_TIMEOUT"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
)

// Config holds everything a guarded client needs at construction time.
// It is immutable after construction; concurrent reads need no locking.
type Config struct {
	// APIKey is the provider API key (OpenAI, Anthropic, or Gemini),
	// forwarded unchanged to the wrapped client.
	APIKey string

	// ShrikeAPIKey authenticates with the scan backend.
	ShrikeAPIKey string

	// Endpoint is the scan backend base URL.
	Endpoint string

	// FailMode governs behavior when the scan itself fails.
	FailMode FailMode

	// ScanTimeout bounds each scan round trip. It does not apply to the
	// wrapped provider call.
	ScanTimeout time.Duration
}

// Default returns a Config with all defaults applied and no keys set.
func Default() Config {
	return Config{
		Endpoint:    DefaultEndpoint,
		FailMode:    DefaultFailMode,
		ScanTimeout: DefaultScanTimeout,
	}
}

// FromEnv builds a Config from defaults overlaid with values from the
// given environment reader. Pass os.LookupEnv for the process environment;
// tests inject their own lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvShrikeAPIKey); ok {
		cfg.ShrikeAPIKey = v
	}
	if v, ok := lookup(EnvEndpoint); ok && v != "" {
		cfg.Endpoint = v
	}
	if v, ok := lookup(EnvFailMode); ok && v != "" {
		mode, err := ParseFailMode(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvFailMode, err)
		}
		cfg.FailMode = mode
	}
	if v, ok := lookup(EnvScanTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvScanTimeout, err)
		}
		cfg.ScanTimeout = d
	}

	return cfg, nil
}

// parseTimeout accepts either a Go duration ("2s", "500ms") or a float
// number of seconds ("2.5"), matching the SDK's historical configuration
// contract.
func parseTimeout(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("scan timeout must be positive, got %q", s)
		}
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid scan timeout %q", s)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("scan timeout must be positive, got %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Validate checks config integrity, applying defaults for unset fields.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.FailMode == "" {
		c.FailMode = DefaultFailMode
	}
	if c.FailMode != FailOpen && c.FailMode != FailClosed {
		return fmt.Errorf("invalid fail_mode %q", c.FailMode)
	}
	if c.ScanTimeout == 0 {
		c.ScanTimeout = DefaultScanTimeout
	}
	if c.ScanTimeout < 0 {
		return fmt.Errorf("scan_timeout must be positive")
	}
	return nil
}
