package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of a shrike.yaml file. scan_timeout is in
// seconds to match the other SDKs' config files.
type fileConfig struct {
	APIKey       string   `yaml:"api_key"`
	ShrikeAPIKey string   `yaml:"shrike_api_key"`
	Endpoint     string   `yaml:"shrike_endpoint"`
	FailMode     string   `yaml:"fail_mode"`
	ScanTimeout  *float64 `yaml:"scan_timeout"`
}

// LoadFile loads a Config from a YAML file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML bytes into a Config.
func Parse(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parsing config YAML: %w", err)
	}

	cfg := Default()
	cfg.APIKey = fc.APIKey
	cfg.ShrikeAPIKey = fc.ShrikeAPIKey
	if fc.Endpoint != "" {
		cfg.Endpoint = fc.Endpoint
	}
	if fc.FailMode != "" {
		mode, err := ParseFailMode(fc.FailMode)
		if err != nil {
			return Config{}, fmt.Errorf("validating config: %w", err)
		}
		cfg.FailMode = mode
	}
	if fc.ScanTimeout != nil {
		if *fc.ScanTimeout <= 0 {
			return Config{}, fmt.Errorf("validating config: scan_timeout must be positive")
		}
		cfg.ScanTimeout = time.Duration(*fc.ScanTimeout * float64(time.Second))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
