package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Shrike-Security/shrike-guard-go/config"
	"github.com/Shrike-Security/shrike-guard-go/internal/keychain"
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

// loadConfig resolves the effective configuration: a config file if given,
// otherwise the environment, with the keychain as the API key fallback.
func loadConfig(configFile, endpoint, failMode string, timeout time.Duration) (config.Config, error) {
	var cfg config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.FromEnv(os.LookupEnv)
	}
	if err != nil {
		return config.Config{}, err
	}

	if cfg.ShrikeAPIKey == "" {
		if store, kerr := keychain.Open(); kerr == nil {
			if key, kerr := store.LoadAPIKey(); kerr == nil {
				cfg.ShrikeAPIKey = key
			}
		}
	}

	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if failMode != "" {
		mode, err := config.ParseFailMode(failMode)
		if err != nil {
			return config.Config{}, err
		}
		cfg.FailMode = mode
	}
	if timeout > 0 {
		cfg.ScanTimeout = timeout
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newScanClient builds a scan client from the resolved configuration.
func newScanClient(cfg config.Config) (*scan.Client, error) {
	if cfg.ShrikeAPIKey == "" {
		return nil, fmt.Errorf("no Shrike API key: set %s or run 'shrike-guard auth login'", config.EnvShrikeAPIKey)
	}
	return scan.New(cfg.ShrikeAPIKey,
		scan.WithEndpoint(cfg.Endpoint),
		scan.WithTimeout(cfg.ScanTimeout),
	), nil
}
