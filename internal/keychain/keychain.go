// Package keychain stores the Shrike API key in the OS credential store so
// it never has to live in shell history or config files.
package keychain

import (
	"errors"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "shrike-guard"

// keyAPIKey is the item key for the stored Shrike API key.
const keyAPIKey = "shrike_api_key"

// ErrNotFound is returned when no API key has been stored.
var ErrNotFound = errors.New("no stored API key")

// Store provides thread-safe access to the stored Shrike API key.
type Store struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// Open opens the OS credential store.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
		// File fallback keeps headless Linux environments working; the
		// native keychain is preferred where available.
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir: "~/.shrike-guard/keyring",
		FilePasswordFunc: func(string) (string, error) {
			return ServiceName, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return &Store{ring: ring}, nil
}

// SaveAPIKey stores the Shrike API key.
func (s *Store) SaveAPIKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key == "" {
		return errors.New("empty API key")
	}
	return s.ring.Set(keyring.Item{Key: keyAPIKey, Data: []byte(key)})
}

// LoadAPIKey retrieves the stored Shrike API key.
func (s *Store) LoadAPIKey() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.ring.Get(keyAPIKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// Clear removes the stored Shrike API key. Clearing an empty store is not
// an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ring.Remove(keyAPIKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
