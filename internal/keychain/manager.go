// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for querydesk.
// This module manages all interactions with the OS keychain/credential store,
// providing a unified interface for storing and retrieving the DSNs (including
// credentials) of saved connections.
//
// The package supports macOS Keychain, Windows Credential Manager, and the
// freedesktop Secret Service on Linux, with thread-safe operations and proper
// error handling.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "querydesk"

// dsnKey returns the keychain key for a connection's DSN secret.
func dsnKey(connection string) string {
	return "conn_dsn_" + connection
}

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.PassBackend,
		}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.PassBackend,
		}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	return keyring.Open(cfg)
}

// SaveConnectionDSN stores a connection's full DSN (credentials included)
// in the keychain. This method is thread-safe.
func (m *Manager) SaveConnectionDSN(connection, dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: dsnKey(connection), Data: []byte(dsn)})
}

// LoadConnectionDSN retrieves a connection's DSN from the keychain.
// This method is thread-safe.
func (m *Manager) LoadConnectionDSN(connection string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(dsnKey(connection))
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", errors.New("empty DSN for connection " + connection)
	}
	return string(it.Data), nil
}

// DeleteConnectionDSN removes a connection's DSN from the keychain.
// This method is thread-safe.
func (m *Manager) DeleteConnectionDSN(connection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Remove(dsnKey(connection))
}
