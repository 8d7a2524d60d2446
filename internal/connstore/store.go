// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package connstore persists named connection descriptors as JSON in the
// XDG config dir. Descriptors hold only non-secret settings; the DSN with
// credentials lives in the OS keychain under the connection's name.
package connstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"querydesk/cli/internal/dsn"
	qerrors "querydesk/cli/internal/errors"
	"querydesk/cli/internal/xdg"
)

// Connection describes one saved database connection.
type Connection struct {
	Name          string     `json:"name"`
	Engine        dsn.DBType `json:"engine"`
	Host          string     `json:"host"`
	Port          string     `json:"port"`
	User          string     `json:"user"`
	Database      string     `json:"database"`
	TLS           bool       `json:"tls"`
	LastConnected bool       `json:"last_connected"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FromDSNInfo builds a descriptor from parsed DSN info. The TLS flag is
// derived from the sslmode/tls params when present.
func FromDSNInfo(name string, info *dsn.DSNInfo) Connection {
	tls := false
	if mode, ok := info.Params["sslmode"]; ok && mode != "disable" {
		tls = true
	}
	if mode, ok := info.Params["tls"]; ok && mode != "false" && mode != "skip-verify" {
		tls = true
	}
	return Connection{
		Name:     name,
		Engine:   info.Type,
		Host:     info.Host,
		Port:     info.Port,
		User:     info.User,
		Database: info.Database,
		TLS:      tls,
	}
}

// Store reads and writes the connections file.
type Store struct {
	path string
}

// NewStore opens the default store in the XDG config dir.
func NewStore() (*Store, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(filepath.Join(dir, "connections.json")), nil
}

// NewStoreAt opens a store at an explicit path. Used by tests.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// List returns all saved connections; a missing file yields an empty list.
func (s *Store) List() ([]Connection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var conns []Connection
	if err := json.Unmarshal(data, &conns); err != nil {
		return nil, err
	}
	return conns, nil
}

// Get returns the named connection.
func (s *Store) Get(name string) (Connection, error) {
	conns, err := s.List()
	if err != nil {
		return Connection{}, err
	}
	for _, c := range conns {
		if c.Name == name {
			return c, nil
		}
	}
	return Connection{}, qerrors.New(qerrors.ConnectionNotFound, "no connection named "+name)
}

// Save upserts a connection by name.
func (s *Store) Save(c Connection) error {
	conns, err := s.List()
	if err != nil {
		return err
	}
	now := time.Now()
	c.UpdatedAt = now

	replaced := false
	for i, existing := range conns {
		if existing.Name == c.Name {
			c.CreatedAt = existing.CreatedAt
			conns[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		c.CreatedAt = now
		conns = append(conns, c)
	}
	return s.write(conns)
}

// Remove deletes a connection by name.
func (s *Store) Remove(name string) error {
	conns, err := s.List()
	if err != nil {
		return err
	}
	kept := conns[:0]
	found := false
	for _, c := range conns {
		if c.Name == name {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return qerrors.New(qerrors.ConnectionNotFound, "no connection named "+name)
	}
	return s.write(kept)
}

// MarkConnected records the outcome of the most recent connect attempt.
func (s *Store) MarkConnected(name string, ok bool) error {
	conns, err := s.List()
	if err != nil {
		return err
	}
	for i := range conns {
		if conns[i].Name == name {
			conns[i].LastConnected = ok
			conns[i].UpdatedAt = time.Now()
			return s.write(conns)
		}
	}
	return qerrors.New(qerrors.ConnectionNotFound, "no connection named "+name)
}

// write persists the list with 0600 permissions.
func (s *Store) write(conns []Connection) error {
	b, err := json.MarshalIndent(conns, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}
