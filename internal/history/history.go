// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package history records every attempted statement as an audit trail.
// Entries are appended to a JSON-lines file in the XDG state directory,
// one object per line, so the log survives crashes mid-write and can be
// tailed with standard tools. Failed statements are recorded with a zero
// row count; the append happens whether or not the statement succeeded.
package history

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"querydesk/cli/internal/xdg"
)

// Entry is one attempted statement.
type Entry struct {
	Connection string    `json:"connection"`
	Statement  string    `json:"statement"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	RowCount   int       `json:"row_count"`
	At         time.Time `json:"at"`
}

// Sink receives one entry per attempted statement.
type Sink interface {
	Append(e Entry) error
}

// Store is a file-backed Sink.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore opens the default history store in the XDG state dir.
func NewStore() (*Store, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(filepath.Join(dir, "history.jsonl")), nil
}

// NewStoreAt opens a history store at an explicit path. Used by tests.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Append writes one entry to the log. Missing timestamps are filled in.
func (s *Store) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.At.IsZero() {
		e.At = time.Now()
	}
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}

// Recent returns up to n entries, newest last. Lines that fail to decode
// are skipped rather than aborting the read.
func (s *Store) Recent(n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// Clear truncates the history log.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
