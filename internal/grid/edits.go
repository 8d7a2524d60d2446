// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grid holds pending cell edits for a fetched result page and
// reconciles them back into row-targeted UPDATE statements against the
// originating table.
//
// Editing is a capability, not a right: it is available only when the
// origin table of the result set could be inferred from the source
// statement. When inference fails the edit session is read-only and no
// pending edits can be created.
package grid

import (
	"fmt"

	qerrors "querydesk/cli/internal/errors"
	"querydesk/cli/internal/session"
	"querydesk/cli/internal/sqlscan"
)

// EditKey identifies one editable cell by its row position within the
// current page and its column name.
type EditKey struct {
	Row    int
	Column string
}

// PendingEdit is one uncommitted cell change. Original is the snapshot of
// the row as originally fetched, used to derive the row identity.
type PendingEdit struct {
	Key      EditKey
	NewValue any
	Original session.Row
}

// EditSet stores pending edits in insertion order with at most one edit
// per cell; a later edit for the same cell overwrites the earlier value
// but keeps its place in the order.
type EditSet struct {
	order []EditKey
	edits map[EditKey]PendingEdit
}

// NewEditSet returns an empty edit set.
func NewEditSet() *EditSet {
	return &EditSet{edits: make(map[EditKey]PendingEdit)}
}

// Set records a pending edit for a cell.
func (s *EditSet) Set(edit PendingEdit) {
	if _, exists := s.edits[edit.Key]; !exists {
		s.order = append(s.order, edit.Key)
	}
	s.edits[edit.Key] = edit
}

// All returns the pending edits in insertion order.
func (s *EditSet) All() []PendingEdit {
	out := make([]PendingEdit, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.edits[key])
	}
	return out
}

// Len reports the number of pending edits.
func (s *EditSet) Len() int { return len(s.order) }

// ClearRow drops all pending edits for one row.
func (s *EditSet) ClearRow(row int) {
	kept := s.order[:0]
	for _, key := range s.order {
		if key.Row == row {
			delete(s.edits, key)
			continue
		}
		kept = append(kept, key)
	}
	s.order = kept
}

// Clear drops every pending edit.
func (s *EditSet) Clear() {
	s.order = nil
	s.edits = make(map[EditKey]PendingEdit)
}

// EditSession tracks edits against one fetched result page.
type EditSession struct {
	// Table is the inferred origin table; empty when inference failed.
	Table string

	columns  []string
	snapshot []session.Row
	edits    *EditSet
}

// NewEditSession builds an edit session for a result produced by
// sourceSQL. The origin table is inferred from the statement text via the
// scanner; when no table can be inferred the session is read-only.
func NewEditSession(result *session.Result, sourceSQL string, scanner sqlscan.TableScanner) *EditSession {
	snapshot := make([]session.Row, len(result.Rows))
	for i, row := range result.Rows {
		copied := make(session.Row, len(row))
		for col, val := range row {
			copied[col] = val
		}
		snapshot[i] = copied
	}
	return &EditSession{
		Table:    scanner.Table(sourceSQL),
		columns:  append([]string(nil), result.Columns...),
		snapshot: snapshot,
		edits:    NewEditSet(),
	}
}

// Editable reports whether cell edits may be created.
func (es *EditSession) Editable() bool { return es.Table != "" }

// SetCell records a pending edit for the cell at (row, column).
func (es *EditSession) SetCell(row int, column string, value any) error {
	if !es.Editable() {
		return qerrors.New(qerrors.EditDisabled, "origin table unknown; result set is read-only")
	}
	if row < 0 || row >= len(es.snapshot) {
		return qerrors.New(qerrors.EditDisabled, fmt.Sprintf("row %d out of range", row))
	}
	found := false
	for _, col := range es.columns {
		if col == column {
			found = true
			break
		}
	}
	if !found {
		return qerrors.New(qerrors.EditDisabled, fmt.Sprintf("unknown column %q", column))
	}
	es.edits.Set(PendingEdit{
		Key:      EditKey{Row: row, Column: column},
		NewValue: value,
		Original: es.snapshot[row],
	})
	return nil
}

// Pending returns the pending edits in insertion order.
func (es *EditSession) Pending() []PendingEdit { return es.edits.All() }

// Columns returns the column order of the originating result.
func (es *EditSession) Columns() []string { return es.columns }
