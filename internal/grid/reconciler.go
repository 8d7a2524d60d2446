// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package grid

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"querydesk/cli/internal/dsn"
	qerrors "querydesk/cli/internal/errors"
	"querydesk/cli/internal/session"
)

// TargetKind tells how a row is identified in an UPDATE's WHERE clause.
type TargetKind int

const (
	// ByPrimaryKey identifies the row through its "id" column.
	ByPrimaryKey TargetKind = iota + 1
	// ByFullRowMatch identifies the row by matching every original
	// column/value pair. This is a heuristic, not a unique key: when the
	// table holds duplicate rows the UPDATE affects all of them.
	ByFullRowMatch
)

// UpdateTarget is the row-identity mode chosen for one UPDATE.
type UpdateTarget struct {
	Kind TargetKind
	ID   any // set for ByPrimaryKey
}

// RowUpdate is one planned per-row UPDATE.
type RowUpdate struct {
	Row    int
	SQL    string
	Target UpdateTarget
	// AmbiguityWarning is set for full-row-match targets, where duplicate
	// physical rows would all be updated. No detection is attempted.
	AmbiguityWarning bool
}

// Reconciler turns pending cell edits into per-row UPDATE statements and
// applies them. Each row's UPDATE is its own unit of work: no transaction
// wraps the batch, and a failure does not roll back rows already updated.
type Reconciler struct {
	Session session.Session
	// Database is the target database/schema triple component supplied by
	// the caller; it is passed through to the session rather than inferred
	// from the live connection's default.
	Database string
	// OnRefresh, when set, is invoked after a fully successful apply so
	// cached history/result views can reload.
	OnRefresh func()
}

// Plan produces one UPDATE per edited row, in first-edit order. The SET
// clause carries all edited columns of the row; the WHERE clause uses the
// "id" column when the original snapshot has one, else a conjunction of
// equality predicates over every original column/value pair.
func (r *Reconciler) Plan(es *EditSession) ([]RowUpdate, error) {
	if !es.Editable() {
		return nil, qerrors.New(qerrors.EditDisabled, "origin table unknown; nothing to reconcile")
	}

	engine := dsn.DBTypePostgreSQL
	if r.Session != nil {
		engine = r.Session.Engine()
	}

	// Group edits by row, preserving first-edit order of rows.
	byRow := make(map[int][]PendingEdit)
	var rowOrder []int
	for _, edit := range es.Pending() {
		if _, seen := byRow[edit.Key.Row]; !seen {
			rowOrder = append(rowOrder, edit.Key.Row)
		}
		byRow[edit.Key.Row] = append(byRow[edit.Key.Row], edit)
	}

	updates := make([]RowUpdate, 0, len(rowOrder))
	for _, row := range rowOrder {
		edits := byRow[row]
		original := edits[0].Original

		var set []string
		for _, edit := range edits {
			set = append(set, fmt.Sprintf("%s = %s",
				quoteIdent(engine, edit.Key.Column), literal(edit.NewValue)))
		}

		where, target, ambiguous := whereClause(engine, es.Columns(), original)
		updates = append(updates, RowUpdate{
			Row: row,
			SQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s",
				quoteQualified(engine, es.Table), strings.Join(set, ", "), where),
			Target:           target,
			AmbiguityWarning: ambiguous,
		})
	}
	return updates, nil
}

// Apply plans and executes the row updates sequentially. Each successful
// row clears its own pending edits immediately, so a mid-batch failure
// leaves only the unapplied rows pending. The refresh signal fires only
// after every row succeeded.
func (r *Reconciler) Apply(ctx context.Context, es *EditSession) error {
	updates, err := r.Plan(es)
	if err != nil {
		return err
	}

	for _, upd := range updates {
		if _, err := r.Session.ExecuteWrite(ctx, upd.SQL, r.Database); err != nil {
			return qerrors.Wrap(qerrors.UpdateFailed,
				fmt.Sprintf("row %d update failed; earlier rows in this batch are not rolled back", upd.Row), err)
		}
		es.edits.ClearRow(upd.Row)
	}

	if r.OnRefresh != nil {
		r.OnRefresh()
	}
	return nil
}

// whereClause derives the row-identity predicate from the original
// snapshot: a single id equality when the row carries an "id" field,
// otherwise a conjunction over all original columns in result order
// (columns absent from the snapshot are skipped).
func whereClause(engine dsn.DBType, columns []string, original session.Row) (string, UpdateTarget, bool) {
	if id, ok := original["id"]; ok {
		return fmt.Sprintf("%s = %s", quoteIdent(engine, "id"), literal(id)),
			UpdateTarget{Kind: ByPrimaryKey, ID: id}, false
	}

	ordered := append([]string(nil), columns...)
	if len(ordered) == 0 {
		for col := range original {
			ordered = append(ordered, col)
		}
		sort.Strings(ordered)
	}

	var predicates []string
	for _, col := range ordered {
		val, ok := original[col]
		if !ok {
			continue
		}
		if val == nil {
			predicates = append(predicates, fmt.Sprintf("%s IS NULL", quoteIdent(engine, col)))
		} else {
			predicates = append(predicates, fmt.Sprintf("%s = %s", quoteIdent(engine, col), literal(val)))
		}
	}
	return strings.Join(predicates, " AND "), UpdateTarget{Kind: ByFullRowMatch}, true
}

// literal renders a Go value as a SQL literal. Strings are single-quoted
// with embedded quotes doubled; nil becomes NULL.
func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "'" + val.Format(time.RFC3339Nano) + "'"
	default:
		return fmt.Sprint(val)
	}
}

// quoteIdent quotes a bare identifier for the engine: double quotes for
// PostgreSQL, backticks for MySQL, embedded quote characters doubled.
func quoteIdent(engine dsn.DBType, ident string) string {
	if engine == dsn.DBTypeMySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// quoteQualified quotes a possibly schema-qualified table name.
func quoteQualified(engine dsn.DBType, name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = quoteIdent(engine, part)
	}
	return strings.Join(parts, ".")
}
