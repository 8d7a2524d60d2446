// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlscan extracts display metadata from SQL text by keyword
// scanning. It deliberately does not parse SQL: the scanner looks for an
// identifier following FROM, INTO, or UPDATE and for the leading verb,
// which is enough for result labels and for deciding whether a result set
// can be edited. The TableScanner interface isolates this heuristic so a
// real statement parser can replace it later without touching callers.
package sqlscan

import (
	"fmt"
	"regexp"
	"strings"
)

// TableScanner resolves the origin table of a SQL statement, best-effort.
// An empty result means no table could be inferred.
type TableScanner interface {
	Table(sql string) string
}

var (
	// Identifier after FROM/INTO/UPDATE. Quoted names (double quotes or
	// backticks) run to the closing quote and may contain spaces; bare
	// names are optionally schema-qualified.
	reTable = regexp.MustCompile("(?i)\\b(?:FROM|INTO|UPDATE)\\s+(?:\"([^\"]+)\"|`([^`]+)`|([A-Za-z_][A-Za-z0-9_$]*(?:\\.[A-Za-z_][A-Za-z0-9_$]*)?))")
	reVerb  = regexp.MustCompile(`(?i)^\s*([A-Za-z]+)`)
)

// Scanner is the regex-based TableScanner used in production.
type Scanner struct{}

// New returns the default keyword scanner.
func New() Scanner { return Scanner{} }

// Table returns the first identifier following a FROM, INTO, or UPDATE
// keyword, or "" when none is found. Statements without a table reference
// (e.g. "SELECT 1") yield "" and disable editing downstream.
func (Scanner) Table(sql string) string {
	m := reTable.FindStringSubmatch(sql)
	if m == nil {
		return ""
	}
	for _, group := range m[1:] {
		if group != "" {
			return group
		}
	}
	return ""
}

// Verb returns the leading SQL keyword of a statement, upper-cased.
func Verb(sql string) string {
	m := reVerb.FindStringSubmatch(sql)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// rowlessVerbs lead statements that never produce a result set; their
// outcome is an affected-row count.
var rowlessVerbs = map[string]bool{
	"INSERT":   true,
	"UPDATE":   true,
	"DELETE":   true,
	"REPLACE":  true,
	"CREATE":   true,
	"DROP":     true,
	"ALTER":    true,
	"TRUNCATE": true,
	"SET":      true,
	"USE":      true,
	"GRANT":    true,
	"REVOKE":   true,
}

// RowlessStatement reports whether a statement's leading verb never
// yields rows, so a session can run it for its affected-row count alone.
func RowlessStatement(sql string) bool {
	return rowlessVerbs[Verb(sql)]
}

// knownVerbs are the verbs worth surfacing in a result label.
var knownVerbs = map[string]bool{
	"SELECT": true,
	"INSERT": true,
	"UPDATE": true,
	"DELETE": true,
	"CREATE": true,
	"DROP":   true,
	"ALTER":  true,
}

// Label derives a human label for the n-th statement of a multi-statement
// submission: "VERB table" when both are resolvable, "VERB" when only the
// verb is, and "Statement N" otherwise.
func Label(sql string, n int) string {
	verb := Verb(sql)
	if !knownVerbs[verb] {
		return fmt.Sprintf("Statement %d", n)
	}
	if table := (Scanner{}).Table(sql); table != "" {
		return verb + " " + table
	}
	return verb
}
