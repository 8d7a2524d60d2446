// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package splitter turns a submitted SQL buffer into individual statements.
// Splitting is purely textual: ';' is the sole separator and no attempt is
// made to protect semicolons inside string literals or comments. This is a
// known limitation of the tool, not a defect; buffers that need embedded
// semicolons should be run as an explicit selection, which is always
// executed verbatim as a single statement.
package splitter

import "strings"

// Statement is a single SQL command extracted from a submitted buffer.
// Position is the 1-based index of the statement within the submission.
// Statements are immutable once produced.
type Statement struct {
	Text     string
	Position int
}

// Submission is a raw editor buffer plus an optional explicit selection.
// When Selection is non-empty it is executed verbatim as one statement,
// regardless of embedded separators; only the full buffer is split.
type Submission struct {
	Buffer    string
	Selection string
}

// Split divides raw text into trimmed statements on ';' separators,
// discarding empty fragments produced by leading, trailing, or doubled
// separators. It is a pure function: identical input yields identical
// output. The result is empty only when the input holds no SQL at all.
func Split(text string) []Statement {
	fragments := strings.Split(text, ";")
	statements := make([]Statement, 0, len(fragments))
	for _, fragment := range fragments {
		trimmed := strings.TrimSpace(fragment)
		if trimmed == "" {
			continue
		}
		statements = append(statements, Statement{
			Text:     trimmed,
			Position: len(statements) + 1,
		})
	}
	return statements
}

// Resolve produces the statements to execute for a submission.
// An explicit selection bypasses splitting entirely; otherwise the buffer
// is split. A buffer with no separator, or exactly one non-empty fragment,
// resolves to a single statement.
func (s Submission) Resolve() []Statement {
	if sel := strings.TrimSpace(s.Selection); sel != "" {
		return []Statement{{Text: sel, Position: 1}}
	}
	return Split(s.Buffer)
}

// IsMulti reports whether the submission resolves to more than one statement.
func (s Submission) IsMulti() bool {
	return len(s.Resolve()) > 1
}
