// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package runner

import (
	"querydesk/cli/internal/session"
	"querydesk/cli/internal/splitter"
)

// EnvelopeKind discriminates single- and multi-statement envelopes.
// The kind is fixed at construction and never mixed.
type EnvelopeKind int

const (
	// EnvelopeSingle wraps exactly one statement's result.
	EnvelopeSingle EnvelopeKind = iota + 1
	// EnvelopeMulti wraps an ordered sequence of per-statement results.
	EnvelopeMulti
)

// StatementResult pairs a statement with its execution result and a
// display label derived from the statement's leading verb and table.
type StatementResult struct {
	Statement splitter.Statement
	Label     string
	Result    *session.Result
}

// Envelope is the uniform container handed to the presentation layer.
// An explicit Kind replaces the alternative of signaling "many results"
// with an empty sentinel result, which would be ambiguous for single
// queries that legitimately return zero columns.
type Envelope struct {
	Kind   EnvelopeKind
	single StatementResult
	multi  []StatementResult
}

// NewSingleEnvelope wraps one statement result.
func NewSingleEnvelope(sr StatementResult) *Envelope {
	return &Envelope{Kind: EnvelopeSingle, single: sr}
}

// NewMultiEnvelope wraps an ordered list of statement results.
func NewMultiEnvelope(results []StatementResult) *Envelope {
	return &Envelope{Kind: EnvelopeMulti, multi: results}
}

// Single returns the sole result of a single-statement envelope.
// It panics if called on a multi envelope; check Kind first.
func (e *Envelope) Single() StatementResult {
	if e.Kind != EnvelopeSingle {
		panic("runner: Single() called on multi envelope")
	}
	return e.single
}

// Results returns the ordered per-statement results of a multi envelope.
// It panics if called on a single envelope; check Kind first.
func (e *Envelope) Results() []StatementResult {
	if e.Kind != EnvelopeMulti {
		panic("runner: Results() called on single envelope")
	}
	return e.multi
}
