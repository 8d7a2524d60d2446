// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package runner executes submitted SQL buffers against a session and
// folds the outcomes into a result envelope for presentation.
//
// Statements execute strictly in submission order, one at a time; the
// session is single-flight and the runner never overlaps calls. On the
// first failure in a multi-statement batch the remaining statements are
// not attempted and the accumulated partial results are discarded: the
// operation resolves as a failure, never as a partial-success envelope.
// Callers serialize their own submissions; concurrent Run invocations
// against one Executor are not guarded here.
package runner

import (
	"context"
	"fmt"
	"time"

	qerrors "querydesk/cli/internal/errors"
	"querydesk/cli/internal/history"
	"querydesk/cli/internal/session"
	"querydesk/cli/internal/splitter"
	"querydesk/cli/internal/sqlscan"
)

// Executor runs submissions against one session and logs every attempted
// statement to the history sink, success or failure.
type Executor struct {
	Session    session.Session
	History    history.Sink
	Connection string // connection name recorded in history entries
	Database   string // optional target database for every statement
}

// Run resolves a submission into statements and executes them in order.
func (e *Executor) Run(ctx context.Context, sub splitter.Submission) (*Envelope, error) {
	statements := sub.Resolve()
	if len(statements) == 0 {
		return nil, qerrors.New(qerrors.QueryFailed, "no statements to execute")
	}

	if len(statements) == 1 {
		res, err := e.executeOne(ctx, statements[0])
		if err != nil {
			return nil, err
		}
		return NewSingleEnvelope(StatementResult{
			Statement: statements[0],
			Label:     sqlscan.Label(statements[0].Text, statements[0].Position),
			Result:    res,
		}), nil
	}

	results := make([]StatementResult, 0, len(statements))
	for _, stmt := range statements {
		res, err := e.executeOne(ctx, stmt)
		if err != nil {
			// Discard partial results: a mixed success/failure envelope
			// would present an ambiguous partial-commit state.
			return nil, qerrors.Wrap(qerrors.QueryFailed,
				fmt.Sprintf("statement %d failed", stmt.Position), err)
		}
		results = append(results, StatementResult{
			Statement: stmt,
			Label:     sqlscan.Label(stmt.Text, stmt.Position),
			Result:    res,
		})
	}
	return NewMultiEnvelope(results), nil
}

// executeOne runs a single statement and appends a history entry for the
// attempt. Elapsed is measured wall-clock around the session call for
// success and failure alike, so entries are comparable across outcomes.
// Failed attempts are logged with a zero row count; history-write errors
// never fail the statement itself.
func (e *Executor) executeOne(ctx context.Context, stmt splitter.Statement) (*session.Result, error) {
	start := time.Now()
	res, err := e.Session.Execute(ctx, stmt.Text, e.Database)

	entry := history.Entry{
		Connection: e.Connection,
		Statement:  stmt.Text,
		ElapsedMs:  time.Since(start).Milliseconds(),
		At:         start,
	}
	if err == nil {
		entry.RowCount = res.RowCount
	}
	if e.History != nil {
		_ = e.History.Append(entry)
	}

	return res, err
}
