// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"querydesk/cli/internal/dsn"
	"querydesk/cli/internal/history"
	"querydesk/cli/internal/session"
	"querydesk/cli/internal/splitter"
)

// fakeSession is a scriptable, stateful in-memory session. Statements
// beginning with "UPDATE t SET x=" mutate its state; "SELECT * FROM t"
// reads it back, so ordering effects are observable.
type fakeSession struct {
	calls   []string
	failOn  string // statement text that should fail
	failErr error
	delay   time.Duration // per-statement execution delay
	x       int           // mutable state for the stateful scenario
}

func (f *fakeSession) Execute(ctx context.Context, sql string, database string) (*session.Result, error) {
	f.calls = append(f.calls, sql)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failOn != "" && sql == f.failOn {
		return nil, f.failErr
	}
	switch {
	case strings.HasPrefix(sql, "UPDATE t SET x="):
		val := strings.TrimPrefix(sql, "UPDATE t SET x=")
		f.x = len(val) // any deterministic function of the input will do
		return &session.Result{Columns: []string{}, Rows: []session.Row{}, RowCount: 1, Elapsed: time.Millisecond}, nil
	case sql == "SELECT * FROM t":
		return &session.Result{
			Columns:  []string{"x"},
			Rows:     []session.Row{{"x": f.x}},
			RowCount: 1,
			Elapsed:  time.Millisecond,
		}, nil
	default:
		return &session.Result{
			Columns:  []string{"?column?"},
			Rows:     []session.Row{{"?column?": 1}},
			RowCount: 1,
			Elapsed:  2 * time.Millisecond,
		}, nil
	}
}

func (f *fakeSession) ExecuteWrite(ctx context.Context, sql string, database string) (int64, error) {
	f.calls = append(f.calls, sql)
	return 1, nil
}

func (f *fakeSession) Engine() dsn.DBType { return dsn.DBTypePostgreSQL }

func (f *fakeSession) Ping(ctx context.Context) error { return nil }

func (f *fakeSession) Close() {}

// memSink collects history entries in memory.
type memSink struct {
	entries []history.Entry
}

func (m *memSink) Append(e history.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func TestRunSingleStatement(t *testing.T) {
	fake := &fakeSession{}
	exec := &Executor{Session: fake, History: &memSink{}, Connection: "test"}

	env, err := exec.Run(context.Background(), splitter.Submission{Buffer: "SELECT 1"})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if env.Kind != EnvelopeSingle {
		t.Fatalf("Kind = %v, want EnvelopeSingle", env.Kind)
	}
	if got := env.Single().Statement.Text; got != "SELECT 1" {
		t.Errorf("statement text = %q, want %q", got, "SELECT 1")
	}
	if len(fake.calls) != 1 {
		t.Errorf("execute calls = %d, want 1", len(fake.calls))
	}
}

func TestRunSingleFragmentTakesSinglePath(t *testing.T) {
	fake := &fakeSession{}
	exec := &Executor{Session: fake, History: &memSink{}}

	// Trailing separator still yields exactly one non-empty fragment.
	env, err := exec.Run(context.Background(), splitter.Submission{Buffer: "SELECT 1;"})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if env.Kind != EnvelopeSingle {
		t.Errorf("Kind = %v, want EnvelopeSingle", env.Kind)
	}
}

func TestRunMultiStatementOrderAndEnvelope(t *testing.T) {
	fake := &fakeSession{}
	exec := &Executor{Session: fake, History: &memSink{}}

	env, err := exec.Run(context.Background(), splitter.Submission{Buffer: "SELECT 1; SELECT 2; SELECT 3"})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if env.Kind != EnvelopeMulti {
		t.Fatalf("Kind = %v, want EnvelopeMulti", env.Kind)
	}

	wantCalls := []string{"SELECT 1", "SELECT 2", "SELECT 3"}
	if len(fake.calls) != len(wantCalls) {
		t.Fatalf("execute calls = %d, want %d", len(fake.calls), len(wantCalls))
	}
	for i, want := range wantCalls {
		if fake.calls[i] != want {
			t.Errorf("call %d = %q, want %q", i, fake.calls[i], want)
		}
	}

	results := env.Results()
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, want := range wantCalls {
		if results[i].Statement.Text != want {
			t.Errorf("result %d statement = %q, want %q", i, results[i].Statement.Text, want)
		}
		if results[i].Statement.Position != i+1 {
			t.Errorf("result %d position = %d, want %d", i, results[i].Statement.Position, i+1)
		}
	}
}

func TestRunStopsOnFirstFailure(t *testing.T) {
	failErr := errors.New("syntax error")
	fake := &fakeSession{failOn: "SELECT 2", failErr: failErr}
	sink := &memSink{}
	exec := &Executor{Session: fake, History: sink}

	env, err := exec.Run(context.Background(), splitter.Submission{Buffer: "SELECT 1; SELECT 2; SELECT 3"})
	if err == nil {
		t.Fatalf("Run() expected error, got envelope %+v", env)
	}
	if env != nil {
		t.Errorf("Run() returned partial envelope alongside error")
	}
	if !errors.Is(err, failErr) {
		t.Errorf("error chain does not include the execution error: %v", err)
	}
	// The third statement must never have been attempted.
	for _, call := range fake.calls {
		if call == "SELECT 3" {
			t.Error("statement after the failing one was attempted")
		}
	}
	if len(fake.calls) != 2 {
		t.Errorf("execute calls = %d, want 2", len(fake.calls))
	}
}

func TestRunHistoryLogging(t *testing.T) {
	failErr := errors.New("bad column")
	fake := &fakeSession{failOn: "SELECT 2", failErr: failErr}
	sink := &memSink{}
	exec := &Executor{Session: fake, History: sink, Connection: "prod"}

	_, err := exec.Run(context.Background(), splitter.Submission{Buffer: "SELECT 1; SELECT 2; SELECT 3"})
	if err == nil {
		t.Fatal("Run() expected error")
	}

	// Exactly one entry per attempted statement, including the failure.
	if len(sink.entries) != 2 {
		t.Fatalf("history entries = %d, want 2", len(sink.entries))
	}
	if sink.entries[0].Statement != "SELECT 1" || sink.entries[0].RowCount != 1 {
		t.Errorf("first entry = %+v, want SELECT 1 with rowCount 1", sink.entries[0])
	}
	if sink.entries[1].Statement != "SELECT 2" {
		t.Errorf("failed entry statement = %q, want SELECT 2", sink.entries[1].Statement)
	}
	if sink.entries[1].RowCount != 0 {
		t.Errorf("failed entry rowCount = %d, want 0", sink.entries[1].RowCount)
	}
	if sink.entries[0].Connection != "prod" {
		t.Errorf("entry connection = %q, want prod", sink.entries[0].Connection)
	}
}

func TestRunHistoryElapsedWallClock(t *testing.T) {
	failErr := errors.New("timeout")
	fake := &fakeSession{failOn: "SELECT 2", failErr: failErr, delay: 5 * time.Millisecond}
	sink := &memSink{}
	exec := &Executor{Session: fake, History: sink}

	_, err := exec.Run(context.Background(), splitter.Submission{Buffer: "SELECT 1; SELECT 2"})
	if err == nil {
		t.Fatal("Run() expected error")
	}
	if len(sink.entries) != 2 {
		t.Fatalf("history entries = %d, want 2", len(sink.entries))
	}
	// Both the successful and the failed attempt are timed around the
	// session call, not from the session's self-reported elapsed.
	for i, e := range sink.entries {
		if e.ElapsedMs < 5 {
			t.Errorf("entry %d elapsed = %dms, want >= 5ms", i, e.ElapsedMs)
		}
	}
}

func TestRunSelectionBypassesSplitting(t *testing.T) {
	fake := &fakeSession{}
	exec := &Executor{Session: fake, History: &memSink{}}

	env, err := exec.Run(context.Background(), splitter.Submission{
		Buffer:    "SELECT 1; SELECT 2",
		Selection: "SELECT 1; SELECT 2",
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if env.Kind != EnvelopeSingle {
		t.Errorf("Kind = %v, want EnvelopeSingle for selection", env.Kind)
	}
	if len(fake.calls) != 1 {
		t.Errorf("execute calls = %d, want 1 (selection runs verbatim)", len(fake.calls))
	}
}

func TestRunEmptyBuffer(t *testing.T) {
	exec := &Executor{Session: &fakeSession{}, History: &memSink{}}
	if _, err := exec.Run(context.Background(), splitter.Submission{Buffer: " ; ; "}); err == nil {
		t.Error("Run() expected error for empty submission")
	}
}

func TestRunStatefulOrdering(t *testing.T) {
	fake := &fakeSession{}
	exec := &Executor{Session: fake, History: &memSink{}}

	env, err := exec.Run(context.Background(), splitter.Submission{Buffer: "UPDATE t SET x=1; SELECT * FROM t"})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	results := env.Results()
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	// The SELECT must observe the UPDATE's effect.
	got := results[1].Result.Rows[0]["x"]
	if got != fake.x {
		t.Errorf("SELECT observed x = %v, want %v", got, fake.x)
	}
	if results[0].Label != "UPDATE t" || results[1].Label != "SELECT t" {
		t.Errorf("labels = %q, %q; want UPDATE t, SELECT t", results[0].Label, results[1].Label)
	}
}
