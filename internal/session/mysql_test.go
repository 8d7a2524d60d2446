// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"
)

// stubLog records which driver entry point each statement reached.
var stubLog = struct {
	mu      sync.Mutex
	queries []string
	execs   []string
}{}

func resetStubLog() {
	stubLog.mu.Lock()
	defer stubLog.mu.Unlock()
	stubLog.queries = nil
	stubLog.execs = nil
}

func stubQueries() []string {
	stubLog.mu.Lock()
	defer stubLog.mu.Unlock()
	return append([]string(nil), stubLog.queries...)
}

func stubExecs() []string {
	stubLog.mu.Lock()
	defer stubLog.mu.Unlock()
	return append([]string(nil), stubLog.execs...)
}

// stubMySQLDriver is a minimal database/sql driver: queries answer one row
// with a single column "x", execs report three affected rows.
type stubMySQLDriver struct{}

func (stubMySQLDriver) Open(name string) (driver.Conn, error) { return stubMySQLConn{}, nil }

type stubMySQLConn struct{}

func (stubMySQLConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported by stub")
}

func (stubMySQLConn) Close() error { return nil }

func (stubMySQLConn) Begin() (driver.Tx, error) {
	return nil, errors.New("begin not supported by stub")
}

func (stubMySQLConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	stubLog.mu.Lock()
	stubLog.queries = append(stubLog.queries, query)
	stubLog.mu.Unlock()
	return &stubRows{cols: []string{"x"}, vals: [][]driver.Value{{int64(1)}}}, nil
}

func (stubMySQLConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	stubLog.mu.Lock()
	stubLog.execs = append(stubLog.execs, query)
	stubLog.mu.Unlock()
	return driver.RowsAffected(3), nil
}

type stubRows struct {
	cols []string
	vals [][]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return r.cols }

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.vals) {
		return io.EOF
	}
	copy(dest, r.vals[r.pos])
	r.pos++
	return nil
}

func init() {
	sql.Register("mysqlstub", stubMySQLDriver{})
}

func newStubMySQLSession(t *testing.T) *mysqlSession {
	t.Helper()
	db, err := sql.Open("mysqlstub", "")
	if err != nil {
		t.Fatalf("sql.Open() unexpected error: %v", err)
	}
	conn, err := db.Conn(context.Background())
	if err != nil {
		db.Close()
		t.Fatalf("db.Conn() unexpected error: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		db.Close()
	})
	return &mysqlSession{db: db, conn: conn, dflt: "app"}
}

func TestMySQLExecuteRowlessReportsAffectedCount(t *testing.T) {
	resetStubLog()
	sess := newStubMySQLSession(t)

	res, err := sess.Execute(context.Background(), "UPDATE t SET x=1", "")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if len(res.Columns) != 0 {
		t.Errorf("Columns = %v, want none for a row-less statement", res.Columns)
	}
	if res.RowCount != 3 {
		t.Errorf("RowCount = %d, want 3 (driver-reported affected rows)", res.RowCount)
	}
	if len(stubQueries()) != 0 {
		t.Errorf("row-less statement reached the query path: %v", stubQueries())
	}
	if got := stubExecs(); len(got) != 1 || got[0] != "UPDATE t SET x=1" {
		t.Errorf("execs = %v, want the UPDATE alone", got)
	}
}

func TestMySQLExecuteSelectUsesQueryPath(t *testing.T) {
	resetStubLog()
	sess := newStubMySQLSession(t)

	res, err := sess.Execute(context.Background(), "SELECT x FROM t", "")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if len(res.Columns) != 1 || res.Columns[0] != "x" {
		t.Errorf("Columns = %v, want [x]", res.Columns)
	}
	if res.RowCount != 1 || res.Rows[0]["x"] != int64(1) {
		t.Errorf("Rows = %v (count %d), want one row with x=1", res.Rows, res.RowCount)
	}
	if got := stubQueries(); len(got) != 1 || got[0] != "SELECT x FROM t" {
		t.Errorf("queries = %v, want the SELECT alone", got)
	}
	if len(stubExecs()) != 0 {
		t.Errorf("SELECT reached the exec path: %v", stubExecs())
	}
}

func TestMySQLExecuteDatabaseOverridePinsAndRestores(t *testing.T) {
	resetStubLog()
	sess := newStubMySQLSession(t)

	if _, err := sess.Execute(context.Background(), "SELECT x FROM t", "analytics"); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	execs := stubExecs()
	if len(execs) != 2 || execs[0] != "USE `analytics`" || execs[1] != "USE `app`" {
		t.Errorf("execs = %v, want USE `analytics` then USE `app`", execs)
	}
}

func TestMySQLExecuteWriteReportsAffectedCount(t *testing.T) {
	resetStubLog()
	sess := newStubMySQLSession(t)

	affected, err := sess.ExecuteWrite(context.Background(), "UPDATE t SET x=2 WHERE id=1", "")
	if err != nil {
		t.Fatalf("ExecuteWrite() unexpected error: %v", err)
	}
	if affected != 3 {
		t.Errorf("affected = %d, want 3", affected)
	}
}
