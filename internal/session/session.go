// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session provides stateful database sessions for the supported
// engines. A Session is a single-flight handle to one connection context:
// it can be called repeatedly and sequentially without re-authentication,
// and it makes no attempt at locking or multiplexing; callers own the
// exclusive-use discipline during an execution batch.
package session

import (
	"context"
	"time"

	"querydesk/cli/internal/dsn"
)

// Row maps column names to values for one fetched row. Column order lives
// in Result.Columns; order within a row is irrelevant.
type Row map[string]any

// Result is the normalized outcome of executing one statement.
type Result struct {
	Columns  []string
	Rows     []Row
	RowCount int
	Elapsed  time.Duration
}

// Session executes statements against one stateful database connection.
// The optional database argument points an individual call at a
// non-default database (a schema search_path on PostgreSQL, USE on MySQL);
// an empty string keeps the connection's default.
type Session interface {
	// Execute runs a statement and collects its full result set.
	Execute(ctx context.Context, sql string, database string) (*Result, error)
	// ExecuteWrite runs a statement for its side effect and returns the
	// number of affected rows.
	ExecuteWrite(ctx context.Context, sql string, database string) (int64, error)
	// Engine reports which database engine the session talks to.
	Engine() dsn.DBType
	// Ping verifies the session is alive.
	Ping(ctx context.Context) error
	// Close releases the underlying connection resources.
	Close()
}

// Open establishes a session for the engine named in the DSN info.
func Open(ctx context.Context, info *dsn.DSNInfo) (Session, error) {
	switch info.Type {
	case dsn.DBTypePostgreSQL:
		return openPostgres(ctx, info)
	case dsn.DBTypeMySQL:
		return openMySQL(ctx, info)
	default:
		return nil, dsn.NewParseError(info.Original, "unsupported engine", "use postgres:// or mysql://")
	}
}
