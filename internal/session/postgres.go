// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"time"

	"querydesk/cli/internal/dsn"

	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresSession is a Session backed by a pgx connection pool.
// Each call acquires a connection, optionally pins the search_path for the
// duration of the call, and releases it afterwards.
type postgresSession struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, info *dsn.DSNInfo) (Session, error) {
	normalized, err := dsn.NewPostgreSQLResolver().Normalize(info)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return &postgresSession{pool: pool}, nil
}

func (s *postgresSession) Engine() dsn.DBType { return dsn.DBTypePostgreSQL }

func (s *postgresSession) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *postgresSession) Close() { s.pool.Close() }

// Execute runs a statement and collects its full result set.
// For statements that return no columns (e.g. UPDATE), RowCount reflects
// the command tag's affected-row count instead of fetched rows.
func (s *postgresSession) Execute(ctx context.Context, sql string, database string) (*Result, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	if database != "" {
		// PostgreSQL sessions cannot switch databases in place; the target
		// names a schema, pinned via search_path for this call only.
		if _, err := conn.Exec(ctx, "SET search_path TO "+database); err != nil {
			return nil, err
		}
		defer conn.Exec(context.WithoutCancel(ctx), "SET search_path TO DEFAULT")
	}

	start := time.Now()
	rows, err := conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = string(fd.Name)
	}

	res := &Result{Columns: cols, Rows: []Row{}}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = vals[i]
		}
		res.Rows = append(res.Rows, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	rows.Close()
	res.Elapsed = time.Since(start)

	if len(cols) == 0 {
		res.RowCount = int(rows.CommandTag().RowsAffected())
	} else {
		res.RowCount = len(res.Rows)
	}
	return res, nil
}

// ExecuteWrite runs a statement inside a transaction so the write is
// committed before the call returns, mirroring a save operation.
func (s *postgresSession) ExecuteWrite(ctx context.Context, sql string, database string) (int64, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	if database != "" {
		if _, err := conn.Exec(ctx, "SET search_path TO "+database); err != nil {
			return 0, err
		}
		defer conn.Exec(context.WithoutCancel(ctx), "SET search_path TO DEFAULT")
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // Rollback if commit doesn't happen

	ct, err := tx.Exec(ctx, sql)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
