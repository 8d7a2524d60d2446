// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"database/sql"
	"time"

	"querydesk/cli/internal/dsn"
	"querydesk/cli/internal/sqlscan"

	_ "github.com/go-sql-driver/mysql"
)

// mysqlSession is a Session backed by a single database/sql connection so
// session state (USE, variables) survives across sequential calls.
type mysqlSession struct {
	db   *sql.DB
	conn *sql.Conn
	dflt string // default database from the DSN
}

func openMySQL(ctx context.Context, info *dsn.DSNInfo) (Session, error) {
	driverDSN := dsn.NewMySQLResolver().DriverDSN(info, "")
	db, err := sql.Open("mysql", driverDSN)
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &mysqlSession{db: db, conn: conn, dflt: info.Database}, nil
}

func (s *mysqlSession) Engine() dsn.DBType { return dsn.DBTypeMySQL }

func (s *mysqlSession) Ping(ctx context.Context) error { return s.conn.PingContext(ctx) }

func (s *mysqlSession) Close() {
	s.conn.Close()
	s.db.Close()
}

// use points the pinned connection at a database for the current call.
// The default database is restored afterwards by the caller.
func (s *mysqlSession) use(ctx context.Context, database string) error {
	_, err := s.conn.ExecContext(ctx, "USE "+quoteIdentMySQL(database))
	return err
}

func (s *mysqlSession) Execute(ctx context.Context, sqlText string, database string) (*Result, error) {
	if database != "" && database != s.dflt {
		if err := s.use(ctx, database); err != nil {
			return nil, err
		}
		defer s.use(context.WithoutCancel(ctx), s.dflt)
	}

	// The protocol reports affected rows only on the OK packet of an Exec;
	// a Query against a row-less statement loses the count. Statements
	// whose verb cannot yield rows go through the Exec path.
	if sqlscan.RowlessStatement(sqlText) {
		return s.execRowless(ctx, sqlText)
	}

	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: cols, Rows: []Row{}}
	values := make([]any, len(cols))
	scanTargets := make([]any, len(cols))
	for i := range values {
		scanTargets[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			// The driver hands back []byte for text-ish columns; keep
			// values display- and comparison-friendly as strings.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	res.RowCount = len(res.Rows)
	return res, nil
}

// execRowless runs a statement that produces no result set and reports
// the affected-row count as RowCount, matching the zero-column shape the
// PostgreSQL session derives from its command tag.
func (s *mysqlSession) execRowless(ctx context.Context, sqlText string) (*Result, error) {
	start := time.Now()
	result, err := s.conn.ExecContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &Result{
		Columns:  []string{},
		Rows:     []Row{},
		RowCount: int(affected),
		Elapsed:  time.Since(start),
	}, nil
}

func (s *mysqlSession) ExecuteWrite(ctx context.Context, sqlText string, database string) (int64, error) {
	if database != "" && database != s.dflt {
		if err := s.use(ctx, database); err != nil {
			return 0, err
		}
		defer s.use(context.WithoutCancel(ctx), s.dflt)
	}

	result, err := s.conn.ExecContext(ctx, sqlText)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// quoteIdentMySQL backtick-quotes an identifier, doubling embedded backticks.
func quoteIdentMySQL(ident string) string {
	out := make([]byte, 0, len(ident)+2)
	out = append(out, '`')
	for i := 0; i < len(ident); i++ {
		if ident[i] == '`' {
			out = append(out, '`')
		}
		out = append(out, ident[i])
	}
	return string(append(out, '`'))
}
