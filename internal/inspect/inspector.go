// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package inspect queries information_schema for table metadata. Results
// are cached per table to minimize database roundtrips; the cache can be
// cleared when schema changes are expected.
package inspect

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"querydesk/cli/internal/dsn"
	"querydesk/cli/internal/session"
)

// TableInfo holds cached metadata for one table.
type TableInfo struct {
	// TableName is the fully qualified or unqualified table name
	TableName string
	// PrimaryKeyCols lists primary key column names in order
	PrimaryKeyCols []string
}

// Inspector provides database schema inspection and caching capabilities.
type Inspector struct {
	sess  session.Session
	cache map[string]*TableInfo
	mu    sync.RWMutex
}

// New creates an Inspector over an open session.
func New(sess session.Session) *Inspector {
	return &Inspector{
		sess:  sess,
		cache: make(map[string]*TableInfo),
	}
}

// Tables lists the user tables visible to the session, sorted by name.
func (in *Inspector) Tables(ctx context.Context) ([]string, error) {
	var query string
	switch in.sess.Engine() {
	case dsn.DBTypeMySQL:
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
			ORDER BY table_name`
	default:
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
			AND table_type = 'BASE TABLE'
			ORDER BY table_name`
	}

	res, err := in.sess.Execute(ctx, query, "")
	if err != nil {
		return nil, err
	}

	tables := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if name, ok := row["table_name"].(string); ok {
			tables = append(tables, name)
		} else if name, ok := row["TABLE_NAME"].(string); ok {
			// MySQL reports information_schema columns upper-cased.
			tables = append(tables, name)
		}
	}
	return tables, nil
}

// Info retrieves or caches metadata for a table. The tableName can be
// either "table" or "schema.table".
func (in *Inspector) Info(ctx context.Context, tableName string) (*TableInfo, error) {
	in.mu.RLock()
	if info, exists := in.cache[tableName]; exists {
		in.mu.RUnlock()
		return info, nil
	}
	in.mu.RUnlock()

	schema, table := parseTableName(in.sess.Engine(), tableName)

	info := &TableInfo{TableName: tableName}
	if err := in.loadPrimaryKeys(ctx, schema, table, info); err != nil {
		return nil, err
	}

	in.mu.Lock()
	in.cache[tableName] = info
	in.mu.Unlock()

	return info, nil
}

// ClearCache clears all cached table metadata.
func (in *Inspector) ClearCache() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.cache = make(map[string]*TableInfo)
}

// parseTableName splits a table name into schema and table components.
// Unqualified names default to "public" on PostgreSQL; on MySQL the
// session's current database applies and schema stays empty.
func parseTableName(engine dsn.DBType, tableName string) (schema string, table string) {
	parts := strings.Split(tableName, ".")
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	if engine == dsn.DBTypeMySQL {
		return "", tableName
	}
	return "public", tableName
}

// loadPrimaryKeys queries and populates primary key information for a table.
func (in *Inspector) loadPrimaryKeys(ctx context.Context, schema, table string, info *TableInfo) error {
	schemaPredicate := fmt.Sprintf("kc.table_schema = %s", quoteLiteral(schema))
	if schema == "" {
		schemaPredicate = "kc.table_schema = DATABASE()"
	}

	query := fmt.Sprintf(`SELECT kc.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kc
			ON tc.constraint_name = kc.constraint_name
			AND tc.table_schema = kc.table_schema
			AND tc.table_name = kc.table_name
		WHERE %s AND kc.table_name = %s AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kc.ordinal_position`, schemaPredicate, quoteLiteral(table))

	res, err := in.sess.Execute(ctx, query, "")
	if err != nil {
		return err
	}
	for _, row := range res.Rows {
		if col, ok := row["column_name"].(string); ok {
			info.PrimaryKeyCols = append(info.PrimaryKeyCols, col)
		} else if col, ok := row["COLUMN_NAME"].(string); ok {
			info.PrimaryKeyCols = append(info.PrimaryKeyCols, col)
		}
	}
	return nil
}

// quoteLiteral single-quotes a string literal, doubling embedded quotes.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
