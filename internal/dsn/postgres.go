// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"fmt"
	"regexp"
	"strings"
)

// PostgreSQLResolver handles PostgreSQL DSN parsing and normalization
type PostgreSQLResolver struct{}

// NewPostgreSQLResolver creates a new PostgreSQL resolver
func NewPostgreSQLResolver() *PostgreSQLResolver {
	return &PostgreSQLResolver{}
}

// Parse parses a PostgreSQL DSN string and returns normalized DSN info
func (r *PostgreSQLResolver) Parse(dsn string) (*DSNInfo, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid PostgreSQL connection string")
	}

	scheme := ""
	if strings.HasPrefix(dsn, "postgresql://") {
		scheme = "postgresql"
	} else if strings.HasPrefix(dsn, "postgres://") {
		scheme = "postgres"
	} else {
		return nil, NewParseError(dsn, "missing or invalid scheme", "use postgres:// or postgresql://")
	}

	return parseURLDSN(DBTypePostgreSQL, scheme, "5432", dsn)
}

// Normalize converts DSN info to a properly formatted connection string.
// postgresql:// is used as the canonical scheme.
func (r *PostgreSQLResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	return buildURLDSN("postgresql", info), nil
}

// Validate checks if the DSN is valid for PostgreSQL
func (r *PostgreSQLResolver) Validate(dsn string) error {
	info, err := r.Parse(dsn)
	if err != nil {
		return err
	}
	return validatePort(dsn, info)
}

// validatePort checks that a parsed port is numeric.
func validatePort(dsn string, info *DSNInfo) error {
	if info.Port != "" {
		matched, _ := regexp.MatchString(`^\d+$`, info.Port)
		if !matched {
			return NewParseError(dsn, fmt.Sprintf("invalid port number: %s", info.Port), "port must be numeric")
		}
	}
	return nil
}
