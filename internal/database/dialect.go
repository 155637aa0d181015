package database

import (
	"fmt"
	"strings"
)

// Dialect abstracts the SQL syntax differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	DriverName() string

	// Placeholder returns the parameter placeholder for the given
	// 1-indexed position. SQLite ignores the position.
	Placeholder(position int) string

	// SupportsLastInsertID reports whether LastInsertId() works; when it
	// does not, inserts use a RETURNING clause instead.
	SupportsLastInsertID() bool

	// ReturningClause returns the RETURNING clause for INSERT statements,
	// or "" when LastInsertId() is used.
	ReturningClause(column string) string

	// InitStatements returns statements to run once after connecting.
	InitStatements() []string

	// IsDuplicateKeyError reports whether err is a unique constraint
	// violation.
	IsDuplicateKeyError(err error) bool

	// TextType returns the column type for case-insensitive text.
	TextType() string
}

// NewDialect returns the Dialect for a config driver name. Unknown drivers
// fall back to SQLite.
func NewDialect(driver string) Dialect {
	if driver == "postgres" {
		return &postgresDialect{}
	}
	return &sqliteDialect{}
}

// rebind converts ? placeholders to the dialect's numbered form. SQLite
// queries pass through unchanged.
func rebind(d Dialect, query string) string {
	if _, ok := d.(*sqliteDialect); ok {
		return query
	}
	var out strings.Builder
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			out.WriteString(d.Placeholder(position))
			position++
		} else {
			out.WriteByte(query[i])
		}
	}
	return out.String()
}

type sqliteDialect struct{}

func (d *sqliteDialect) DriverName() string            { return "sqlite" }
func (d *sqliteDialect) Placeholder(position int) string { return "?" }
func (d *sqliteDialect) SupportsLastInsertID() bool    { return true }
func (d *sqliteDialect) ReturningClause(column string) string { return "" }

func (d *sqliteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *sqliteDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (d *sqliteDialect) TextType() string { return "TEXT COLLATE NOCASE" }

type postgresDialect struct{}

func (d *postgresDialect) DriverName() string { return "postgres" }

func (d *postgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func (d *postgresDialect) SupportsLastInsertID() bool { return false }

func (d *postgresDialect) ReturningClause(column string) string {
	return fmt.Sprintf(" RETURNING %s", column)
}

func (d *postgresDialect) InitStatements() []string {
	return []string{
		// citext gives case-insensitive usernames without a collation.
		"CREATE EXTENSION IF NOT EXISTS citext",
	}
}

func (d *postgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	// 23505 is unique_violation
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "23505") ||
		strings.Contains(msg, "unique constraint")
}

func (d *postgresDialect) TextType() string { return "CITEXT" }
