// Package database persists accounts, auth sessions, and game saves behind
// a small dialect layer so the same queries run on SQLite and PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/towerspire/server/internal/config"
)

// Postgres pool settings. SQLite keeps the driver defaults; WAL mode plus
// the busy timeout handles its concurrency.
const (
	pgMaxOpenConns    = 25
	pgMaxIdleConns    = 5
	pgConnMaxLifetime = 5 * time.Minute
)

// Database wraps the SQL connection and provides all persistence operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the configured backend, applies the dialect's init
// statements, and runs migrations.
func Open(cfg config.DatabaseConfig) (*Database, error) {
	dialect := NewDialect(cfg.Driver)

	var dsn string
	switch dialect.(type) {
	case *postgresDialect:
		dsn = fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.Name, cfg.User, cfg.Password, cfg.SSLMode)
	default:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = cfg.Path
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, ok := dialect.(*postgresDialect); ok {
		db.SetMaxOpenConns(pgMaxOpenConns)
		db.SetMaxIdleConns(pgMaxIdleConns)
		db.SetConnMaxLifetime(pgConnMaxLifetime)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	d := &Database{db: db, dialect: dialect}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if !d.dialect.SupportsLastInsertID() {
		serial = "BIGSERIAL PRIMARY KEY"
	}
	text := d.dialect.TextType()

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS accounts (
			id %s,
			username %s UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			nickname TEXT UNIQUE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMP,
			failed_logins INTEGER NOT NULL DEFAULT 0,
			locked_until TIMESTAMP
		)`, serial, text),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS auth_sessions (
			id %s,
			account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			token TEXT UNIQUE NOT NULL,
			issued_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			expires_at TIMESTAMP NOT NULL,
			active INTEGER NOT NULL DEFAULT 1
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS login_logs (
			id %s,
			account_id BIGINT,
			username TEXT NOT NULL,
			ip TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			success INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, serial),

		// One save per account; equipment and inventory ride along as JSON.
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS saves (
			id %s,
			account_id BIGINT UNIQUE NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			floor_level INTEGER NOT NULL,
			merchant_streak INTEGER NOT NULL DEFAULT 0,
			hp INTEGER NOT NULL,
			max_hp INTEGER NOT NULL,
			base_atk INTEGER NOT NULL,
			base_def INTEGER NOT NULL,
			exp INTEGER NOT NULL,
			level INTEGER NOT NULL,
			gold INTEGER NOT NULL,
			pos_x INTEGER NOT NULL,
			pos_y INTEGER NOT NULL,
			weapon TEXT NOT NULL DEFAULT '',
			armor TEXT NOT NULL DEFAULT '',
			inventory TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, serial),

		`CREATE INDEX IF NOT EXISTS idx_auth_sessions_account_id ON auth_sessions(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_login_logs_account_id ON login_logs(account_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
