package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned when no active session matches a token.
var ErrSessionNotFound = errors.New("session not found")

// Session is one issued auth token.
type Session struct {
	ID        int64
	AccountID int64
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Active    bool
}

// CreateSession records a freshly issued token. When the account already
// holds maxPerAccount active sessions, the oldest is deactivated first.
func (d *Database) CreateSession(accountID int64, token string, expiresAt time.Time, maxPerAccount int) error {
	if maxPerAccount > 0 {
		if err := d.evictOldestSessions(accountID, maxPerAccount-1); err != nil {
			return err
		}
	}

	query := rebind(d.dialect,
		"INSERT INTO auth_sessions (account_id, token, expires_at) VALUES (?, ?, ?)")
	if _, err := d.db.Exec(query, accountID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// evictOldestSessions deactivates active sessions beyond keep, oldest first.
func (d *Database) evictOldestSessions(accountID int64, keep int) error {
	query := rebind(d.dialect,
		"SELECT id FROM auth_sessions WHERE account_id = ? AND active = 1 ORDER BY issued_at DESC, id DESC")
	rows, err := d.db.Query(query, accountID)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if keep < 0 {
		keep = 0
	}
	for _, id := range ids[min(keep, len(ids)):] {
		query := rebind(d.dialect, "UPDATE auth_sessions SET active = 0 WHERE id = ?")
		if _, err := d.db.Exec(query, id); err != nil {
			return fmt.Errorf("failed to deactivate session: %w", err)
		}
	}
	return nil
}

// GetActiveSession finds a live session for the token. Expired or
// deactivated tokens return ErrSessionNotFound.
func (d *Database) GetActiveSession(token string) (*Session, error) {
	var s Session
	var active int
	query := rebind(d.dialect,
		"SELECT id, account_id, token, issued_at, expires_at, active FROM auth_sessions WHERE token = ?")
	err := d.db.QueryRow(query, token).Scan(&s.ID, &s.AccountID, &s.Token, &s.IssuedAt, &s.ExpiresAt, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.Active = active != 0
	if !s.Active || time.Now().After(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// DeactivateSession retires a token on logout.
func (d *Database) DeactivateSession(token string) error {
	query := rebind(d.dialect, "UPDATE auth_sessions SET active = 0 WHERE token = ?")
	if _, err := d.db.Exec(query, token); err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	return nil
}

// PruneExpiredSessions deletes sessions past their expiry. Returns the
// number removed.
func (d *Database) PruneExpiredSessions() (int64, error) {
	query := rebind(d.dialect, "DELETE FROM auth_sessions WHERE expires_at < ?")
	result, err := d.db.Exec(query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// RecordLoginAttempt appends one row to the login audit log. accountID is
// zero for attempts against unknown usernames.
func (d *Database) RecordLoginAttempt(accountID int64, username, ip, userAgent string, success bool, reason string) error {
	var id any
	if accountID != 0 {
		id = accountID
	}
	successVal := 0
	if success {
		successVal = 1
	}
	query := rebind(d.dialect,
		"INSERT INTO login_logs (account_id, username, ip, user_agent, success, reason) VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := d.db.Exec(query, id, username, ip, userAgent, successVal, reason); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// CountActiveSessions returns how many live sessions an account holds.
func (d *Database) CountActiveSessions(accountID int64) (int, error) {
	var count int
	query := rebind(d.dialect,
		"SELECT COUNT(*) FROM auth_sessions WHERE account_id = ? AND active = 1 AND expires_at > ?")
	if err := d.db.QueryRow(query, accountID, time.Now()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
