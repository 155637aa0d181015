package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost factor (12 is a good balance of security and performance)
const bcryptCost = 12

// ErrAccountNotFound is returned when an account lookup fails.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned when the username is already registered.
var ErrAccountExists = errors.New("account already exists")

// ErrNicknameTaken is returned when the nickname is already in use.
var ErrNicknameTaken = errors.New("nickname already taken")

// ErrInvalidCredentials is returned when login credentials are incorrect.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrAccountLocked is returned when a locked account tries to login.
var ErrAccountLocked = errors.New("account is temporarily locked")

// Account is a registered player account.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Nickname     string
	CreatedAt    time.Time
	LastLogin    *time.Time
	FailedLogins int
	LockedUntil  *time.Time
}

// Locked reports whether the account's lockout window is still open.
func (a *Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// CheckPassword reports whether the password matches the stored hash.
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// CreateAccount registers a new account. The password is hashed with bcrypt
// before storage. Format validation happens in the auth layer; this only
// enforces uniqueness.
func (d *Database) CreateAccount(username, password, nickname string) (*Account, error) {
	username = strings.TrimSpace(username)
	nickname = strings.TrimSpace(nickname)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := "INSERT INTO accounts (username, password_hash, nickname) VALUES (?, ?, ?)"
	var id int64
	if d.dialect.SupportsLastInsertID() {
		result, err := d.db.Exec(rebind(d.dialect, query), username, string(hash), nickname)
		if err != nil {
			return nil, d.classifyAccountInsertError(err, nickname)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get account ID: %w", err)
		}
	} else {
		query = rebind(d.dialect, query) + d.dialect.ReturningClause("id")
		if err := d.db.QueryRow(query, username, string(hash), nickname).Scan(&id); err != nil {
			return nil, d.classifyAccountInsertError(err, nickname)
		}
	}

	return &Account{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		Nickname:     nickname,
		CreatedAt:    time.Now(),
	}, nil
}

// classifyAccountInsertError maps a unique violation to the right sentinel.
// A nickname collision and a username collision share the SQL error shape,
// so a second lookup disambiguates.
func (d *Database) classifyAccountInsertError(err error, nickname string) error {
	if !d.dialect.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to create account: %w", err)
	}
	taken, lookupErr := d.NicknameExists(nickname)
	if lookupErr == nil && taken {
		return ErrNicknameTaken
	}
	return ErrAccountExists
}

const accountColumns = "id, username, password_hash, nickname, created_at, last_login, failed_logins, locked_until"

func scanAccount(row *sql.Row) (*Account, error) {
	var account Account
	var lastLogin, lockedUntil sql.NullTime

	err := row.Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Nickname,
		&account.CreatedAt, &lastLogin, &account.FailedLogins, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if lastLogin.Valid {
		account.LastLogin = &lastLogin.Time
	}
	if lockedUntil.Valid {
		account.LockedUntil = &lockedUntil.Time
	}
	return &account, nil
}

// GetAccountByUsername retrieves an account by username (case-insensitive).
func (d *Database) GetAccountByUsername(username string) (*Account, error) {
	query := rebind(d.dialect, "SELECT "+accountColumns+" FROM accounts WHERE username = ?")
	return scanAccount(d.db.QueryRow(query, username))
}

// GetAccountByID retrieves an account by ID.
func (d *Database) GetAccountByID(accountID int64) (*Account, error) {
	query := rebind(d.dialect, "SELECT "+accountColumns+" FROM accounts WHERE id = ?")
	return scanAccount(d.db.QueryRow(query, accountID))
}

// NicknameExists checks whether any account uses the nickname.
func (d *Database) NicknameExists(nickname string) (bool, error) {
	var count int
	query := rebind(d.dialect, "SELECT COUNT(*) FROM accounts WHERE nickname = ?")
	if err := d.db.QueryRow(query, nickname).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check nickname: %w", err)
	}
	return count > 0, nil
}

// UpdateNickname changes an account's display name.
func (d *Database) UpdateNickname(accountID int64, nickname string) error {
	query := rebind(d.dialect, "UPDATE accounts SET nickname = ? WHERE id = ?")
	_, err := d.db.Exec(query, strings.TrimSpace(nickname), accountID)
	if err != nil {
		if d.dialect.IsDuplicateKeyError(err) {
			return ErrNicknameTaken
		}
		return fmt.Errorf("failed to update nickname: %w", err)
	}
	return nil
}

// RecordLoginSuccess clears the failure counter and stamps last_login.
func (d *Database) RecordLoginSuccess(accountID int64) error {
	query := rebind(d.dialect,
		"UPDATE accounts SET last_login = CURRENT_TIMESTAMP, failed_logins = 0, locked_until = NULL WHERE id = ?")
	if _, err := d.db.Exec(query, accountID); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// RecordLoginFailure increments the failure counter and, once it reaches
// maxFailures, locks the account for the lockout window. Returns the new
// failure count.
func (d *Database) RecordLoginFailure(accountID int64, maxFailures int, lockout time.Duration) (int, error) {
	query := rebind(d.dialect, "UPDATE accounts SET failed_logins = failed_logins + 1 WHERE id = ?")
	if _, err := d.db.Exec(query, accountID); err != nil {
		return 0, fmt.Errorf("failed to record login failure: %w", err)
	}

	var failures int
	query = rebind(d.dialect, "SELECT failed_logins FROM accounts WHERE id = ?")
	if err := d.db.QueryRow(query, accountID).Scan(&failures); err != nil {
		return 0, fmt.Errorf("failed to read failure count: %w", err)
	}

	if failures >= maxFailures {
		until := time.Now().Add(lockout)
		query = rebind(d.dialect, "UPDATE accounts SET locked_until = ? WHERE id = ?")
		if _, err := d.db.Exec(query, until, accountID); err != nil {
			return failures, fmt.Errorf("failed to lock account: %w", err)
		}
	}
	return failures, nil
}

// ChangePassword replaces the stored hash after verifying the old password.
func (d *Database) ChangePassword(accountID int64, oldPassword, newPassword string) error {
	account, err := d.GetAccountByID(accountID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	query := rebind(d.dialect, "UPDATE accounts SET password_hash = ? WHERE id = ?")
	if _, err := d.db.Exec(query, string(hash), accountID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
