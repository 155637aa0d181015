// Package auth implements account registration, credential checks with
// lockout, and JWT session tokens backed by the database so tokens can be
// revoked on logout.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/database"
	"github.com/towerspire/server/internal/namefilter"
)

var (
	// ErrBadUsername means the username fails the format policy.
	ErrBadUsername = errors.New("auth: username must start with a letter and be 3-20 letters, digits, or underscores")

	// ErrBadPassword means the password fails the format policy.
	ErrBadPassword = errors.New("auth: password must be at least 6 characters with a letter and a digit")

	// ErrBadNickname means the nickname is empty or too long.
	ErrBadNickname = errors.New("auth: nickname must be 1-50 characters")

	// ErrNameNotAllowed means the name tripped the reserved or banned list.
	ErrNameNotAllowed = errors.New("auth: name not allowed")

	// ErrInvalidToken means the token failed verification or was revoked.
	ErrInvalidToken = errors.New("auth: invalid or expired token")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,19}$`)

const maxNicknameLen = 50

// Service runs the account and session operations.
type Service struct {
	db     *database.Database
	cfg    config.AuthConfig
	filter *namefilter.Filter
}

// New returns an auth Service over the given store.
func New(db *database.Database, cfg config.AuthConfig) *Service {
	return &Service{db: db, cfg: cfg, filter: namefilter.New(cfg.NameFilter)}
}

// ValidateUsername checks the username format policy.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrBadUsername
	}
	return nil
}

// ValidatePassword checks the password policy: length 6 or more with at
// least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrBadPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrBadPassword
	}
	return nil
}

// ValidateNickname checks the nickname policy. Length counts runes so CJK
// names get the full budget.
func ValidateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n == 0 || n > maxNicknameLen {
		return ErrBadNickname
	}
	return nil
}

// Register validates and creates a new account.
func (s *Service) Register(username, password, nickname string) (*database.Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := ValidateNickname(nickname); err != nil {
		return nil, err
	}
	if !s.filter.Allowed(username) || !s.filter.Allowed(nickname) {
		return nil, ErrNameNotAllowed
	}
	return s.db.CreateAccount(username, password, nickname)
}

// Login checks credentials and returns a fresh session token. Failed
// attempts count toward the lockout; every attempt lands in the audit log.
func (s *Service) Login(username, password, ip, userAgent string) (string, *database.Account, error) {
	account, err := s.db.GetAccountByUsername(username)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			_ = s.db.RecordLoginAttempt(0, username, ip, userAgent, false, "unknown account")
			return "", nil, database.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if account.Locked(time.Now()) {
		_ = s.db.RecordLoginAttempt(account.ID, username, ip, userAgent, false, "account locked")
		return "", nil, database.ErrAccountLocked
	}

	if !account.CheckPassword(password) {
		failures, ferr := s.db.RecordLoginFailure(account.ID, s.cfg.MaxFailedLogins, s.cfg.LockoutDuration())
		if ferr != nil {
			return "", nil, ferr
		}
		reason := fmt.Sprintf("bad password (attempt %d)", failures)
		_ = s.db.RecordLoginAttempt(account.ID, username, ip, userAgent, false, reason)
		return "", nil, database.ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueToken(account.ID)
	if err != nil {
		return "", nil, err
	}
	if err := s.db.CreateSession(account.ID, token, expiresAt, s.cfg.MaxSessionsPerAccount); err != nil {
		return "", nil, err
	}
	if err := s.db.RecordLoginSuccess(account.ID); err != nil {
		return "", nil, err
	}
	_ = s.db.RecordLoginAttempt(account.ID, username, ip, userAgent, true, "")

	return token, account, nil
}

// issueToken signs a JWT carrying the account ID as the subject.
func (s *Service) issueToken(accountID int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.TokenTTL())
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(accountID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks a token's signature and expiry, then confirms the session
// is still active in the database. Returns the owning account.
func (s *Service) Verify(token string) (*database.Account, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if _, err := s.db.GetActiveSession(token); err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	account, err := s.db.GetAccountByID(accountID)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return account, nil
}

// Logout revokes the token's session.
func (s *Service) Logout(token string) error {
	return s.db.DeactivateSession(token)
}

// ChangePassword verifies the old password and stores the new one. The new
// password must pass the same policy as registration.
func (s *Service) ChangePassword(accountID int64, oldPassword, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	return s.db.ChangePassword(accountID, oldPassword, newPassword)
}

// UpdateNickname validates and stores a new display name.
func (s *Service) UpdateNickname(accountID int64, nickname string) error {
	if err := ValidateNickname(nickname); err != nil {
		return err
	}
	if !s.filter.Allowed(nickname) {
		return ErrNameNotAllowed
	}
	return s.db.UpdateNickname(accountID, nickname)
}
