// Package config holds the two configuration surfaces of the server: the
// operational ServerConfig (listen address, websocket policy, database,
// token signing, connection limits) and the game tuning Config (floor
// layout counts, monster scaling, combat constants, affix and rarity
// tables, forge and merchant pricing). Both are loaded once at startup and
// treated as immutable afterwards.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-wide operational settings.
type ServerConfig struct {
	Listen      ListenConfig      `yaml:"listen"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ListenConfig holds the HTTP listen settings.
type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port string for net/http.
func (c ListenConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// WriteTimeoutSeconds bounds each outbound write.
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single
	// IP address. 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// RateLimitConfig throttles login attempts per client IP, before the
// per-account lockout stored in the database kicks in.
type RateLimitConfig struct {
	// MaxAttempts is the failed login count that locks an IP out.
	MaxAttempts int `yaml:"max_attempts"`

	// LockoutSeconds is the first lockout window. Repeat lockouts double it.
	LockoutSeconds int `yaml:"lockout_seconds"`

	// MaxLockoutSeconds caps the doubling.
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// DatabaseConfig holds the storage backend settings. Driver selects the SQL
// dialect: "sqlite" (default, file-backed) or "postgres".
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"` // sqlite only
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// AuthConfig holds credential policy and session settings.
type AuthConfig struct {
	// JWTSecret signs session tokens. Must be set via config or the
	// TOWER_JWT_SECRET environment variable before serving traffic.
	JWTSecret string `yaml:"jwt_secret"`

	// TokenTTLHours is the session token lifetime.
	TokenTTLHours int `yaml:"token_ttl_hours"`

	// MaxFailedLogins is the failed attempt count that triggers a lockout.
	MaxFailedLogins int `yaml:"max_failed_logins"`

	// LockoutMinutes is how long a locked account stays locked.
	LockoutMinutes int `yaml:"lockout_minutes"`

	// MaxSessionsPerAccount caps concurrent active sessions; the oldest is
	// deactivated when the cap is exceeded.
	MaxSessionsPerAccount int `yaml:"max_sessions_per_account"`

	// NameFilter screens usernames and nicknames.
	NameFilter NameFilterConfig `yaml:"name_filter"`
}

// NameFilterConfig lists the names accounts may not take. ReservedNames
// match exactly, BannedWords match as substrings; both case-insensitive.
type NameFilterConfig struct {
	Enabled       bool     `yaml:"enabled"`
	ReservedNames []string `yaml:"reserved_names"`
	BannedWords   []string `yaml:"banned_words"`
}

// TokenTTL returns the token lifetime as a duration.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// LockoutDuration returns the lockout window as a duration.
func (c AuthConfig) LockoutDuration() time.Duration {
	return time.Duration(c.LockoutMinutes) * time.Minute
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultServerConfig returns a ServerConfig with secure defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Listen: ListenConfig{
			Host: "0.0.0.0",
			Port: 8765,
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:      []string{}, // Same-origin only by default
			MaxMessageSize:      16384,
			WriteTimeoutSeconds: 10,
		},
		Connections: ConnectionsConfig{
			MaxPerIP: 5,
			MaxTotal: 500,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts:       5,
			LockoutSeconds:    30,
			MaxLockoutSeconds: 300,
		},
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Path:    "tower.db",
			Host:    "localhost",
			Port:    5432,
			Name:    "tower",
			User:    "tower",
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			TokenTTLHours:         24,
			MaxFailedLogins:       5,
			LockoutMinutes:        60,
			MaxSessionsPerAccount: 3,
			NameFilter: NameFilterConfig{
				Enabled:       true,
				ReservedNames: []string{"admin", "administrator", "system", "gm", "root"},
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "logs/towerd.log",
			Console:    true,
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// LoadServerConfig loads server configuration from a YAML file layered over
// the defaults, then applies environment overrides. A missing file is not an
// error; the defaults apply.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultServerConfig(), err
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets deployment environments override secrets and endpoints
// without editing the config file.
func (c *ServerConfig) applyEnv() {
	if v := os.Getenv("TOWER_LISTEN_HOST"); v != "" {
		c.Listen.Host = v
	}
	if v := os.Getenv("TOWER_LISTEN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Listen.Port = port
		}
	}
	if v := os.Getenv("TOWER_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("TOWER_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("TOWER_DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("TOWER_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("TOWER_DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("TOWER_DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("TOWER_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("TOWER_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("TOWER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// IsOriginAllowed checks if the given origin may open a WebSocket.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" {
			return true
		}
		if allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means a non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
