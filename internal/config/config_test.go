package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()

	if cfg == nil {
		t.Fatal("DefaultServerConfig returned nil")
	}

	if len(cfg.WebSocket.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.WebSocket.AllowedOrigins)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver by default, got %s", cfg.Database.Driver)
	}

	if cfg.Auth.MaxSessionsPerAccount != 3 {
		t.Errorf("expected 3 concurrent sessions by default, got %d", cfg.Auth.MaxSessionsPerAccount)
	}

	if cfg.Listen.Addr() != "0.0.0.0:8765" {
		t.Errorf("unexpected default listen addr %s", cfg.Listen.Addr())
	}
}

func TestLoadServerConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadServerConfig("/nonexistent/path/config.yaml")

	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected default config for missing file, got nil")
	}
}

func TestLoadServerConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "server.yaml")

	content := `
listen:
  port: 9000
websocket:
  allowed_origins:
    - "https://example.com"
  max_message_size: 8192
auth:
  token_ttl_hours: 12
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadServerConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Listen.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Listen.Port)
	}
	if len(cfg.WebSocket.AllowedOrigins) != 1 || cfg.WebSocket.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("unexpected origins %v", cfg.WebSocket.AllowedOrigins)
	}
	if cfg.WebSocket.MaxMessageSize != 8192 {
		t.Errorf("expected max message size 8192, got %d", cfg.WebSocket.MaxMessageSize)
	}
	if cfg.Auth.TokenTTLHours != 12 {
		t.Errorf("expected token ttl 12h, got %d", cfg.Auth.TokenTTLHours)
	}

	// Unset fields keep their defaults.
	if cfg.Auth.MaxFailedLogins != 5 {
		t.Errorf("expected default max failed logins 5, got %d", cfg.Auth.MaxFailedLogins)
	}
}

func TestLoadServerConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TOWER_JWT_SECRET", "env-secret")
	t.Setenv("TOWER_DB_DRIVER", "postgres")
	t.Setenv("TOWER_LISTEN_PORT", "7777")

	cfg, err := LoadServerConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("expected env jwt secret, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected env db driver, got %s", cfg.Database.Driver)
	}
	if cfg.Listen.Port != 7777 {
		t.Errorf("expected env port 7777, got %d", cfg.Listen.Port)
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{},
	}

	if !cfg.IsOriginAllowed("", "localhost:4000") {
		t.Error("expected empty origin to be allowed (same-origin)")
	}
	if !cfg.IsOriginAllowed("http://localhost:4000", "localhost:4000") {
		t.Error("expected matching origin to be allowed (same-origin)")
	}
	if cfg.IsOriginAllowed("http://evil.com", "localhost:4000") {
		t.Error("expected different origin to be rejected (same-origin policy)")
	}
}

func TestIsOriginAllowed_Wildcard(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{"*"},
	}

	if !cfg.IsOriginAllowed("http://anything.com", "localhost:4000") {
		t.Error("expected wildcard to allow any origin")
	}
}

func TestIsOriginAllowed_ExactMatch(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{
			"https://example.com",
			"http://localhost:3000",
		},
	}

	if !cfg.IsOriginAllowed("https://example.com", "localhost:4000") {
		t.Error("expected exact match to be allowed")
	}
	if cfg.IsOriginAllowed("http://evil.com", "localhost:4000") {
		t.Error("expected non-matching origin to be rejected")
	}
	if cfg.IsOriginAllowed("https://example.com:8080", "localhost:4000") {
		t.Error("expected partial match to be rejected")
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin      string
		requestHost string
		expected    bool
	}{
		{"", "localhost:4000", true},
		{"http://localhost:4000", "localhost:4000", true},
		{"https://localhost:4000", "localhost:4000", true},
		{"http://localhost:4000/", "localhost:4000", true},
		{"http://example.com", "localhost:4000", false},
		{"http://localhost:3000", "localhost:4000", false},
		{"ws://localhost:4000", "localhost:4000", true},
	}

	for _, tt := range tests {
		result := isSameOrigin(tt.origin, tt.requestHost)
		if result != tt.expected {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v",
				tt.origin, tt.requestHost, result, tt.expected)
		}
	}
}

func TestGameDefaults(t *testing.T) {
	cfg := Default()

	if cfg.GridSize != 15 {
		t.Errorf("expected 15x15 grid, got %d", cfg.GridSize)
	}
	if cfg.MaxFloors != 100 {
		t.Errorf("expected 100 floors, got %d", cfg.MaxFloors)
	}

	if len(cfg.WeaponAffixes) != 15 {
		t.Errorf("expected 15 weapon affix kinds, got %d", len(cfg.WeaponAffixes))
	}
	if len(cfg.ArmorAffixes) != 9 {
		t.Errorf("expected 9 armor affix kinds, got %d", len(cfg.ArmorAffixes))
	}

	for _, name := range []string{"common", "rare", "epic", "legendary"} {
		tier, ok := cfg.Rarities[name]
		if !ok {
			t.Fatalf("missing rarity tier %s", name)
		}
		if tier.AffixCount < 1 || tier.AffixCount > 4 {
			t.Errorf("rarity %s has affix count %d", name, tier.AffixCount)
		}
		if len(tier.Prefixes) == 0 {
			t.Errorf("rarity %s has no name prefixes", name)
		}
	}

	if cfg.Rarities["legendary"].DropWeight >= cfg.Rarities["common"].DropWeight {
		t.Error("legendary should be rarer than common")
	}

	if cfg.FinalBoss.HP != 5000 || cfg.FinalBoss.Gold != 9999 {
		t.Errorf("unexpected final boss stats %+v", cfg.FinalBoss)
	}
}

func TestGameLoadOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "game.yaml")

	content := `
max_floors: 50
merchant_base_chance: 0.25
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxFloors != 50 {
		t.Errorf("expected max floors 50, got %d", cfg.MaxFloors)
	}
	if cfg.MerchantBaseChance != 0.25 {
		t.Errorf("expected merchant base chance 0.25, got %f", cfg.MerchantBaseChance)
	}
	if cfg.GridSize != 15 {
		t.Errorf("expected grid size default 15, got %d", cfg.GridSize)
	}
}
