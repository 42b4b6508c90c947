package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadYAMLWithEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sef.yaml")

	t.Setenv("SEF_TEST_DB_DIR", "/var/lib/sef")

	data := `
addr: "127.0.0.1:9000"
db_path: "${SEF_TEST_DB_DIR}/ledger.sqlite3"
token_ttl: 12h
dashboard:
  recent_limit: 25
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/var/lib/sef/ledger.sqlite3" {
		t.Errorf("expected expanded db path, got %q", cfg.DBPath)
	}
	if cfg.TokenTTL != 12*time.Hour {
		t.Errorf("expected 12h token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.Dashboard.RecentLimit != 25 {
		t.Errorf("expected recent limit 25, got %d", cfg.Dashboard.RecentLimit)
	}
	// Unset keys keep their defaults.
	if cfg.AdminUser != "admin" {
		t.Errorf("expected default admin user, got %q", cfg.AdminUser)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SEF_ADDR":         ":1234",
		"SEF_LOG_LEVEL":    "debug",
		"SEF_TOKEN_TTL":    "1h",
		"SEF_RECENT_LIMIT": "5",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Addr != ":1234" || cfg.TokenTTL != time.Hour || cfg.Dashboard.RecentLimit != 5 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if l, _ := cfg.Level(); l != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", l)
	}
	if cfg.DBPath != Default().DBPath {
		t.Errorf("expected db path untouched, got %q", cfg.DBPath)
	}

	env["SEF_RECENT_LIMIT"] = "ten"
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Error("expected error for non-numeric limit")
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SEF_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SEF_TEST_DOTENV", "")
	os.Unsetenv("SEF_TEST_DOTENV")

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("SEF_TEST_DOTENV"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}

	if err := LoadDotenv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no addr", func(c *Config) { c.Addr = "" }},
		{"no db", func(c *Config) { c.DBPath = "" }},
		{"no admin", func(c *Config) { c.AdminUser = "" }},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }},
		{"zero limit", func(c *Config) { c.Dashboard.RecentLimit = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
