// Package config loads the server settings. Values are layered: built-in
// defaults, then an optional YAML file, then SEF_* environment variables
// (which may come from a .env file), then command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the sef commands.
type Config struct {
	Addr      string          `yaml:"addr"`
	DBPath    string          `yaml:"db_path"`
	LogPath   string          `yaml:"log_path"`
	LogLevel  string          `yaml:"log_level"`
	AdminUser string          `yaml:"admin_user"`
	TokenTTL  time.Duration   `yaml:"token_ttl"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// DashboardConfig tunes the dashboard read model.
type DashboardConfig struct {
	RecentLimit int `yaml:"recent_limit"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Addr:      ":8080",
		DBPath:    "sef.sqlite3",
		LogLevel:  "info",
		AdminUser: "admin",
		TokenTTL:  7 * 24 * time.Hour,
		Dashboard: DashboardConfig{RecentLimit: 10},
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any.
// ${VAR} references in the file are expanded from the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadDotenv adds the variables of a .env file to the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from SEF_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"SEF_ADDR":       &c.Addr,
		"SEF_DB":         &c.DBPath,
		"SEF_LOG":        &c.LogPath,
		"SEF_LOG_LEVEL":  &c.LogLevel,
		"SEF_ADMIN_USER": &c.AdminUser,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("SEF_TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SEF_TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v, ok := lookup("SEF_RECENT_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SEF_RECENT_LIMIT: %w", err)
		}
		c.Dashboard.RecentLimit = n
	}
	return nil
}

// Validate reports the first setting that is missing or out of range.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.AdminUser == "" {
		return fmt.Errorf("admin_user is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.Dashboard.RecentLimit <= 0 {
		return fmt.Errorf("dashboard.recent_limit must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
