package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/erazemk/sef/internal/config"
)

// settings are the flags shared by every command. Flags given on the command
// line win over the environment, which wins over the config file.
type settings struct {
	configPath string
	envFile    string
	dbPath     string
	logPath    string
	logLevel   string
	addr       string
	adminUser  string
}

func (s *settings) setFlags(f *flag.FlagSet) {
	f.StringVar(&s.configPath, "config", "", "YAML config file")
	f.StringVar(&s.envFile, "env", ".env", "file of SEF_* variables to load if present")
	f.StringVar(&s.dbPath, "db", "", "SQLite database path (default: sef.sqlite3)")
	f.StringVar(&s.logPath, "log", "", "also write logs to this file")
	f.StringVar(&s.logLevel, "level", "", "log level: debug, info, warn or error")
}

func (s *settings) setAdminFlag(f *flag.FlagSet) {
	f.StringVar(&s.adminUser, "user", "", "admin username when creating a database (default: admin)")
}

func (s *settings) load(f *flag.FlagSet) (config.Config, error) {
	if err := config.LoadDotenv(s.envFile); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(s.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, err
	}

	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "db":
			cfg.DBPath = s.dbPath
		case "log":
			cfg.LogPath = s.logPath
		case "level":
			cfg.LogLevel = s.logLevel
		case "addr":
			cfg.Addr = s.addr
		case "user":
			cfg.AdminUser = s.adminUser
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
