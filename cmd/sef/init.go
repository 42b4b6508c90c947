package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/google/subcommands"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/sef/internal/db"
	"github.com/erazemk/sef/internal/model"
	"github.com/erazemk/sef/internal/store"
)

type initCmd struct {
	settings
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new database and admin account" }
func (*initCmd) Usage() string {
	return `init [-db path] [-user name]:
  Create the database schema and an admin account with a random password.
  Fails if the database file already exists.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	c.setAdminFlag(f)
}

func (c *initCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	if _, err := os.Stat(cfg.DBPath); err == nil {
		fmt.Fprintf(os.Stderr, "database %s already exists\n", cfg.DBPath)
		return subcommands.ExitFailure
	} else if !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	database, password, err := initDatabase(ctx, cfg.DBPath, cfg.AdminUser)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	database.Close()

	printInitResult(os.Stdout, cfg.DBPath, cfg.AdminUser, password)
	return subcommands.ExitSuccess
}

// initDatabase creates a new database at path with the schema and an admin
// account. On failure the partially created file is removed.
func initDatabase(ctx context.Context, path, adminUsername string) (database *sql.DB, password string, err error) {
	database, err = db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err != nil {
			database.Close()
			os.Remove(path)
			database = nil
		}
	}()

	if err = db.EnsureSchema(database); err != nil {
		return nil, "", fmt.Errorf("ensuring schema: %w", err)
	}

	password, err = generatePassword(16)
	if err != nil {
		return nil, "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err = store.CreateUser(ctx, database, adminUsername, string(hash), model.RoleAdmin); err != nil {
		return nil, "", fmt.Errorf("creating admin user: %w", err)
	}
	return database, password, nil
}

func printInitResult(w io.Writer, dbPath, username, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Username: %s\n", username)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}

// generatePassword returns a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
