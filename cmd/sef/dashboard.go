package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/erazemk/sef/internal/db"
	"github.com/erazemk/sef/internal/model"
	"github.com/erazemk/sef/internal/store"
)

type dashboardCmd struct {
	settings
	lockerID int64
	limit    int
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "print a dashboard as JSON" }
func (*dashboardCmd) Usage() string {
	return `dashboard [-locker id] [-limit n] [-db path]:
  Print the totals and recent transactions of one locker, or of all
  lockers when -locker is omitted.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.Int64Var(&c.lockerID, "locker", 0, "locker id (default: all lockers)")
	f.IntVar(&c.limit, "limit", 0, "number of recent transactions (default: dashboard.recent_limit)")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if c.lockerID < 0 {
		fmt.Fprintln(os.Stderr, "invalid -locker")
		return subcommands.ExitUsageError
	}
	limit := c.limit
	if limit <= 0 {
		limit = cfg.Dashboard.RecentLimit
	}

	// Don't let db.Open create an empty file for a mistyped path.
	if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "database %s does not exist\n", cfg.DBPath)
		return subcommands.ExitFailure
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer database.Close()

	if err := printDashboard(ctx, os.Stdout, database, c.lockerID, limit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printDashboard writes the dashboard of lockerID, or of all lockers when it
// is zero.
func printDashboard(ctx context.Context, w io.Writer, database *sql.DB, lockerID int64, limit int) error {
	var (
		d   *model.Dashboard
		err error
	)
	if lockerID == 0 {
		d, err = store.GetAllDashboard(ctx, database, limit)
	} else {
		d, err = store.GetDashboard(ctx, database, lockerID, limit)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
