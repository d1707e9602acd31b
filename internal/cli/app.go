// Package cli implements the fi subcommands.
package cli

import (
	"fmt"
	"os"

	"fi/internal/config"
	"fi/internal/db"
	"fi/internal/feed"
	"fi/internal/store"

	"github.com/google/subcommands"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Register registers every fi subcommand on the commander.
func Register(c *subcommands.Commander, log zerolog.Logger) {
	c.Register(&pullCmd{log: log}, "sync")
	c.Register(&sumCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&netWorthCmd{}, "reports")
	c.Register(&accountsCmd{}, "reports")
	c.Register(&deleteCmd{}, "maintenance")
}

// app holds everything a command needs for one invocation: config, the store
// handle and the external clients. The process is short-lived, so it is
// opened per command and closed when the command returns.
type app struct {
	cfg       config.Config
	db        *sqlx.DB
	accounts  *store.AccountStore
	snapshots *store.SnapshotStore
	feed      *feed.Client
}

func openApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &app{
		cfg:       cfg,
		db:        database,
		accounts:  store.NewAccountStore(database),
		snapshots: store.NewSnapshotStore(database),
		feed:      feed.NewClient(cfg),
	}, nil
}

func (a *app) close() {
	_ = a.db.Close()
}

// fail prints a single-line diagnostic to stderr and maps to a non-zero
// exit.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}
