package cli

import (
	"context"
	"flag"
	"fmt"

	"fi/internal/currency"
	"fi/internal/db"
	"fi/internal/sync"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type pullCmd struct {
	currency string
	log      zerolog.Logger
}

func (*pullCmd) Name() string     { return "pull" }
func (*pullCmd) Synopsis() string { return "pull account and snapshot data from the table source" }
func (*pullCmd) Usage() string {
	return `pull -c <currency>|all

  Fetches the balance table for the currency (or every currency) and upserts
  accounts and snapshots. Existing rows are never overwritten.
`
}

func (c *pullCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "all", "currency to pull, or all")
}

func (c *pullCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	syncer := sync.NewSyncer(db.NewTxRunner(a.db), a.accounts, a.snapshots, a.feed, c.log)

	if c.currency == "all" {
		if _, err := syncer.SyncAll(ctx); err != nil {
			return fail(err)
		}
		fmt.Println("synced all currencies")
		return subcommands.ExitSuccess
	}

	cur, err := currency.Parse(c.currency)
	if err != nil {
		return fail(err)
	}
	if _, err := syncer.Sync(ctx, cur); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
