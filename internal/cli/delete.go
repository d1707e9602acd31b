package cli

import (
	"context"
	"flag"
	"fmt"

	"fi/internal/db"

	"github.com/google/subcommands"
	"github.com/jmoiron/sqlx"
)

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete every account and snapshot" }
func (*deleteCmd) Usage() string {
	return `delete

  Removes all rows from both tables. Snapshots go first because they
  reference accounts.
`
}

func (*deleteCmd) SetFlags(_ *flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	err = db.WithTx(ctx, a.db, func(tx *sqlx.Tx) error {
		if err := a.snapshots.DeleteAll(ctx, tx); err != nil {
			return err
		}
		return a.accounts.DeleteAll(ctx, tx)
	})
	if err != nil {
		return fail(err)
	}
	fmt.Println("deleted all accounts and snapshots")
	return subcommands.ExitSuccess
}
