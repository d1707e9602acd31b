package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list every known account" }
func (*accountsCmd) Usage() string {
	return `accounts
`
}

func (*accountsCmd) SetFlags(_ *flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	accounts, err := a.accounts.ListAll(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Println("\nAll accounts")
	fmt.Println("---")
	for _, account := range accounts {
		fmt.Printf("Name: %s\n", account.Name)
		fmt.Printf("Currency: %s\n", account.Currency)
		fmt.Printf("Description: %s\n", account.Description)
		fmt.Println("---")
	}
	return subcommands.ExitSuccess
}
