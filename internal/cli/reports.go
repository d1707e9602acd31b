package cli

import (
	"context"
	"flag"
	"os"

	"fi/internal/currency"
	"fi/internal/report"

	"github.com/google/subcommands"
)

type sumCmd struct {
	currency string
}

func (*sumCmd) Name() string     { return "sum" }
func (*sumCmd) Synopsis() string { return "display the latest balance of every account and the total" }
func (*sumCmd) Usage() string {
	return `sum -c <currency>
`
}

func (c *sumCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "currency to sum")
}

func (c *sumCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, c.currency, func(ctx context.Context, r *report.Reporter, cur currency.Currency) error {
		return r.LatestSum(ctx, cur)
	})
}

type historyCmd struct {
	currency string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display per-date totals with their change over time" }
func (*historyCmd) Usage() string {
	return `history -c <currency>
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "currency to show history for")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, c.currency, func(ctx context.Context, r *report.Reporter, cur currency.Currency) error {
		return r.History(ctx, cur)
	})
}

type netWorthCmd struct {
	currency string
}

func (*netWorthCmd) Name() string     { return "networth" }
func (*netWorthCmd) Synopsis() string { return "display net worth across all currencies in one currency" }
func (*netWorthCmd) Usage() string {
	return `networth -c <currency>

  Converts the other currencies' latest balances into the given currency
  using live exchange rates.
`
}

func (c *netWorthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "currency to report net worth in")
}

func (c *netWorthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, c.currency, func(ctx context.Context, r *report.Reporter, cur currency.Currency) error {
		return r.NetWorth(ctx, cur)
	})
}

func runReport(ctx context.Context, rawCurrency string, fn func(context.Context, *report.Reporter, currency.Currency) error) subcommands.ExitStatus {
	cur, err := currency.Parse(rawCurrency)
	if err != nil {
		return fail(err)
	}
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	reporter := report.NewReporter(a.snapshots, a.feed, os.Stdout)
	if err := fn(ctx, reporter, cur); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
