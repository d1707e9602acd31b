// Package report renders the console reports: latest balances, historical
// trend, and multi-currency net worth.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fi/internal/currency"
	"fi/internal/feed"
	"fi/internal/store"

	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"
	"github.com/shopspring/decimal"
)

var errTotalOverflow = errors.New("total overflows int64")

type SnapshotSource interface {
	LatestPerAccount(ctx context.Context, cur string) ([]store.LatestBalance, error)
	History(ctx context.Context, cur string) ([]store.HistoryPoint, error)
}

type RateSource interface {
	FetchRates(ctx context.Context, base currency.Currency) (feed.Rates, error)
}

type Reporter struct {
	snapshots SnapshotSource
	rates     RateSource
	out       io.Writer
}

func NewReporter(snapshots SnapshotSource, rates RateSource, out io.Writer) *Reporter {
	return &Reporter{snapshots: snapshots, rates: rates, out: out}
}

// LatestSum prints the most recent balance of every account in the currency
// and their total.
func (r *Reporter) LatestSum(ctx context.Context, cur currency.Currency) error {
	rows, err := r.snapshots.LatestPerAccount(ctx, cur.String())
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\n%s - latest\n---\n", cur)
	var total int64
	for _, row := range rows {
		fmt.Fprintf(r.out, "%s: %s %d\n", row.Date.Format(store.DateLayout), row.AccountName, row.Amount)
		if total, err = addChecked(total, int64(row.Amount)); err != nil {
			return err
		}
	}
	fmt.Fprintf(r.out, "---\nTotal: %d\n\n", total)
	return nil
}

// History prints the per-date totals of the currency with the change against
// the previous date, then a line chart of the series. A change of zero or
// more counts as improving.
func (r *Reporter) History(ctx context.Context, cur currency.Currency) error {
	points, err := r.snapshots.History(ctx, cur.String())
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\n%s - history\n---\n", cur)

	improving := color.New(color.FgCyan).SprintFunc()
	declining := color.New(color.FgRed).SprintFunc()

	var prev int64
	for i, p := range points {
		date := p.Date.Format(store.DateLayout)
		if i == 0 {
			fmt.Fprintf(r.out, "%s: %d\n", date, p.Total)
		} else {
			diff := p.Total - prev
			percent := "n/a"
			if prev != 0 {
				percent = fmt.Sprintf("%.2f%%", float64(p.Total)/float64(prev)*100)
			}
			if diff >= 0 {
				fmt.Fprintf(r.out, "%s: %d %s\n", date, p.Total, improving(fmt.Sprintf("+%d / %s", diff, percent)))
			} else {
				fmt.Fprintf(r.out, "%s: %d %s\n", date, p.Total, declining(fmt.Sprintf("%d / %s", diff, percent)))
			}
		}
		prev = p.Total
	}

	if len(points) >= 2 {
		series := make([]float64, len(points))
		for i, p := range points {
			series[i] = float64(p.Total)
		}
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, asciigraph.Plot(series, asciigraph.Height(12), asciigraph.Width(60)))
	}
	fmt.Fprintln(r.out)
	return nil
}

// NetWorth prints the latest balances of the base currency, then the other
// currencies' balances converted into the base via live exchange rates, and
// a grand total.
//
// A rate is taken as units of the quoted currency per one unit of the base,
// so a foreign amount converts to base as amount / rate, rounded half away
// from zero.
func (r *Reporter) NetWorth(ctx context.Context, base currency.Currency) error {
	rows, err := r.snapshots.LatestPerAccount(ctx, base.String())
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\nNet worth in %s\n===\n", base)
	fmt.Fprintf(r.out, "%s accounts\n", base)
	var total int64
	for _, row := range rows {
		fmt.Fprintf(r.out, "%s: %s %d\n", row.Date.Format(store.DateLayout), row.AccountName, row.Amount)
		if total, err = addChecked(total, int64(row.Amount)); err != nil {
			return err
		}
	}

	rates, err := r.rates.FetchRates(ctx, base)
	if err != nil {
		return err
	}
	for _, other := range base.Others() {
		rate, ok := rates.Rates[other.String()]
		if !ok || rate <= 0 {
			return fmt.Errorf("%w: no %s rate for base %s", feed.ErrExchangeRateUnavailable, other, base)
		}
		otherRows, err := r.snapshots.LatestPerAccount(ctx, other.String())
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "---\n%s accounts (1.00 %s = %v %s)\n", other, rates.Base, rate, other)
		divisor := decimal.NewFromFloat(rate)
		for _, row := range otherRows {
			converted := decimal.NewFromInt(int64(row.Amount)).DivRound(divisor, 0)
			fmt.Fprintf(r.out, "%s: %s %s\n", row.Date.Format(store.DateLayout), row.AccountName, converted)
			if total, err = addChecked(total, converted.IntPart()); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(r.out, "===\nTotal: %d %s\n\n", total, base)
	return nil
}

func addChecked(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, errTotalOverflow
	}
	return sum, nil
}
