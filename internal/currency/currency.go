package currency

import (
	"fmt"
	"strings"
)

// Currency is the closed set of currencies the ledger tracks.
type Currency string

const (
	EUR Currency = "EUR"
	JPY Currency = "JPY"
	USD Currency = "USD"
)

// All returns every supported currency in a stable order.
func All() []Currency {
	return []Currency{EUR, JPY, USD}
}

// Parse maps user input to a Currency. It accepts the short aliases the CLI
// has always taken on the command line.
func Parse(s string) (Currency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eu", "eur", "euro":
		return EUR, nil
	case "jp", "jpy", "yen":
		return JPY, nil
	case "us", "usd", "dollar":
		return USD, nil
	}
	return "", fmt.Errorf("unknown currency %q", s)
}

func (c Currency) String() string {
	return string(c)
}

// Others returns the two currencies that are not c. The net worth report
// uses it to fan out exchange-rate conversions.
func (c Currency) Others() [2]Currency {
	switch c {
	case EUR:
		return [2]Currency{JPY, USD}
	case JPY:
		return [2]Currency{EUR, USD}
	default:
		return [2]Currency{EUR, JPY}
	}
}
