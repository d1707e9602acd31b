// Package feed talks to the two external collaborators: the table API that
// serves one balance table per currency, and the exchange-rate API.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"fi/internal/config"
	"fi/internal/currency"
)

// ErrExchangeRateUnavailable reports that current rates could not be
// fetched. Net worth cannot be computed with missing or stale rates.
var ErrExchangeRateUnavailable = errors.New("exchange rates unavailable")

// Rates is the exchange-rate document: Rates maps a currency code to units
// of that currency per one unit of Base.
type Rates struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

type Client struct {
	http     *http.Client
	tableURL func(currency.Currency) (string, error)
	ratesURL string
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
		tableURL: cfg.TableURL,
		ratesURL: cfg.ExchangeRateURL,
	}
}

// FetchTable returns the raw table payload for one currency.
func (c *Client) FetchTable(ctx context.Context, cur currency.Currency) (json.RawMessage, error) {
	addr, err := c.tableURL(cur)
	if err != nil {
		return nil, err
	}
	var payload json.RawMessage
	if err := c.getJSON(ctx, addr, &payload); err != nil {
		return nil, fmt.Errorf("fetch %s table: %w", cur, err)
	}
	return payload, nil
}

// FetchRates returns current exchange rates against the base currency.
func (c *Client) FetchRates(ctx context.Context, base currency.Currency) (Rates, error) {
	var rates Rates
	addr := c.ratesURL + "?base=" + base.String()
	if err := c.getJSON(ctx, addr, &rates); err != nil {
		return Rates{}, fmt.Errorf("%w: %v", ErrExchangeRateUnavailable, err)
	}
	return rates, nil
}

// getJSON performs an HTTP GET and unmarshals the JSON response into data.
func (c *Client) getJSON(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot GET %s%s: %s", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
