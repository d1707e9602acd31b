package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"fi/internal/currency"
)

// tableURLPrefix is the environment variable prefix for per-currency table
// sources, e.g. TABLE_API_URL_EUR.
const tableURLPrefix = "TABLE_API_URL_"

type Config struct {
	DatabaseURL     string
	TableURLs       map[currency.Currency]string
	ExchangeRateURL string
	HTTPTimeout     time.Duration
}

func Load() Config {
	tableURLs := make(map[currency.Currency]string, len(currency.All()))
	for _, cur := range currency.All() {
		tableURLs[cur] = getEnv(tableURLPrefix+cur.String(), "")
	}
	return Config{
		DatabaseURL:     getEnv("DATABASE_URL", "postgres://fi:fi@localhost:5432/fi?sslmode=disable"),
		TableURLs:       tableURLs,
		ExchangeRateURL: getEnv("EXCHANGE_RATE_API_URL", "https://api.exchangeratesapi.io/latest"),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", 15*time.Second),
	}
}

// TableURL returns the configured table source for one currency. Table URLs
// are checked here rather than in Validate so read-only commands work
// without feed configuration.
func (c Config) TableURL(cur currency.Currency) (string, error) {
	addr := c.TableURLs[cur]
	if addr == "" {
		return "", fmt.Errorf("no table source for %s: set %s%s", cur, tableURLPrefix, cur)
	}
	return addr, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL cannot be empty")
	}

	if c.ExchangeRateURL == "" {
		problems = append(problems, "EXCHANGE_RATE_API_URL cannot be empty")
	} else if parsed, err := url.Parse(c.ExchangeRateURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid exchange rate URL %q: %v", c.ExchangeRateURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("invalid exchange rate URL scheme %q: must be http or https", parsed.Scheme))
	}

	if c.HTTPTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
