package config

import (
	"strings"
	"testing"
	"time"

	"fi/internal/currency"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "EXCHANGE_RATE_API_URL", "HTTP_TIMEOUT", "TABLE_API_URL_EUR", "TABLE_API_URL_JPY", "TABLE_API_URL_USD"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.DatabaseURL == "" {
		t.Fatal("expected a default database URL")
	}
	if cfg.ExchangeRateURL != "https://api.exchangeratesapi.io/latest" {
		t.Fatalf("unexpected default rate URL: %q", cfg.ExchangeRateURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected default timeout: %v", cfg.HTTPTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example/fi")
	t.Setenv("TABLE_API_URL_EUR", "https://tables.example/eur")
	t.Setenv("HTTP_TIMEOUT", "3s")
	cfg := Load()
	if cfg.DatabaseURL != "postgres://example/fi" {
		t.Fatalf("unexpected database URL: %q", cfg.DatabaseURL)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.HTTPTimeout)
	}
	addr, err := cfg.TableURL(currency.EUR)
	if err != nil || addr != "https://tables.example/eur" {
		t.Fatalf("unexpected table URL: %q, %v", addr, err)
	}
}

func TestTableURLMissing(t *testing.T) {
	t.Setenv("TABLE_API_URL_JPY", "")
	cfg := Load()
	_, err := cfg.TableURL(currency.JPY)
	if err == nil {
		t.Fatal("expected error for missing table URL")
	}
	if !strings.Contains(err.Error(), "TABLE_API_URL_JPY") {
		t.Fatalf("error should name the variable to set: %v", err)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Config{
		DatabaseURL:     "",
		ExchangeRateURL: "ftp://rates.example",
		HTTPTimeout:     time.Millisecond,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	for _, want := range []string{"DATABASE_URL", "scheme", "timeout"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("validation error missing %q: %s", want, msg)
		}
	}
}

func TestInvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	cfg := Load()
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("expected fallback timeout, got %v", cfg.HTTPTimeout)
	}
}
