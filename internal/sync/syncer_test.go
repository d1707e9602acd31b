package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"fi/internal/currency"
	"fi/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(_ context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type fakeAccountStore struct {
	existing map[string]bool
	upserted []store.Account
	err      error
}

func (f *fakeAccountStore) Upsert(_ context.Context, _ store.Execer, a store.Account) error {
	if f.err != nil {
		return f.err
	}
	if f.existing[a.ID] {
		return store.ErrConflict
	}
	f.upserted = append(f.upserted, a)
	return nil
}

type fakeSnapshotStore struct {
	outcomes func(accountID string, amounts map[string]int32) []store.EntryOutcome
	calls    int
}

func (f *fakeSnapshotStore) BulkUpsert(_ context.Context, _ store.Execer, accountID string, amounts map[string]int32) []store.EntryOutcome {
	f.calls++
	if f.outcomes == nil {
		return nil
	}
	return f.outcomes(accountID, amounts)
}

type fakeFetcher struct {
	payloads map[currency.Currency]string
	errs     map[currency.Currency]error
}

func (f fakeFetcher) FetchTable(_ context.Context, cur currency.Currency) (json.RawMessage, error) {
	if err := f.errs[cur]; err != nil {
		return nil, err
	}
	return json.RawMessage(f.payloads[cur]), nil
}

func allCreated(_ string, amounts map[string]int32) []store.EntryOutcome {
	var outcomes []store.EntryOutcome
	for date := range amounts {
		outcomes = append(outcomes, store.EntryOutcome{Date: date})
	}
	return outcomes
}

func TestSyncCountsOutcomes(t *testing.T) {
	accounts := &fakeAccountStore{existing: map[string]bool{"a2": true}}
	snapshots := &fakeSnapshotStore{
		outcomes: func(accountID string, amounts map[string]int32) []store.EntryOutcome {
			if accountID == "a1" {
				return []store.EntryOutcome{
					{Date: "2024-01-01"},
					{Date: "2024-02-01", Err: store.ErrConflict},
				}
			}
			return []store.EntryOutcome{
				{Date: "bogus", Err: fmt.Errorf("%w: %q", store.ErrInvalidDate, "bogus")},
			}
		},
	}
	fetcher := fakeFetcher{payloads: map[currency.Currency]string{
		currency.USD: `[
			{"id":"a1","Name":"Cash","Currency":"USD","Type":"checking","2024-01-01":100,"2024-02-01":150},
			{"id":"a2","Name":"Broker","Currency":"USD","Type":"investment","bogus":1,"note":"text"}
		]`,
	}}

	syncer := NewSyncer(fakeTxRunner{}, accounts, snapshots, fetcher, zerolog.Nop())
	report, err := syncer.Sync(context.Background(), currency.USD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SyncID == "" {
		t.Fatal("expected a sync id")
	}
	if report.AccountsCreated != 1 || report.AccountsSkipped != 1 {
		t.Fatalf("unexpected account counts: %+v", report)
	}
	if report.SnapshotsCreated != 1 || report.SnapshotsConflicted != 1 || report.SnapshotsInvalidDate != 1 {
		t.Fatalf("unexpected snapshot counts: %+v", report)
	}
	if report.FieldsSkipped != 1 {
		t.Fatalf("unexpected skipped field count: %+v", report)
	}
	if len(accounts.upserted) != 1 || accounts.upserted[0].ID != "a1" {
		t.Fatalf("unexpected upserts: %#v", accounts.upserted)
	}
	if snapshots.calls != 2 {
		t.Fatalf("expected bulk upsert per row, got %d calls", snapshots.calls)
	}
}

func TestSyncAbortsOnInvalidPayload(t *testing.T) {
	fetcher := fakeFetcher{payloads: map[currency.Currency]string{
		currency.USD: `{"id":"a1"}`,
	}}
	syncer := NewSyncer(fakeTxRunner{}, &fakeAccountStore{}, &fakeSnapshotStore{}, fetcher, zerolog.Nop())
	_, err := syncer.Sync(context.Background(), currency.USD)
	if !errors.Is(err, ErrInvalidPayloadShape) {
		t.Fatalf("expected ErrInvalidPayloadShape, got %v", err)
	}
}

func TestSyncAbortsOnMalformedAmount(t *testing.T) {
	fetcher := fakeFetcher{payloads: map[currency.Currency]string{
		currency.USD: `[{"id":"a1","2024-01-01":1.25}]`,
	}}
	snapshots := &fakeSnapshotStore{}
	syncer := NewSyncer(fakeTxRunner{}, &fakeAccountStore{}, snapshots, fetcher, zerolog.Nop())
	_, err := syncer.Sync(context.Background(), currency.USD)
	if !errors.Is(err, ErrMalformedAmount) {
		t.Fatalf("expected ErrMalformedAmount, got %v", err)
	}
	if snapshots.calls != 0 {
		t.Fatal("no snapshots should be written after a malformed amount")
	}
}

func TestSyncPropagatesStorageFailure(t *testing.T) {
	boom := errors.New("connection refused")
	fetcher := fakeFetcher{payloads: map[currency.Currency]string{
		currency.USD: `[{"id":"a1","Name":"Cash","Currency":"USD","Type":"c"}]`,
	}}
	syncer := NewSyncer(fakeTxRunner{}, &fakeAccountStore{err: boom}, &fakeSnapshotStore{}, fetcher, zerolog.Nop())
	if _, err := syncer.Sync(context.Background(), currency.USD); !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSyncAllIsolatesCurrencyFailures(t *testing.T) {
	accounts := &fakeAccountStore{}
	snapshots := &fakeSnapshotStore{outcomes: allCreated}
	fetcher := fakeFetcher{
		payloads: map[currency.Currency]string{
			currency.JPY: `[{"id":"j1","Name":"Yen","Currency":"JPY","Type":"cash","2024-01-01":5000}]`,
			currency.USD: `[{"id":"u1","Name":"Cash","Currency":"USD","Type":"cash","2024-01-01":100}]`,
		},
		errs: map[currency.Currency]error{
			currency.EUR: errors.New("table host unreachable"),
		},
	}

	syncer := NewSyncer(fakeTxRunner{}, accounts, snapshots, fetcher, zerolog.Nop())
	reports, err := syncer.SyncAll(context.Background())
	if err == nil {
		t.Fatal("expected the EUR failure to be reported")
	}
	if len(reports) != 3 {
		t.Fatalf("expected a report per currency, got %d", len(reports))
	}
	if reports[currency.JPY].AccountsCreated != 1 || reports[currency.USD].AccountsCreated != 1 {
		t.Fatalf("other currencies should still sync: %+v", reports)
	}
	if reports[currency.EUR].AccountsCreated != 0 {
		t.Fatalf("failed currency should not create accounts: %+v", reports[currency.EUR])
	}
}
