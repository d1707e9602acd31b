package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fi/internal/currency"
	"fi/internal/db"
	"fi/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type AccountStore interface {
	Upsert(ctx context.Context, tx store.Execer, a store.Account) error
}

type SnapshotStore interface {
	BulkUpsert(ctx context.Context, tx store.Execer, accountID string, amountsByDate map[string]int32) []store.EntryOutcome
}

type TableFetcher interface {
	FetchTable(ctx context.Context, cur currency.Currency) (json.RawMessage, error)
}

// Syncer drives the normalizer over a fetched table and writes through the
// stores. Its job is maximum forward progress: row-level conflicts are
// counted and logged, never fatal.
type Syncer struct {
	txRunner  db.TxRunner
	accounts  AccountStore
	snapshots SnapshotStore
	feed      TableFetcher
	log       zerolog.Logger
}

func NewSyncer(txRunner db.TxRunner, accounts AccountStore, snapshots SnapshotStore, feed TableFetcher, log zerolog.Logger) *Syncer {
	return &Syncer{
		txRunner:  txRunner,
		accounts:  accounts,
		snapshots: snapshots,
		feed:      feed,
		log:       log,
	}
}

// Report aggregates what one sync pass did.
type Report struct {
	SyncID               string
	Currency             currency.Currency
	AccountsCreated      int
	AccountsSkipped      int
	SnapshotsCreated     int
	SnapshotsConflicted  int
	SnapshotsInvalidDate int
	FieldsSkipped        int
}

// Sync pulls one currency's table and applies it inside a single storage
// transaction, so a contract violation halfway through leaves nothing
// half-written.
func (s *Syncer) Sync(ctx context.Context, cur currency.Currency) (Report, error) {
	report := Report{SyncID: uuid.NewString(), Currency: cur}
	log := s.log.With().Str("sync_id", report.SyncID).Str("currency", cur.String()).Logger()

	payload, err := s.feed.FetchTable(ctx, cur)
	if err != nil {
		return report, err
	}
	rawRows, err := DecodeTable(payload)
	if err != nil {
		return report, err
	}

	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, rawRow := range rawRows {
			row, err := NormalizeRow(rawRow)
			if err != nil {
				return err
			}
			if err := s.applyRow(ctx, tx, log, row, &report); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	log.Info().
		Int("accounts_created", report.AccountsCreated).
		Int("accounts_skipped", report.AccountsSkipped).
		Int("snapshots_created", report.SnapshotsCreated).
		Int("snapshots_conflicted", report.SnapshotsConflicted).
		Int("snapshots_invalid_date", report.SnapshotsInvalidDate).
		Msg("sync completed")
	return report, nil
}

func (s *Syncer) applyRow(ctx context.Context, tx store.Execer, log zerolog.Logger, row Row, report *Report) error {
	for _, field := range row.Skipped {
		report.FieldsSkipped++
		log.Warn().Str("account_id", row.ID).Str("field", field).Msg("skipping non-numeric field")
	}

	err := s.accounts.Upsert(ctx, tx, store.Account{
		ID:          row.ID,
		Name:        row.Name,
		Currency:    row.Currency,
		Description: row.Description,
	})
	switch {
	case err == nil:
		report.AccountsCreated++
		log.Info().Str("account", row.Name).Msg("added new account")
	case errors.Is(err, store.ErrConflict):
		report.AccountsSkipped++
		log.Debug().Str("account", row.Name).Msg("account already recorded")
	default:
		return fmt.Errorf("upsert account %q: %w", row.ID, err)
	}

	for _, outcome := range s.snapshots.BulkUpsert(ctx, tx, row.ID, row.AmountsByDate) {
		switch {
		case outcome.Err == nil:
			report.SnapshotsCreated++
		case errors.Is(outcome.Err, store.ErrConflict):
			report.SnapshotsConflicted++
			log.Debug().Str("account_id", row.ID).Str("date", outcome.Date).Msg("snapshot already recorded, keeping stored amount")
		case errors.Is(outcome.Err, store.ErrInvalidDate):
			report.SnapshotsInvalidDate++
			log.Warn().Str("account_id", row.ID).Str("date", outcome.Date).Msg("skipping snapshot with unparsable date")
		default:
			return fmt.Errorf("upsert snapshot %q %s: %w", row.ID, outcome.Date, outcome.Err)
		}
	}
	return nil
}

// SyncAll pulls every enumerated currency. A currency whose fetch or sync
// fails is reported while the others still proceed; the first failure is
// returned after the loop finishes.
func (s *Syncer) SyncAll(ctx context.Context) (map[currency.Currency]Report, error) {
	reports := make(map[currency.Currency]Report, len(currency.All()))
	var firstErr error
	for _, cur := range currency.All() {
		report, err := s.Sync(ctx, cur)
		reports[cur] = report
		if err != nil {
			s.log.Error().Err(err).Str("currency", cur.String()).Msg("sync failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("sync %s: %w", cur, err)
			}
		}
	}
	return reports, firstErr
}
