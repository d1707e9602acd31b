package store

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the wire format for snapshot dates.
const DateLayout = "2006-01-02"

type SnapshotStore struct {
	db DB
}

// Snapshot is one dated balance observation for an account.
type Snapshot struct {
	ID        int64     `db:"id"`
	AccountID string    `db:"account_id"`
	Date      time.Time `db:"date"`
	Amount    int32     `db:"amount"`
}

// LatestBalance is the most recent snapshot of an account joined with the
// account it belongs to.
type LatestBalance struct {
	AccountID   string    `db:"account_id"`
	AccountName string    `db:"name"`
	Currency    string    `db:"currency"`
	Date        time.Time `db:"date"`
	Amount      int32     `db:"amount"`
}

// HistoryPoint is the summed balance of one currency on one date.
type HistoryPoint struct {
	Date  time.Time `db:"date"`
	Total int64     `db:"total"`
}

// EntryOutcome reports what happened to a single date entry of a bulk
// upsert: Err is nil on insert, ErrConflict when the pair already existed,
// or wraps ErrInvalidDate.
type EntryOutcome struct {
	Date string
	Err  error
}

func NewSnapshotStore(db DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Upsert records one dated balance for an account. At most one snapshot
// exists per (account_id, date); a later insert for the same pair keeps the
// stored amount and returns ErrConflict, so corrections re-pulled from the
// feed never overwrite recorded history.
func (s *SnapshotStore) Upsert(ctx context.Context, tx Execer, accountID, date string, amount int32) error {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (account_id, date, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT snapshots_account_date_key DO NOTHING
	`, accountID, day, amount)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// BulkUpsert applies Upsert once per date entry. Entries are independent;
// one failing entry never blocks the rest. Dates are visited in sorted order
// so outcomes and logs are deterministic.
func (s *SnapshotStore) BulkUpsert(ctx context.Context, tx Execer, accountID string, amountsByDate map[string]int32) []EntryOutcome {
	dates := make([]string, 0, len(amountsByDate))
	for date := range amountsByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	outcomes := make([]EntryOutcome, 0, len(dates))
	for _, date := range dates {
		outcomes = append(outcomes, EntryOutcome{
			Date: date,
			Err:  s.Upsert(ctx, tx, accountID, date, amountsByDate[date]),
		})
	}
	return outcomes
}

// LatestPerAccount returns, for every account of the given currency, the
// snapshot with the maximum date.
func (s *SnapshotStore) LatestPerAccount(ctx context.Context, cur string) ([]LatestBalance, error) {
	var rows []LatestBalance
	err := s.db.SelectContext(ctx, &rows, `
		SELECT DISTINCT ON (s.account_id)
		       s.account_id, a.name, a.currency, s.date, s.amount
		FROM snapshots s
		INNER JOIN accounts a ON a.id = s.account_id
		WHERE a.currency = $1
		ORDER BY s.account_id, s.date DESC
	`, cur)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// History sums amounts across all accounts of the currency, grouped by date
// and ascending. Dates without snapshots are absent, not zero.
func (s *SnapshotStore) History(ctx context.Context, cur string) ([]HistoryPoint, error) {
	var rows []HistoryPoint
	err := s.db.SelectContext(ctx, &rows, `
		SELECT s.date, SUM(s.amount) AS total
		FROM snapshots s
		INNER JOIN accounts a ON a.id = s.account_id
		WHERE a.currency = $1
		GROUP BY s.date
		ORDER BY s.date ASC
	`, cur)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteAll removes every snapshot.
func (s *SnapshotStore) DeleteAll(ctx context.Context, tx Execer) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM snapshots`)
	return err
}
