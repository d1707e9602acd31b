package store

import "context"

type AccountStore struct {
	db DB
}

// Account is a named ledger line in one currency. The id is assigned by the
// external table source.
type Account struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Currency    string `db:"currency"`
	Description string `db:"description"`
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

// Upsert inserts the account. The first write for an id wins: a later insert
// with the same id leaves the stored name, currency and description
// untouched and returns ErrConflict.
func (s *AccountStore) Upsert(ctx context.Context, tx Execer, a Account) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, name, currency, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.Name, a.Currency, a.Description)
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

// ListAll returns every account in storage order.
func (s *AccountStore) ListAll(ctx context.Context) ([]Account, error) {
	var rows []Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, currency, description
		FROM accounts
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteAll removes every account. Snapshots reference accounts, so callers
// must delete snapshots first.
func (s *AccountStore) DeleteAll(ctx context.Context, tx Execer) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM accounts`)
	return err
}
