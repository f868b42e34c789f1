package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/backoffice/internal/model"
)

const accountColumns = `id, owner_id, code, name, type, opening_balance, is_system, description, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.OwnerID, &a.Code, &a.Name, &a.Type, &a.OpeningBalance, &a.IsSystem, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ListAccounts returns an owner's accounts ordered by code.
func (t *Tx) ListAccounts(ctx context.Context, ownerID string) ([]model.Account, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY code`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CountAccounts returns how many accounts an owner has.
func (t *Tx) CountAccounts(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE owner_id = ?`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return n, nil
}

// GetAccount returns one account. ErrNotFound when it does not belong to owner.
func (t *Tx) GetAccount(ctx context.Context, ownerID, id string) (model.Account, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? AND id = ?`, ownerID, id)
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, translate(err)
	}
	return a, nil
}

// GetAccountByCode looks an account up by its code.
func (t *Tx) GetAccountByCode(ctx context.Context, ownerID, code string) (model.Account, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? AND code = ?`, ownerID, code)
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, translate(err)
	}
	return a, nil
}

// AccountsByID batch-loads accounts. Ids that do not belong to owner are
// absent from the result.
func (t *Tx) AccountsByID(ctx context.Context, ownerID string, ids []string) (map[string]model.Account, error) {
	found := make(map[string]model.Account, len(ids))
	for start := 0; start < len(ids); start += maxBatch {
		end := min(start+maxBatch, len(ids))
		if err := t.accountsByID(ctx, ownerID, ids[start:end], found); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func (t *Tx) accountsByID(ctx context.Context, ownerID string, ids []string, found map[string]model.Account) error {
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return fmt.Errorf("scanning account: %w", err)
		}
		found[a.ID] = a
	}
	return rows.Err()
}

// InsertAccount stores a new account. ErrConflict when the code is taken.
func (t *Tx) InsertAccount(ctx context.Context, a model.Account) error {
	_, err := t.exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Code, a.Name, string(a.Type), a.OpeningBalance, a.IsSystem, a.Description, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting account %s: %w", a.Code, err)
	}
	return nil
}

// UpdateAccount writes the mutable fields of an account. Code is never
// rewritten.
func (t *Tx) UpdateAccount(ctx context.Context, a model.Account) error {
	res, err := t.exec(ctx,
		`UPDATE accounts SET name = ?, type = ?, opening_balance = ?, description = ?, updated_at = ?
		 WHERE owner_id = ? AND id = ?`,
		a.Name, string(a.Type), a.OpeningBalance, a.Description, a.UpdatedAt, a.OwnerID, a.ID)
	if err != nil {
		return fmt.Errorf("updating account %s: %w", a.ID, err)
	}
	return requireOne(res)
}

// DeleteAccount removes an account.
func (t *Tx) DeleteAccount(ctx context.Context, ownerID, id string) error {
	res, err := t.exec(ctx, `DELETE FROM accounts WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting account %s: %w", id, err)
	}
	return requireOne(res)
}

// AccountHasPostedLines reports whether any posted entry references the account.
func (t *Tx) AccountHasPostedLines(ctx context.Context, ownerID, accountID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM journal_lines l
			JOIN journal_entries e ON e.id = l.entry_id
			WHERE e.owner_id = ? AND e.status = ? AND l.account_id = ?
		)`, ownerID, string(model.StatusPosted), accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking account usage: %w", err)
	}
	return exists, nil
}

// GetOwnerSettings returns an owner's settings; a zero value when none were saved.
func (t *Tx) GetOwnerSettings(ctx context.Context, ownerID string) (model.OwnerSettings, error) {
	settings := model.OwnerSettings{OwnerID: ownerID}
	err := t.tx.QueryRowContext(ctx,
		`SELECT default_payment_account_id FROM owner_settings WHERE owner_id = ?`, ownerID).
		Scan(&settings.DefaultPaymentAccountID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.OwnerSettings{}, fmt.Errorf("reading owner settings: %w", err)
	}
	return settings, nil
}

// PutOwnerSettings upserts an owner's settings.
func (t *Tx) PutOwnerSettings(ctx context.Context, settings model.OwnerSettings) error {
	_, err := t.exec(ctx,
		`INSERT INTO owner_settings (owner_id, default_payment_account_id) VALUES (?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET default_payment_account_id = excluded.default_payment_account_id`,
		settings.OwnerID, settings.DefaultPaymentAccountID)
	if err != nil {
		return fmt.Errorf("writing owner settings: %w", err)
	}
	return nil
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
