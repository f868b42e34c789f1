package store

import (
	"context"
	"fmt"

	"github.com/cleared-dev/backoffice/internal/model"
)

const expenditureColumns = `id, owner_id, expense_date, description, payee, amount, expense_account_id, payment_account_id, status, journal_entry_id, source_ref, created_at, updated_at`

func scanExpenditure(row interface{ Scan(...any) error }) (model.Expenditure, error) {
	var x model.Expenditure
	err := row.Scan(&x.ID, &x.OwnerID, &x.Date, &x.Description, &x.Payee, &x.Amount, &x.ExpenseAccountID, &x.PaymentAccountID, &x.Status, &x.JournalEntryID, &x.SourceRef, &x.CreatedAt, &x.UpdatedAt)
	return x, err
}

// InsertExpenditure stores a new expenditure. ErrConflict when the owner
// already has one with the same non-empty source reference.
func (t *Tx) InsertExpenditure(ctx context.Context, x model.Expenditure) error {
	_, err := t.exec(ctx,
		`INSERT INTO expenditures (`+expenditureColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		x.ID, x.OwnerID, x.Date, x.Description, x.Payee, x.Amount, x.ExpenseAccountID, x.PaymentAccountID, string(x.Status), x.JournalEntryID, x.SourceRef, x.CreatedAt, x.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting expenditure: %w", err)
	}
	return nil
}

// UpdateExpenditure writes status, journal link and payment account.
func (t *Tx) UpdateExpenditure(ctx context.Context, x model.Expenditure) error {
	res, err := t.exec(ctx,
		`UPDATE expenditures SET payment_account_id = ?, status = ?, journal_entry_id = ?, updated_at = ?
		 WHERE owner_id = ? AND id = ?`,
		x.PaymentAccountID, string(x.Status), x.JournalEntryID, x.UpdatedAt, x.OwnerID, x.ID)
	if err != nil {
		return fmt.Errorf("updating expenditure %s: %w", x.ID, err)
	}
	return requireOne(res)
}

// GetExpenditure loads one expenditure.
func (t *Tx) GetExpenditure(ctx context.Context, ownerID, expenditureID string) (model.Expenditure, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+expenditureColumns+` FROM expenditures WHERE owner_id = ? AND id = ?`, ownerID, expenditureID)
	x, err := scanExpenditure(row)
	if err != nil {
		return model.Expenditure{}, translate(err)
	}
	return x, nil
}

// ListExpenditures returns an owner's expenditures, newest first.
func (t *Tx) ListExpenditures(ctx context.Context, ownerID string) ([]model.Expenditure, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+expenditureColumns+` FROM expenditures WHERE owner_id = ? ORDER BY expense_date DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying expenditures: %w", err)
	}
	defer rows.Close()

	out := []model.Expenditure{}
	for rows.Next() {
		x, err := scanExpenditure(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expenditure: %w", err)
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

// DeleteExpenditure removes an expenditure.
func (t *Tx) DeleteExpenditure(ctx context.Context, ownerID, expenditureID string) error {
	res, err := t.exec(ctx, `DELETE FROM expenditures WHERE owner_id = ? AND id = ?`, ownerID, expenditureID)
	if err != nil {
		return fmt.Errorf("deleting expenditure %s: %w", expenditureID, err)
	}
	return requireOne(res)
}
