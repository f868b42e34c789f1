package journal

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/backoffice/internal/errs"
	"github.com/cleared-dev/backoffice/internal/model"
)

// Tolerance is the largest difference between total debits and total
// credits an entry may carry.
var Tolerance = decimal.New(1, -2)

// MinLines is the fewest non-zero lines a journal entry may have.
const MinLines = 2

// LineParams is one requested journal line.
type LineParams struct {
	AccountID string          `json:"accountId"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
}

// AccountIDs returns the distinct account ids referenced by params, in
// first-seen order.
func AccountIDs(params []LineParams) []string {
	seen := make(map[string]bool, len(params))
	var ids []string
	for _, p := range params {
		if seen[p.AccountID] {
			continue
		}
		seen[p.AccountID] = true
		ids = append(ids, p.AccountID)
	}
	return ids
}

// MissingAccounts returns the ids not present in accounts, sorted.
func MissingAccounts(ids []string, accounts map[string]model.Account) []string {
	var missing []string
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}

// BuildLines validates requested lines against the owner's accounts and
// returns the lines to persist with their totals. Lines with zero debit and
// zero credit are dropped. Every account referenced must be in accounts.
func BuildLines(params []LineParams, accounts map[string]model.Account) ([]model.Line, decimal.Decimal, decimal.Decimal, error) {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	lines := make([]model.Line, 0, len(params))

	for i, p := range params {
		if p.Debit.IsNegative() || p.Credit.IsNegative() {
			return nil, decimal.Zero, decimal.Zero, errs.New(errs.ErrInvalidLine, "line %d: debit and credit must not be negative", i+1)
		}
		if p.Debit.IsPositive() && p.Credit.IsPositive() {
			return nil, decimal.Zero, decimal.Zero, errs.New(errs.ErrInvalidLine, "line %d: a line cannot carry both a debit and a credit", i+1)
		}
		if p.Debit.IsZero() && p.Credit.IsZero() {
			continue
		}

		acct, ok := accounts[p.AccountID]
		if !ok {
			return nil, decimal.Zero, decimal.Zero, errs.New(errs.ErrAccountNotFound, "account %s not found", p.AccountID)
		}

		totalDebit = totalDebit.Add(p.Debit)
		totalCredit = totalCredit.Add(p.Credit)
		lines = append(lines, model.Line{
			AccountID:   acct.ID,
			AccountCode: acct.Code,
			AccountName: acct.Name,
			Debit:       p.Debit,
			Credit:      p.Credit,
			Memo:        p.Memo,
		})
	}

	if len(lines) < MinLines {
		return nil, decimal.Zero, decimal.Zero, errs.New(errs.ErrInsufficientLines, "journal entry needs at least %d non-zero lines, got %d", MinLines, len(lines))
	}
	if totalDebit.Sub(totalCredit).Abs().GreaterThan(Tolerance) {
		return nil, decimal.Zero, decimal.Zero, errs.New(errs.ErrUnbalanced, "debits (%s) != credits (%s)", totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return lines, totalDebit, totalCredit, nil
}
