// Package balance folds posted journal activity into per-account balances.
// Sign is the only definition of the normal-balance convention; reports
// consume Compute rather than re-deriving it.
package balance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/backoffice/internal/model"
	"github.com/cleared-dev/backoffice/internal/store"
)

var (
	plusOne  = decimal.NewFromInt(1)
	minusOne = decimal.NewFromInt(-1)
)

// Balance is an account's as-of position.
type Balance struct {
	AccountID      string            `json:"accountId"`
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Type           model.AccountType `json:"type"`
	OpeningBalance decimal.Decimal   `json:"openingBalance"`
	Debit          decimal.Decimal   `json:"debit"`
	Credit         decimal.Decimal   `json:"credit"`
	Balance        decimal.Decimal   `json:"balance"`
}

// Sign is +1 for debit-normal account types and -1 for credit-normal ones.
func Sign(t model.AccountType) decimal.Decimal {
	if t.DebitNormal() {
		return plusOne
	}
	return minusOne
}

// Signed converts raw debit and credit amounts into the account's normal
// direction.
func Signed(t model.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	return debit.Sub(credit).Mul(Sign(t))
}

// DebitNet re-expresses the balance with debits positive, whatever the
// account's normal side.
func (b Balance) DebitNet() decimal.Decimal {
	return b.Balance.Mul(Sign(b.Type))
}

// Compute returns one Balance per account, in the order given. Only lines
// dated on or before asOf count; a zero asOf counts everything. Lines for
// accounts not in the list are ignored.
func Compute(accounts []model.Account, lines []model.PostedLine, asOf model.Date) []Balance {
	idx := make(map[string]int, len(accounts))
	out := make([]Balance, len(accounts))
	for i, a := range accounts {
		idx[a.ID] = i
		out[i] = Balance{
			AccountID:      a.ID,
			Code:           a.Code,
			Name:           a.Name,
			Type:           a.Type,
			OpeningBalance: a.OpeningBalance,
			Debit:          decimal.Zero,
			Credit:         decimal.Zero,
		}
	}

	for _, l := range lines {
		if !asOf.IsZero() && l.Date.After(asOf) {
			continue
		}
		i, ok := idx[l.AccountID]
		if !ok {
			continue
		}
		out[i].Debit = out[i].Debit.Add(l.Debit)
		out[i].Credit = out[i].Credit.Add(l.Credit)
	}

	for i := range out {
		out[i].Balance = out[i].OpeningBalance.Add(Signed(out[i].Type, out[i].Debit, out[i].Credit))
	}
	return out
}

// Service computes balances from the store.
type Service struct {
	store *store.Store
}

// NewService creates a balance Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// ComputeBalances returns every account's balance as of asOf, inclusive.
func (s *Service) ComputeBalances(ctx context.Context, ownerID string, asOf model.Date) ([]Balance, error) {
	var out []Balance
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = ComputeTx(ctx, tx, ownerID, asOf)
		return err
	})
	return out, err
}

// ComputeTx is ComputeBalances inside the caller's transaction.
func ComputeTx(ctx context.Context, tx *store.Tx, ownerID string, asOf model.Date) ([]Balance, error) {
	accounts, err := tx.ListAccounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	lines, err := tx.PostedLines(ctx, ownerID, store.LineFilter{To: asOf})
	if err != nil {
		return nil, fmt.Errorf("loading posted lines: %w", err)
	}
	return Compute(accounts, lines, asOf), nil
}
