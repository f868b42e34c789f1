// Package report builds the financial reports. Every figure comes from the
// balance aggregator or, for the general ledger, from the same sign rule.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/backoffice/internal/balance"
	"github.com/cleared-dev/backoffice/internal/errs"
	"github.com/cleared-dev/backoffice/internal/journal"
	"github.com/cleared-dev/backoffice/internal/model"
	"github.com/cleared-dev/backoffice/internal/store"
)

// ZeroThreshold is the magnitude under which a balance is treated as zero
// and left out of a report.
var ZeroThreshold = decimal.New(1, -3)

// OpeningDescription labels the first row of a general ledger.
const OpeningDescription = "Opening balance"

// AccountAmount is one account's figure in a report section.
type AccountAmount struct {
	AccountID string          `json:"accountId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// Service generates reports for an owner.
type Service struct {
	store *store.Store
	today func() model.Date
}

// NewService creates a report Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st, today: model.Today}
}

func (s *Service) asOf(d model.Date) model.Date {
	if d.IsZero() {
		return s.today()
	}
	return d
}

func checkRange(from, to model.Date) error {
	if !from.IsZero() && from.After(to) {
		return errs.New(errs.ErrInvalidField, "from (%s) is after to (%s)", from, to)
	}
	return nil
}

func isZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(ZeroThreshold)
}

func balanced(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(journal.Tolerance)
}

// LedgerRow is one line of a general ledger. The first row of every ledger
// is the opening row, which has no entry.
type LedgerRow struct {
	Date        model.Date      `json:"date"`
	EntryID     string          `json:"entryId,omitempty"`
	EntryNumber string          `json:"entryNumber,omitempty"`
	Description string          `json:"description"`
	Memo        string          `json:"memo,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// GeneralLedger is the running history of one account.
type GeneralLedger struct {
	AccountID     string            `json:"accountId"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Type          model.AccountType `json:"type"`
	From          model.Date        `json:"from"`
	To            model.Date        `json:"to"`
	Rows          []LedgerRow       `json:"rows"`
	TotalDebit    decimal.Decimal   `json:"totalDebit"`
	TotalCredit   decimal.Decimal   `json:"totalCredit"`
	EndingBalance decimal.Decimal   `json:"endingBalance"`
}

// GeneralLedger replays the posted lines of one account. Activity before
// from is carried into the opening row. An empty from starts at inception
// and an empty to means today.
func (s *Service) GeneralLedger(ctx context.Context, ownerID, accountID string, from, to model.Date) (GeneralLedger, error) {
	to = s.asOf(to)
	if err := checkRange(from, to); err != nil {
		return GeneralLedger{}, err
	}

	var (
		acct  model.Account
		lines []model.PostedLine
	)
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		acct, err = tx.GetAccount(ctx, ownerID, accountID)
		if errors.Is(err, store.ErrNotFound) {
			return errs.New(errs.ErrAccountNotFound, "account %s not found", accountID)
		}
		if err != nil {
			return err
		}
		lines, err = tx.PostedLines(ctx, ownerID, store.LineFilter{AccountID: accountID, To: to})
		return err
	})
	if err != nil {
		return GeneralLedger{}, err
	}
	return buildLedger(acct, lines, from, to), nil
}

func buildLedger(acct model.Account, lines []model.PostedLine, from, to model.Date) GeneralLedger {
	gl := GeneralLedger{
		AccountID:   acct.ID,
		Code:        acct.Code,
		Name:        acct.Name,
		Type:        acct.Type,
		From:        from,
		To:          to,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	running := acct.OpeningBalance
	i := 0
	for ; i < len(lines) && !from.IsZero() && lines[i].Date.Before(from); i++ {
		running = running.Add(balance.Signed(acct.Type, lines[i].Debit, lines[i].Credit))
	}
	gl.Rows = append(gl.Rows, LedgerRow{
		Date:        from,
		Description: OpeningDescription,
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
		Balance:     running,
	})

	for _, l := range lines[i:] {
		if l.Date.After(to) {
			break
		}
		running = running.Add(balance.Signed(acct.Type, l.Debit, l.Credit))
		gl.TotalDebit = gl.TotalDebit.Add(l.Debit)
		gl.TotalCredit = gl.TotalCredit.Add(l.Credit)
		gl.Rows = append(gl.Rows, LedgerRow{
			Date:        l.Date,
			EntryID:     l.EntryID,
			EntryNumber: l.EntryNumber,
			Description: l.Description,
			Memo:        l.Memo,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Balance:     running,
		})
	}
	gl.EndingBalance = running
	return gl
}

// TrialBalanceRow is one account in a trial balance. Exactly one of Debit
// and Credit is non-zero.
type TrialBalanceRow struct {
	AccountID string            `json:"accountId"`
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	Type      model.AccountType `json:"type"`
	Debit     decimal.Decimal   `json:"debit"`
	Credit    decimal.Decimal   `json:"credit"`
}

// TrialBalance lists every non-zero account balance in debit and credit
// columns. Balanced is false when the columns disagree.
type TrialBalance struct {
	AsOf        model.Date        `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	Balanced    bool              `json:"balanced"`
}

// TrialBalance reports balances as of asOf, or today when empty.
func (s *Service) TrialBalance(ctx context.Context, ownerID string, asOf model.Date) (TrialBalance, error) {
	asOf = s.asOf(asOf)
	balances, err := s.balances(ctx, ownerID, asOf)
	if err != nil {
		return TrialBalance{}, err
	}
	return buildTrialBalance(balances, asOf), nil
}

func buildTrialBalance(balances []balance.Balance, asOf model.Date) TrialBalance {
	tb := TrialBalance{
		AsOf:        asOf,
		Rows:        []TrialBalanceRow{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, b := range balances {
		if isZero(b.Balance) {
			continue
		}
		row := TrialBalanceRow{
			AccountID: b.AccountID,
			Code:      b.Code,
			Name:      b.Name,
			Type:      b.Type,
			Debit:     decimal.Zero,
			Credit:    decimal.Zero,
		}
		if net := b.DebitNet(); net.IsPositive() {
			row.Debit = net
			tb.TotalDebit = tb.TotalDebit.Add(net)
		} else {
			row.Credit = net.Neg()
			tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		}
		tb.Rows = append(tb.Rows, row)
	}
	tb.Balanced = balanced(tb.TotalDebit, tb.TotalCredit)
	return tb
}

// ProfitAndLoss summarizes revenue and expense activity in a period.
type ProfitAndLoss struct {
	From          model.Date      `json:"from"`
	To            model.Date      `json:"to"`
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// ProfitAndLoss reports activity dated within [from, to]. Each account's
// figure is its balance at to less its balance the day before from, so
// opening balances and earlier activity only count when from is empty.
// Accounts whose figure is not positive are left out of the totals.
func (s *Service) ProfitAndLoss(ctx context.Context, ownerID string, from, to model.Date) (ProfitAndLoss, error) {
	to = s.asOf(to)
	if err := checkRange(from, to); err != nil {
		return ProfitAndLoss{}, err
	}

	var closing, opening []balance.Balance
	err := s.store.View(ctx, func(tx *store.Tx) error {
		accounts, err := tx.ListAccounts(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("loading accounts: %w", err)
		}
		lines, err := tx.PostedLines(ctx, ownerID, store.LineFilter{To: to})
		if err != nil {
			return fmt.Errorf("loading posted lines: %w", err)
		}
		closing = balance.Compute(accounts, lines, to)
		if !from.IsZero() {
			opening = balance.Compute(accounts, lines, from.AddDays(-1))
		}
		return nil
	})
	if err != nil {
		return ProfitAndLoss{}, err
	}
	return buildProfitAndLoss(closing, opening, from, to), nil
}

func buildProfitAndLoss(closing, opening []balance.Balance, from, to model.Date) ProfitAndLoss {
	pl := ProfitAndLoss{
		From:          from,
		To:            to,
		Revenue:       []AccountAmount{},
		Expenses:      []AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for i, b := range closing {
		if b.Type != model.AccountTypeRevenue && b.Type != model.AccountTypeExpense {
			continue
		}
		amount := b.Balance
		if opening != nil {
			amount = amount.Sub(opening[i].Balance)
		}
		if !amount.IsPositive() || isZero(amount) {
			continue
		}
		row := AccountAmount{AccountID: b.AccountID, Code: b.Code, Name: b.Name, Amount: amount}
		if b.Type == model.AccountTypeRevenue {
			pl.Revenue = append(pl.Revenue, row)
			pl.TotalRevenue = pl.TotalRevenue.Add(amount)
		} else {
			pl.Expenses = append(pl.Expenses, row)
			pl.TotalExpenses = pl.TotalExpenses.Add(amount)
		}
	}
	pl.NetIncome = pl.TotalRevenue.Sub(pl.TotalExpenses)
	return pl
}

// BalanceSheet partitions balances into assets, liabilities and equity.
// Revenue and expense balances are never closed into equity, so the sheet
// only balances once they net to zero. UnclosedEarnings carries that amount
// and Difference is assets less liabilities and equity.
type BalanceSheet struct {
	AsOf                      model.Date      `json:"asOf"`
	Assets                    []AccountAmount `json:"assets"`
	Liabilities               []AccountAmount `json:"liabilities"`
	Equity                    []AccountAmount `json:"equity"`
	TotalAssets               decimal.Decimal `json:"totalAssets"`
	TotalLiabilities          decimal.Decimal `json:"totalLiabilities"`
	TotalEquity               decimal.Decimal `json:"totalEquity"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"totalLiabilitiesAndEquity"`
	UnclosedEarnings          decimal.Decimal `json:"unclosedEarnings"`
	Difference                decimal.Decimal `json:"difference"`
	Balanced                  bool            `json:"balanced"`
}

// BalanceSheet reports positions as of asOf, or today when empty.
func (s *Service) BalanceSheet(ctx context.Context, ownerID string, asOf model.Date) (BalanceSheet, error) {
	asOf = s.asOf(asOf)
	balances, err := s.balances(ctx, ownerID, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	return buildBalanceSheet(balances, asOf), nil
}

func buildBalanceSheet(balances []balance.Balance, asOf model.Date) BalanceSheet {
	bs := BalanceSheet{
		AsOf:             asOf,
		Assets:           []AccountAmount{},
		Liabilities:      []AccountAmount{},
		Equity:           []AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		UnclosedEarnings: decimal.Zero,
	}
	for _, b := range balances {
		row := AccountAmount{AccountID: b.AccountID, Code: b.Code, Name: b.Name, Amount: b.Balance}
		switch b.Type {
		case model.AccountTypeAsset:
			bs.TotalAssets = bs.TotalAssets.Add(b.Balance)
			if !isZero(b.Balance) {
				bs.Assets = append(bs.Assets, row)
			}
		case model.AccountTypeLiability:
			bs.TotalLiabilities = bs.TotalLiabilities.Add(b.Balance)
			if !isZero(b.Balance) {
				bs.Liabilities = append(bs.Liabilities, row)
			}
		case model.AccountTypeEquity:
			bs.TotalEquity = bs.TotalEquity.Add(b.Balance)
			if !isZero(b.Balance) {
				bs.Equity = append(bs.Equity, row)
			}
		case model.AccountTypeRevenue:
			bs.UnclosedEarnings = bs.UnclosedEarnings.Add(b.Balance)
		case model.AccountTypeExpense:
			bs.UnclosedEarnings = bs.UnclosedEarnings.Sub(b.Balance)
		}
	}
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	bs.Difference = bs.TotalAssets.Sub(bs.TotalLiabilitiesAndEquity)
	bs.Balanced = balanced(bs.TotalAssets, bs.TotalLiabilitiesAndEquity)
	return bs
}

func (s *Service) balances(ctx context.Context, ownerID string, asOf model.Date) ([]balance.Balance, error) {
	var out []balance.Balance
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = balance.ComputeTx(ctx, tx, ownerID, asOf)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("computing balances: %w", err)
	}
	return out, nil
}

