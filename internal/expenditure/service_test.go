package expenditure

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/backoffice/internal/accounts"
	"github.com/cleared-dev/backoffice/internal/errs"
	"github.com/cleared-dev/backoffice/internal/journal"
	"github.com/cleared-dev/backoffice/internal/model"
	"github.com/cleared-dev/backoffice/internal/store"
)

const owner = "owner-1"

type fixture struct {
	svc      *Service
	accts    *accounts.Service
	journals *journal.Service
	byCode   map[string]model.Account
}

func newFixture(t *testing.T, paymentCode string) fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	journals := journal.NewService(st)
	f := fixture{
		svc:      NewService(st, journals, paymentCode),
		accts:    accounts.NewService(st),
		journals: journals,
		byCode:   map[string]model.Account{},
	}
	all, err := f.accts.List(context.Background(), owner)
	require.NoError(t, err)
	for _, a := range all {
		f.byCode[a.Code] = a
	}
	return f
}

func (f fixture) supplies(t *testing.T, amount string) model.Expenditure {
	t.Helper()
	x, err := f.svc.Create(context.Background(), owner, CreateParams{
		Date:             model.NewDate(2025, time.May, 2),
		Description:      "Printer paper",
		Payee:            "Staples",
		Amount:           decimal.RequireFromString(amount),
		ExpenseAccountID: f.byCode["5100"].ID,
	})
	require.NoError(t, err)
	return x
}

func TestRecordToLedgerDefaultsToCash(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	x := f.supplies(t, "50")
	assert.Equal(t, model.ExpenditureDraft, x.Status)

	recorded, entry, err := f.svc.RecordToLedger(ctx, owner, x.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExpenditureRecorded, recorded.Status)
	assert.Equal(t, entry.ID, recorded.JournalEntryID)
	assert.Equal(t, f.byCode["1000"].ID, recorded.PaymentAccountID)

	assert.Equal(t, model.StatusPosted, entry.Status)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, "5100", entry.Lines[0].AccountCode)
	assert.True(t, entry.Lines[0].Debit.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "1000", entry.Lines[1].AccountCode)
	assert.True(t, entry.Lines[1].Credit.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "Printer paper", entry.Description)

	stored, err := f.journals.Get(ctx, owner, entry.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPosted())

	got, err := f.svc.Get(ctx, owner, x.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRecorded())
	assert.Equal(t, entry.ID, got.JournalEntryID)
}

func TestRecordToLedgerOnlyOnce(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	x := f.supplies(t, "50")

	_, _, err := f.svc.RecordToLedger(ctx, owner, x.ID)
	require.NoError(t, err)

	_, _, err = f.svc.RecordToLedger(ctx, owner, x.ID)
	assert.ErrorIs(t, err, errs.ErrAlreadyRecorded)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	entries, err := f.journals.List(ctx, owner, journal.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.ErrorIs(t, f.svc.Delete(ctx, owner, x.ID), errs.ErrAlreadyRecorded)
}

func TestRecordToLedgerPaymentAccountResolution(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	// Explicit reference wins.
	x, err := f.svc.Create(ctx, owner, CreateParams{
		Date:             model.NewDate(2025, time.May, 3),
		Payee:            "Landlord",
		Amount:           decimal.NewFromInt(900),
		ExpenseAccountID: f.byCode["5200"].ID,
		PaymentAccountID: f.byCode["2100"].ID,
	})
	require.NoError(t, err)
	_, entry, err := f.svc.RecordToLedger(ctx, owner, x.ID)
	require.NoError(t, err)
	assert.Equal(t, "2100", entry.Lines[1].AccountCode)
	assert.Equal(t, "Payment to Landlord", entry.Description)

	// Then the owner's configured default.
	_, err = f.accts.SetDefaultPaymentAccount(ctx, owner, f.byCode["1010"].ID)
	require.NoError(t, err)
	_, entry, err = f.svc.RecordToLedger(ctx, owner, f.supplies(t, "5").ID)
	require.NoError(t, err)
	assert.Equal(t, "1010", entry.Lines[1].AccountCode)
}

func TestRecordToLedgerConfiguredCode(t *testing.T) {
	f := newFixture(t, "1010")
	_, entry, err := f.svc.RecordToLedger(context.Background(), owner, f.supplies(t, "5").ID)
	require.NoError(t, err)
	assert.Equal(t, "1010", entry.Lines[1].AccountCode)
}

func TestRecordToLedgerDeletedPaymentAccountFallsBack(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	petty, err := f.accts.Create(ctx, owner, accounts.CreateParams{
		Code: "1050", Name: "Petty Cash", Type: model.AccountTypeAsset,
	})
	require.NoError(t, err)

	x, err := f.svc.Create(ctx, owner, CreateParams{
		Date:             model.NewDate(2025, time.May, 4),
		Description:      "Coffee for the office",
		Amount:           decimal.NewFromInt(12),
		ExpenseAccountID: f.byCode["5100"].ID,
		PaymentAccountID: petty.ID,
	})
	require.NoError(t, err)
	require.NoError(t, f.accts.Delete(ctx, owner, petty.ID))

	recorded, entry, err := f.svc.RecordToLedger(ctx, owner, x.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000", entry.Lines[1].AccountCode)
	assert.Equal(t, f.byCode["1000"].ID, recorded.PaymentAccountID)
}

func TestCreateRejectsDuplicateSourceRef(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	p := CreateParams{
		Date:             model.NewDate(2025, time.May, 6),
		Description:      "AWS",
		Amount:           decimal.RequireFromString("57.32"),
		ExpenseAccountID: f.byCode["5300"].ID,
		SourceRef:        "chase_20250506_AWS/-57.32",
	}

	first, err := f.svc.Create(ctx, owner, p)
	require.NoError(t, err)
	assert.Equal(t, p.SourceRef, first.SourceRef)

	_, err = f.svc.Create(ctx, owner, p)
	assert.ErrorIs(t, err, errs.ErrDuplicateExpenditure)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	all, err := f.svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordToLedgerMissingCashAccount(t *testing.T) {
	f := newFixture(t, "9999")
	ctx := context.Background()
	x := f.supplies(t, "5")

	_, _, err := f.svc.RecordToLedger(ctx, owner, x.ID)
	assert.ErrorIs(t, err, errs.ErrMissingCashAccount)
	assert.Equal(t, errs.KindDependency, errs.KindOf(err))

	got, err := f.svc.Get(ctx, owner, x.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExpenditureDraft, got.Status)
}

func TestRecordToLedgerIsAtomic(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	x := f.supplies(t, "5")

	// With its expense account gone the entry cannot be built.
	require.NoError(t, f.accts.Delete(ctx, owner, f.byCode["5100"].ID))
	_, _, err := f.svc.RecordToLedger(ctx, owner, x.ID)
	assert.ErrorIs(t, err, errs.ErrAccountNotFound)

	entries, err := f.journals.List(ctx, owner, journal.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	got, err := f.svc.Get(ctx, owner, x.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExpenditureDraft, got.Status)
	assert.Empty(t, got.JournalEntryID)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	day := model.NewDate(2025, time.May, 1)
	expense := f.byCode["5100"].ID

	tests := []struct {
		name string
		p    CreateParams
		want *errs.Error
	}{
		{"no date", CreateParams{Amount: decimal.NewFromInt(1), ExpenseAccountID: expense}, errs.ErrInvalidField},
		{"zero amount", CreateParams{Date: day, ExpenseAccountID: expense}, errs.ErrInvalidField},
		{"negative amount", CreateParams{Date: day, Amount: decimal.NewFromInt(-1), ExpenseAccountID: expense}, errs.ErrInvalidField},
		{"no expense account", CreateParams{Date: day, Amount: decimal.NewFromInt(1)}, errs.ErrInvalidField},
		{"unknown expense account", CreateParams{Date: day, Amount: decimal.NewFromInt(1), ExpenseAccountID: "nope"}, errs.ErrAccountNotFound},
		{"revenue as payment", CreateParams{Date: day, Amount: decimal.NewFromInt(1), ExpenseAccountID: expense, PaymentAccountID: f.byCode["4000"].ID}, errs.ErrInvalidField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, owner, tt.p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListGetDelete(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	x1 := f.supplies(t, "1")
	x2 := f.supplies(t, "2")

	list, err := f.svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	other, err := f.svc.List(ctx, "owner-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, f.svc.Delete(ctx, owner, x1.ID))
	_, err = f.svc.Get(ctx, owner, x1.ID)
	assert.ErrorIs(t, err, errs.ErrExpenditureNotFound)

	_, _, err = f.svc.RecordToLedger(ctx, owner, x1.ID)
	assert.ErrorIs(t, err, errs.ErrExpenditureNotFound)

	_, err = f.svc.Get(ctx, "owner-2", x2.ID)
	assert.ErrorIs(t, err, errs.ErrExpenditureNotFound)
}
