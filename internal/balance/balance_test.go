package balance

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/backoffice/internal/accounts"
	"github.com/cleared-dev/backoffice/internal/journal"
	"github.com/cleared-dev/backoffice/internal/model"
	"github.com/cleared-dev/backoffice/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pl(account string, d model.Date, debit, credit string) model.PostedLine {
	return model.PostedLine{AccountID: account, Date: d, Debit: dec(debit), Credit: dec(credit)}
}

func TestSign(t *testing.T) {
	tests := []struct {
		typ  model.AccountType
		want int64
	}{
		{model.AccountTypeAsset, 1},
		{model.AccountTypeExpense, 1},
		{model.AccountTypeLiability, -1},
		{model.AccountTypeEquity, -1},
		{model.AccountTypeRevenue, -1},
	}
	for _, tt := range tests {
		assert.True(t, Sign(tt.typ).Equal(decimal.NewFromInt(tt.want)), "Sign(%s)", tt.typ)
	}
}

func TestCompute(t *testing.T) {
	jan := model.NewDate(2025, time.January, 31)
	feb := model.NewDate(2025, time.February, 28)
	accts := []model.Account{
		{ID: "cash", Code: "1000", Type: model.AccountTypeAsset, OpeningBalance: dec("500")},
		{ID: "loan", Code: "2000", Type: model.AccountTypeLiability, OpeningBalance: dec("500")},
		{ID: "sales", Code: "4000", Type: model.AccountTypeRevenue},
		{ID: "rent", Code: "5200", Type: model.AccountTypeExpense},
	}
	lines := []model.PostedLine{
		pl("cash", jan, "100", "0"), pl("sales", jan, "0", "100"),
		pl("rent", jan, "40", "0"), pl("cash", jan, "0", "40"),
		pl("cash", feb, "1000", "0"), pl("loan", feb, "0", "1000"),
		pl("ghost", jan, "1", "0"),
	}

	got := Compute(accts, lines, jan)
	require.Len(t, got, 4)
	assert.Equal(t, "cash", got[0].AccountID)
	assert.True(t, got[0].Balance.Equal(dec("560")), "cash %s", got[0].Balance)
	assert.True(t, got[1].Balance.Equal(dec("500")), "loan unaffected before feb")
	assert.True(t, got[2].Balance.Equal(dec("100")), "revenue is credit-normal")
	assert.True(t, got[3].Balance.Equal(dec("40")))
	assert.True(t, got[2].DebitNet().Equal(dec("-100")))

	got = Compute(accts, lines, model.Date{})
	assert.True(t, got[0].Balance.Equal(dec("1560")))
	assert.True(t, got[1].Balance.Equal(dec("1500")))
	assert.True(t, got[0].Debit.Equal(dec("1100")))
	assert.True(t, got[0].Credit.Equal(dec("40")))
}

func TestComputeDebitsEqualCredits(t *testing.T) {
	d := model.NewDate(2025, time.March, 3)
	accts := []model.Account{
		{ID: "a", Type: model.AccountTypeAsset},
		{ID: "l", Type: model.AccountTypeLiability},
		{ID: "e", Type: model.AccountTypeEquity},
		{ID: "r", Type: model.AccountTypeRevenue},
		{ID: "x", Type: model.AccountTypeExpense},
	}
	lines := []model.PostedLine{
		pl("a", d, "300", "0"), pl("e", d, "0", "300"),
		pl("x", d, "75.25", "0"), pl("l", d, "0", "75.25"),
		pl("a", d, "20", "0"), pl("r", d, "0", "20"),
	}

	sum := decimal.Zero
	for _, b := range Compute(accts, lines, d) {
		sum = sum.Add(b.DebitNet())
	}
	assert.True(t, sum.IsZero(), "debit-net balances sum to zero, got %s", sum)
}

func TestComputeBalances(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	ctx := context.Background()

	accts := accounts.NewService(st)
	journals := journal.NewService(st)
	cash, err := accts.Create(ctx, "o1", accounts.CreateParams{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	sales, err := accts.Create(ctx, "o1", accounts.CreateParams{Code: "4000", Name: "Sales", Type: model.AccountTypeRevenue})
	require.NoError(t, err)

	day := model.NewDate(2025, time.January, 10)
	lines := []journal.LineParams{{AccountID: cash.ID, Debit: dec("100")}, {AccountID: sales.ID, Credit: dec("100")}}
	posted, err := journals.Create(ctx, "o1", journal.EntryParams{Date: day, Lines: lines})
	require.NoError(t, err)
	_, err = journals.Post(ctx, "o1", posted.ID)
	require.NoError(t, err)
	_, err = journals.Create(ctx, "o1", journal.EntryParams{Date: day, Lines: lines})
	require.NoError(t, err)

	svc := NewService(st)
	got, err := svc.ComputeBalances(ctx, "o1", day)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Balance.Equal(dec("100")), "draft excluded")
	assert.True(t, got[1].Balance.Equal(dec("100")))

	got, err = svc.ComputeBalances(ctx, "o1", day.AddDays(-1))
	require.NoError(t, err)
	assert.True(t, got[0].Balance.IsZero(), "cutoff is inclusive of asOf only")
}
