package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/backoffice/internal/accounts"
	"github.com/cleared-dev/backoffice/internal/config"
	"github.com/cleared-dev/backoffice/internal/journal"
	"github.com/cleared-dev/backoffice/internal/model"
	"github.com/cleared-dev/backoffice/internal/report"
	"github.com/cleared-dev/backoffice/internal/store"
)

const owner = "owner-1"

type workspace struct {
	dir        string
	configPath string
	dbPath     string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	w := workspace{
		dir:        dir,
		configPath: filepath.Join(dir, config.FileName),
		dbPath:     filepath.Join(dir, "data", "cleared.db"),
	}
	t.Setenv(config.EnvDBPath, w.dbPath)
	t.Setenv(config.EnvLogFormat, "json")
	t.Setenv(config.EnvLogLevel, "error")
	return w
}

// run executes the CLI in-process and returns stdout.
func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", w.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (w workspace) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := w.run(t, args...)
	require.NoError(t, err, "cleared %s", strings.Join(args, " "))
	return out
}

// postEntry writes a posted entry straight through the services.
func (w workspace) postEntry(t *testing.T, date model.Date, desc string, lines ...journal.LineParams) {
	t.Helper()
	st, err := store.Open(w.dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	svc := journal.NewService(st)
	e, err := svc.Create(ctx, owner, journal.EntryParams{Date: date, Description: desc, Lines: lines})
	require.NoError(t, err)
	_, err = svc.Post(ctx, owner, e.ID)
	require.NoError(t, err)
}

func (w workspace) accountIDs(t *testing.T) map[string]string {
	t.Helper()
	st, err := store.Open(w.dbPath)
	require.NoError(t, err)
	defer st.Close()

	list, err := accounts.NewService(st).List(context.Background(), owner)
	require.NoError(t, err)
	ids := make(map[string]string, len(list))
	for _, a := range list {
		ids[a.Code] = a.ID
	}
	return ids
}

func TestInitWritesConfigAndSeeds(t *testing.T) {
	w := newWorkspace(t)

	out := w.mustRun(t, "init", "--owner", owner)
	assert.Contains(t, out, "Wrote "+w.configPath)
	assert.Contains(t, out, "Seeded 19 accounts for owner owner-1")

	cfg, err := config.Load(w.configPath)
	require.NoError(t, err)
	assert.Equal(t, "1000", cfg.Ledger.DefaultPaymentCode)
	assert.FileExists(t, w.dbPath)

	out = w.mustRun(t, "init", "--owner", owner)
	assert.NotContains(t, out, "Wrote")
	assert.Contains(t, out, "already has a chart of accounts")
}

func TestInitRequiresOwner(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.run(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner")
}

func TestAccountsExport(t *testing.T) {
	w := newWorkspace(t)
	w.mustRun(t, "init", "--owner", owner)

	out := w.mustRun(t, "accounts", "export", "--owner", owner)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 20)
	assert.Equal(t, []string{"code", "name", "type", "opening_balance", "is_system", "description"}, records[0])

	parsed, err := accounts.ReadAccounts(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, parsed, len(accounts.DefaultChart()))
}

func TestAccountsImportSkipsExistingCodes(t *testing.T) {
	w := newWorkspace(t)
	w.mustRun(t, "init", "--owner", owner)

	file := filepath.Join(w.dir, "extra.csv")
	data := "code,name,type,opening_balance,is_system,description\n" +
		"1000,Cash,asset,0,true,\n" +
		"1350,Prepaid Rent,asset,1200.00,false,Rent paid in advance\n"
	require.NoError(t, os.WriteFile(file, []byte(data), 0o644))

	out := w.mustRun(t, "accounts", "import", "--owner", owner, file)
	assert.Equal(t, "Imported 1 accounts (1 skipped)\n", out)

	ids := w.accountIDs(t)
	assert.Contains(t, ids, "1350")
	assert.Len(t, ids, 20)
}

func TestAccountsImportRejectsBadFile(t *testing.T) {
	w := newWorkspace(t)

	file := filepath.Join(w.dir, "bad.csv")
	require.NoError(t, os.WriteFile(file, []byte("code,name\n1,x\n"), 0o644))

	_, err := w.run(t, "accounts", "import", "--owner", owner, file)
	assert.Error(t, err)
}

func TestJournalExport(t *testing.T) {
	w := newWorkspace(t)
	w.mustRun(t, "init", "--owner", owner)
	ids := w.accountIDs(t)

	w.postEntry(t, model.NewDate(2025, time.March, 3), "Cash sale",
		journal.LineParams{AccountID: ids["1000"], Debit: decimal.NewFromInt(500)},
		journal.LineParams{AccountID: ids["4000"], Credit: decimal.NewFromInt(500)},
	)

	out := w.mustRun(t, "journal", "export", "--owner", owner, "--status", "posted")
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, strings.Split(journal.Header, ","), records[0])
	assert.Equal(t, "JE-0001", records[1][0])
	assert.Equal(t, "2025-03-03", records[1][1])
	assert.Equal(t, "1000", records[1][4])

	out = w.mustRun(t, "journal", "export", "--owner", owner, "--status", "draft")
	assert.Equal(t, journal.Header+"\n", out)

	_, err = w.run(t, "journal", "export", "--owner", owner, "--from", "03/01/2025")
	assert.Error(t, err)
}

func TestReportCommands(t *testing.T) {
	w := newWorkspace(t)
	w.mustRun(t, "init", "--owner", owner)
	ids := w.accountIDs(t)

	w.postEntry(t, model.NewDate(2025, time.March, 3), "Cash sale",
		journal.LineParams{AccountID: ids["1000"], Debit: decimal.NewFromInt(500)},
		journal.LineParams{AccountID: ids["4000"], Credit: decimal.NewFromInt(500)},
	)

	t.Run("trial balance", func(t *testing.T) {
		out := w.mustRun(t, "report", "trial-balance", "--owner", owner, "--as-of", "2025-12-31")
		var tb report.TrialBalance
		require.NoError(t, json.Unmarshal([]byte(out), &tb))
		assert.True(t, tb.Balanced)
		assert.True(t, tb.TotalDebit.Equal(decimal.NewFromInt(500)))
		assert.Len(t, tb.Rows, 2)
	})

	t.Run("profit and loss", func(t *testing.T) {
		out := w.mustRun(t, "report", "profit-loss", "--owner", owner, "--from", "2025-01-01", "--to", "2025-12-31")
		var pl report.ProfitAndLoss
		require.NoError(t, json.Unmarshal([]byte(out), &pl))
		assert.True(t, pl.NetIncome.Equal(decimal.NewFromInt(500)))
	})

	t.Run("balance sheet", func(t *testing.T) {
		out := w.mustRun(t, "report", "balance-sheet", "--owner", owner, "--as-of", "2025-12-31")
		var bs report.BalanceSheet
		require.NoError(t, json.Unmarshal([]byte(out), &bs))
		assert.True(t, bs.Balanced)
		assert.True(t, bs.UnclosedEarnings.Equal(decimal.NewFromInt(500)))
	})

	t.Run("general ledger by code", func(t *testing.T) {
		out := w.mustRun(t, "report", "general-ledger", "--owner", owner, "--account", "1000", "--to", "2025-12-31")
		var gl report.GeneralLedger
		require.NoError(t, json.Unmarshal([]byte(out), &gl))
		assert.True(t, gl.EndingBalance.Equal(decimal.NewFromInt(500)))
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := w.run(t, "report", "general-ledger", "--owner", owner, "--account", "9999")
		assert.Error(t, err)
	})
}

func TestVersionFlag(t *testing.T) {
	w := newWorkspace(t)
	out := w.mustRun(t, "--version")
	assert.Contains(t, out, "cleared version dev")
}

func TestExpendituresImport(t *testing.T) {
	w := newWorkspace(t)
	w.mustRun(t, "init", "--owner", owner)

	file := filepath.Join(w.dir, "statement.csv")
	data := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n" +
		"DEBIT,01/03/2025,GITHUB *PRO SUBSCRIPTION,-4.00,ACH_DEBIT,996.00,\n" +
		"CREDIT,01/15/2025,ACME CONSULTING,3500.00,ACH_CREDIT,4496.00,\n" +
		"DEBIT,01/20/2025,STAPLES,-86.45,DEBIT_CARD,4409.55,\n"
	require.NoError(t, os.WriteFile(file, []byte(data), 0o644))

	out := w.mustRun(t, "expenditures", "import", "--owner", owner,
		"--expense-account", "5100", "--payment-account", "1010", "--record", file)
	assert.Contains(t, out, "JE-0001 4.00 GITHUB *PRO SUBSCRIPTION")
	assert.Contains(t, out, "JE-0002 86.45 STAPLES")
	assert.Contains(t, out, "Imported 2 expenditures from 3 statement lines")

	out = w.mustRun(t, "report", "trial-balance", "--owner", owner, "--as-of", "2025-12-31")
	var tb report.TrialBalance
	require.NoError(t, json.Unmarshal([]byte(out), &tb))
	require.Len(t, tb.Rows, 2)
	for _, row := range tb.Rows {
		switch row.Code {
		case "1010":
			assert.True(t, row.Credit.Equal(decimal.RequireFromString("90.45")))
		case "5100":
			assert.True(t, row.Debit.Equal(decimal.RequireFromString("90.45")))
		default:
			t.Errorf("unexpected row %s", row.Code)
		}
	}
}

func TestExpendituresImportIsRepeatable(t *testing.T) {
	w := newWorkspace(t)
	w.mustRun(t, "init", "--owner", owner)

	file := filepath.Join(w.dir, "statement.csv")
	data := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n" +
		"DEBIT,01/06/2025,STAPLES,-12.50,DEBIT_CARD,987.50,\n" +
		"DEBIT,01/06/2025,STAPLES,-12.50,DEBIT_CARD,975.00,\n" +
		"DEBIT,01/09/2025,CITY POWER,-80.00,ACH_DEBIT,895.00,\n"
	require.NoError(t, os.WriteFile(file, []byte(data), 0o644))
	args := []string{"expenditures", "import", "--owner", owner, "--expense-account", "5100", file}

	out := w.mustRun(t, args...)
	assert.Contains(t, out, "Imported 3 expenditures from 3 statement lines (0 already imported)")

	out = w.mustRun(t, args...)
	assert.Contains(t, out, "Imported 0 expenditures from 3 statement lines (3 already imported)")

	// Recording picks up the drafts the first run left behind, once.
	out = w.mustRun(t, append(args, "--record")...)
	assert.Contains(t, out, "JE-0001 12.50 STAPLES")
	assert.Contains(t, out, "JE-0002 12.50 STAPLES")
	assert.Contains(t, out, "JE-0003 80.00 CITY POWER")

	out = w.mustRun(t, append(args, "--record")...)
	assert.NotContains(t, out, "JE-0004")
	assert.Contains(t, out, "(3 already imported)")

	out = w.mustRun(t, "report", "trial-balance", "--owner", owner, "--as-of", "2025-12-31")
	var tb report.TrialBalance
	require.NoError(t, json.Unmarshal([]byte(out), &tb))
	assert.True(t, tb.TotalDebit.Equal(decimal.RequireFromString("105")))
}

func TestExpendituresImportUnknownFormat(t *testing.T) {
	w := newWorkspace(t)
	file := filepath.Join(w.dir, "statement.csv")
	require.NoError(t, os.WriteFile(file, []byte(""), 0o644))

	_, err := w.run(t, "expenditures", "import", "--owner", owner, "--expense-account", "5100", "--format", "bofa", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: chase")
}
