package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/backoffice/internal/model"
)

const (
	numFields  = 6
	colCode    = 0
	colName    = 1
	colType    = 2
	colOpening = 3
	colSystem  = 4
	colDesc    = 5
)

var header = []string{"code", "name", "type", "opening_balance", "is_system", "description"}

// ReadAccounts reads a chart of accounts written by WriteAccounts.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts as CSV with a header row.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colOpening] = acct.OpeningBalance.StringFixed(2)
	row[colSystem] = strconv.FormatBool(acct.IsSystem)
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account. IDs and owners are not
// part of the file.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	typ := model.AccountType(record[colType])
	if !typ.Valid() {
		return model.Account{}, fmt.Errorf("invalid account type %q", record[colType])
	}

	opening := decimal.Zero
	if record[colOpening] != "" {
		var err error
		opening, err = decimal.NewFromString(record[colOpening])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing opening_balance %q: %w", record[colOpening], err)
		}
	}

	var system bool
	if record[colSystem] != "" {
		var err error
		system, err = strconv.ParseBool(record[colSystem])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing is_system %q: %w", record[colSystem], err)
		}
	}

	return model.Account{
		Code:           record[colCode],
		Name:           record[colName],
		Type:           typ,
		OpeningBalance: opening,
		IsSystem:       system,
		Description:    record[colDesc],
	}, nil
}
