package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/backoffice/internal/model"
)

// Header is the CSV header written by WriteEntries.
const Header = "entry_number,date,status,description,account_code,account_name,debit,credit,memo"

const (
	numFields   = 9
	colNumber   = 0
	colDate     = 1
	colStatus   = 2
	colDesc     = 3
	colAcctCode = 4
	colAcctName = 5
	colDebit    = 6
	colCredit   = 7
	colMemo     = 8
)

// WriteEntries writes one CSV row per journal line, header first.
func WriteEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, e := range entries {
		for _, l := range e.Lines {
			if err := cw.Write(MarshalLine(e, l)); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts one line of an entry to a CSV row.
func MarshalLine(e model.JournalEntry, l model.Line) []string {
	rec := make([]string, numFields)
	rec[colNumber] = e.EntryNumber
	rec[colDate] = e.Date.String()
	rec[colStatus] = string(e.Status)
	rec[colDesc] = e.Description
	rec[colAcctCode] = l.AccountCode
	rec[colAcctName] = l.AccountName

	if !l.Debit.IsZero() {
		rec[colDebit] = l.Debit.StringFixed(2)
	}
	if !l.Credit.IsZero() {
		rec[colCredit] = l.Credit.StringFixed(2)
	}

	rec[colMemo] = l.Memo
	return rec
}
