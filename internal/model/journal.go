package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus represents the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusDraft  EntryStatus = "draft"
	StatusPosted EntryStatus = "posted"
)

// Valid reports whether s is a known status.
func (s EntryStatus) Valid() bool {
	return s == StatusDraft || s == StatusPosted
}

// Line is one side of a journal entry. AccountCode and AccountName are
// copied from the account when the line is written and never refreshed.
type Line struct {
	AccountID   string          `json:"accountId"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo,omitempty"`
}

// JournalEntry is a balanced set of lines. Once posted it never changes.
type JournalEntry struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"-"`
	EntryNumber string          `json:"entryNumber"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Lines       []Line          `json:"lines"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Status      EntryStatus     `json:"status"`
	PostedAt    *time.Time      `json:"postedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsPosted reports whether the entry has been posted.
func (e *JournalEntry) IsPosted() bool {
	return e.Status == StatusPosted
}

// PostedLine is a journal line joined with its entry header, as read by
// the balance aggregator and the general ledger.
type PostedLine struct {
	EntryID     string
	EntryNumber string
	Date        Date
	Description string
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Memo        string
}
