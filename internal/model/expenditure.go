package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenditureStatus tracks whether an expenditure reached the ledger.
type ExpenditureStatus string

const (
	ExpenditureDraft    ExpenditureStatus = "draft"
	ExpenditureRecorded ExpenditureStatus = "recorded"
)

// Expenditure is a simple expense record that can be turned into a posted
// two-line journal entry exactly once.
type Expenditure struct {
	ID               string            `json:"id"`
	OwnerID          string            `json:"-"`
	Date             Date              `json:"date"`
	Description      string            `json:"description"`
	Payee            string            `json:"payee,omitempty"`
	Amount           decimal.Decimal   `json:"amount"`
	ExpenseAccountID string            `json:"expenseAccountId"`
	PaymentAccountID string            `json:"paymentAccountId,omitempty"` // empty = owner default
	Status           ExpenditureStatus `json:"status"`
	JournalEntryID   string            `json:"journalEntryId,omitempty"`
	SourceRef        string            `json:"sourceRef,omitempty"` // e.g. a bank statement line; unique per owner
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// IsRecorded reports whether the expenditure has been posted to the ledger.
func (e *Expenditure) IsRecorded() bool {
	return e.Status == ExpenditureRecorded
}
