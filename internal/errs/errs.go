// Package errs defines the ledger error taxonomy.
package errs

import (
	"errors"
	"fmt"
)

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error is a business-rule failure. Two Errors match under errors.Is when
// their codes are equal, so sentinels below can be compared against errors
// built with New.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels.
var (
	ErrInvalidField      = &Error{Kind: KindValidation, Code: "invalid_field", Message: "invalid field"}
	ErrDuplicateCode     = &Error{Kind: KindValidation, Code: "duplicate_code", Message: "account code already exists"}
	ErrInvalidLine       = &Error{Kind: KindValidation, Code: "invalid_line", Message: "invalid journal line"}
	ErrInsufficientLines = &Error{Kind: KindValidation, Code: "insufficient_lines", Message: "journal entry needs at least two lines"}
	ErrUnbalanced        = &Error{Kind: KindValidation, Code: "unbalanced", Message: "journal entry is not balanced"}

	ErrAccountNotFound     = &Error{Kind: KindNotFound, Code: "account_not_found", Message: "account not found"}
	ErrEntryNotFound       = &Error{Kind: KindNotFound, Code: "entry_not_found", Message: "journal entry not found"}
	ErrExpenditureNotFound = &Error{Kind: KindNotFound, Code: "expenditure_not_found", Message: "expenditure not found"}

	ErrAlreadyPosted          = &Error{Kind: KindConflict, Code: "already_posted", Message: "journal entry is already posted"}
	ErrAlreadyRecorded        = &Error{Kind: KindConflict, Code: "already_recorded", Message: "expenditure is already recorded"}
	ErrSystemAccountProtected = &Error{Kind: KindConflict, Code: "system_account_protected", Message: "system accounts cannot be deleted"}
	ErrAccountInUse           = &Error{Kind: KindConflict, Code: "account_in_use", Message: "account is referenced by posted journal entries"}
	ErrImmutable              = &Error{Kind: KindConflict, Code: "immutable", Message: "posted journal entries cannot be changed"}
	ErrDuplicateExpenditure   = &Error{Kind: KindConflict, Code: "duplicate_expenditure", Message: "expenditure with this source reference already exists"}

	ErrMissingCashAccount = &Error{Kind: KindDependency, Code: "missing_cash_account", Message: "no payment account available"}
)

// New returns an error matching sentinel with a specific message.
func New(sentinel *Error, format string, args ...any) error {
	return &Error{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the Kind of err, or 0 when err is not a ledger error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
