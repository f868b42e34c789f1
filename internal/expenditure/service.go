// Package expenditure manages simple expense records and turns them into
// posted journal entries.
package expenditure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/backoffice/internal/errs"
	"github.com/cleared-dev/backoffice/internal/id"
	"github.com/cleared-dev/backoffice/internal/journal"
	"github.com/cleared-dev/backoffice/internal/model"
	"github.com/cleared-dev/backoffice/internal/store"
)

// DefaultPaymentCode is the account code used as the payment account when
// neither the expenditure nor the owner's settings name one.
const DefaultPaymentCode = "1000"

// Service manages expenditures.
type Service struct {
	store       *store.Store
	journals    *journal.Service
	paymentCode string
	now         func() time.Time
}

// NewService creates an expenditure Service. paymentCode is the fallback
// payment account code; empty means DefaultPaymentCode.
func NewService(st *store.Store, journals *journal.Service, paymentCode string) *Service {
	if strings.TrimSpace(paymentCode) == "" {
		paymentCode = DefaultPaymentCode
	}
	return &Service{
		store:       st,
		journals:    journals,
		paymentCode: paymentCode,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateParams holds the fields of a new expenditure.
type CreateParams struct {
	Date             model.Date      `json:"date"`
	Description      string          `json:"description"`
	Payee            string          `json:"payee"`
	Amount           decimal.Decimal `json:"amount"`
	ExpenseAccountID string          `json:"expenseAccountId"`
	PaymentAccountID string          `json:"paymentAccountId"`
	SourceRef        string          `json:"sourceRef"`
}

// Create stores a draft expenditure.
func (s *Service) Create(ctx context.Context, ownerID string, p CreateParams) (model.Expenditure, error) {
	if p.Date.IsZero() {
		return model.Expenditure{}, errs.New(errs.ErrInvalidField, "date is required")
	}
	if !p.Amount.IsPositive() {
		return model.Expenditure{}, errs.New(errs.ErrInvalidField, "amount must be positive")
	}
	if p.ExpenseAccountID == "" {
		return model.Expenditure{}, errs.New(errs.ErrInvalidField, "expenseAccountId is required")
	}

	now := s.now()
	x := model.Expenditure{
		ID:               id.New(),
		OwnerID:          ownerID,
		Date:             p.Date,
		Description:      strings.TrimSpace(p.Description),
		Payee:            strings.TrimSpace(p.Payee),
		Amount:           p.Amount,
		ExpenseAccountID: p.ExpenseAccountID,
		PaymentAccountID: p.PaymentAccountID,
		SourceRef:        strings.TrimSpace(p.SourceRef),
		Status:           model.ExpenditureDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := s.account(ctx, tx, ownerID, p.ExpenseAccountID); err != nil {
			return err
		}
		if p.PaymentAccountID != "" {
			pay, err := s.account(ctx, tx, ownerID, p.PaymentAccountID)
			if err != nil {
				return err
			}
			if err := checkPaymentType(pay); err != nil {
				return err
			}
		}
		err := tx.InsertExpenditure(ctx, x)
		if errors.Is(err, store.ErrConflict) {
			return errs.New(errs.ErrDuplicateExpenditure, "expenditure with source reference %s already exists", x.SourceRef)
		}
		return err
	})
	if err != nil {
		return model.Expenditure{}, err
	}
	return x, nil
}

// Get returns one expenditure.
func (s *Service) Get(ctx context.Context, ownerID, expenditureID string) (model.Expenditure, error) {
	var x model.Expenditure
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		x, err = tx.GetExpenditure(ctx, ownerID, expenditureID)
		return notFound(err, expenditureID)
	})
	return x, err
}

// List returns the owner's expenditures, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Expenditure, error) {
	var out []model.Expenditure
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.ListExpenditures(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing expenditures: %w", err)
	}
	return out, nil
}

// Delete removes a draft expenditure.
func (s *Service) Delete(ctx context.Context, ownerID, expenditureID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		x, err := tx.GetExpenditure(ctx, ownerID, expenditureID)
		if err != nil {
			return notFound(err, expenditureID)
		}
		if x.IsRecorded() {
			return errs.New(errs.ErrAlreadyRecorded, "expenditure %s is recorded and cannot be deleted", expenditureID)
		}
		return tx.DeleteExpenditure(ctx, ownerID, expenditureID)
	})
}

// RecordToLedger posts the expenditure as a two-line journal entry debiting
// the expense account and crediting the payment account. The entry and the
// expenditure's status change commit together or not at all.
func (s *Service) RecordToLedger(ctx context.Context, ownerID, expenditureID string) (model.Expenditure, model.JournalEntry, error) {
	var (
		x     model.Expenditure
		entry model.JournalEntry
	)
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		x, err = tx.GetExpenditure(ctx, ownerID, expenditureID)
		if err != nil {
			return notFound(err, expenditureID)
		}
		if x.IsRecorded() {
			return errs.New(errs.ErrAlreadyRecorded, "expenditure %s is already recorded as %s", expenditureID, x.JournalEntryID)
		}

		payment, err := s.paymentAccount(ctx, tx, x)
		if err != nil {
			return err
		}

		entry, err = s.journals.CreateTx(ctx, tx, ownerID, journal.EntryParams{
			Date:        x.Date,
			Description: entryDescription(x),
			Lines: []journal.LineParams{
				{AccountID: x.ExpenseAccountID, Debit: x.Amount, Memo: x.Payee},
				{AccountID: payment.ID, Credit: x.Amount, Memo: x.Payee},
			},
		}, model.StatusPosted)
		if err != nil {
			return fmt.Errorf("recording expenditure %s: %w", expenditureID, err)
		}

		x.PaymentAccountID = payment.ID
		x.Status = model.ExpenditureRecorded
		x.JournalEntryID = entry.ID
		x.UpdatedAt = s.now()
		return tx.UpdateExpenditure(ctx, x)
	})
	if err != nil {
		return model.Expenditure{}, model.JournalEntry{}, err
	}
	slog.Info("expenditure recorded", "owner", ownerID, "id", x.ID, "entry_number", entry.EntryNumber)
	return x, entry, nil
}

// paymentAccount resolves the account an expenditure is paid from: its own
// reference, then the owner's configured default, then the account with the
// fallback code. A reference to an account deleted since the expenditure was
// created falls through to the defaults.
func (s *Service) paymentAccount(ctx context.Context, tx *store.Tx, x model.Expenditure) (model.Account, error) {
	if x.PaymentAccountID != "" {
		a, err := tx.GetAccount(ctx, x.OwnerID, x.PaymentAccountID)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return model.Account{}, err
		}
		slog.Warn("payment account no longer exists, using default", "owner", x.OwnerID, "id", x.ID, "account_id", x.PaymentAccountID)
	}

	settings, err := tx.GetOwnerSettings(ctx, x.OwnerID)
	if err != nil {
		return model.Account{}, err
	}
	if settings.DefaultPaymentAccountID != "" {
		a, err := tx.GetAccount(ctx, x.OwnerID, settings.DefaultPaymentAccountID)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return model.Account{}, err
		}
	}

	a, err := tx.GetAccountByCode(ctx, x.OwnerID, s.paymentCode)
	if errors.Is(err, store.ErrNotFound) {
		return model.Account{}, errs.New(errs.ErrMissingCashAccount, "no payment account given and no account coded %s exists", s.paymentCode)
	}
	return a, err
}

func (s *Service) account(ctx context.Context, tx *store.Tx, ownerID, accountID string) (model.Account, error) {
	a, err := tx.GetAccount(ctx, ownerID, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Account{}, errs.New(errs.ErrAccountNotFound, "account %s not found", accountID)
	}
	return a, err
}

func checkPaymentType(a model.Account) error {
	if a.Type != model.AccountTypeAsset && a.Type != model.AccountTypeLiability {
		return errs.New(errs.ErrInvalidField, "payment account must be an asset or liability, %s is %s", a.Code, a.Type)
	}
	return nil
}

func entryDescription(x model.Expenditure) string {
	switch {
	case x.Description != "":
		return x.Description
	case x.Payee != "":
		return "Payment to " + x.Payee
	default:
		return "Expenditure"
	}
}

func notFound(err error, expenditureID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return errs.New(errs.ErrExpenditureNotFound, "expenditure %s not found", expenditureID)
	}
	return err
}
