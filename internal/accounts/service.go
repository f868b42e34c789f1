package accounts

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
	"github.com/cleared-dev/backoffice/internal/model"
	"github.com/cleared-dev/backoffice/internal/store"
)

// Service manages each owner's chart of accounts.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates a Service backed by st.
func NewService(st *store.Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// CreateParams holds the fields of a new account.
type CreateParams struct {
	Code           string
	Name           string
	Type           model.AccountType
	OpeningBalance decimal.Decimal
	Description    string
}

// UpdateParams holds a partial update. Nil fields are left alone. Code is
// accepted only so a caller sending the unchanged code is not rejected.
type UpdateParams struct {
	Code           *string
	Name           *string
	Type           *model.AccountType
	OpeningBalance *decimal.Decimal
	Description    *string
}

// NormalizeCode trims and upper-cases an account code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeName trims and collapses internal whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// List returns the owner's accounts sorted by code, seeding the default
// chart first when the owner has none.
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Account, error) {
	var accounts []model.Account
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		accounts, err = tx.ListAccounts(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	if len(accounts) > 0 {
		return accounts, nil
	}

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := s.seedTx(ctx, tx, ownerID); err != nil {
			return err
		}
		var err error
		accounts, err = tx.ListAccounts(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accounts, nil
}

// Seed inserts the default chart when the owner has no accounts. It returns
// the number of accounts inserted, zero when the chart already existed.
func (s *Service) Seed(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		n, err = s.seedTx(ctx, tx, ownerID)
		return err
	})
	return n, err
}

func (s *Service) seedTx(ctx context.Context, tx *store.Tx, ownerID string) (int, error) {
	count, err := tx.CountAccounts(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := s.now()
	chart := DefaultChart()
	for _, a := range chart {
		a.ID = id.New()
		a.OwnerID = ownerID
		a.CreatedAt = now
		a.UpdatedAt = now
		if err := tx.InsertAccount(ctx, a); err != nil {
			return 0, fmt.Errorf("seeding chart of accounts: %w", err)
		}
	}
	slog.Info("seeded default chart of accounts", "owner", ownerID, "accounts", len(chart))
	return len(chart), nil
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, ownerID, accountID string) (model.Account, error) {
	var a model.Account
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		a, err = tx.GetAccount(ctx, ownerID, accountID)
		return notFound(err, accountID)
	})
	return a, err
}

// Create adds an account to the owner's chart.
func (s *Service) Create(ctx context.Context, ownerID string, p CreateParams) (model.Account, error) {
	code := NormalizeCode(p.Code)
	name := NormalizeName(p.Name)
	if code == "" {
		return model.Account{}, errs.New(errs.ErrInvalidField, "code is required")
	}
	if name == "" {
		return model.Account{}, errs.New(errs.ErrInvalidField, "name is required")
	}
	if !p.Type.Valid() {
		return model.Account{}, errs.New(errs.ErrInvalidField, "invalid account type %q", p.Type)
	}

	now := s.now()
	a := model.Account{
		ID:             id.New(),
		OwnerID:        ownerID,
		Code:           code,
		Name:           name,
		Type:           p.Type,
		OpeningBalance: p.OpeningBalance,
		Description:    strings.TrimSpace(p.Description),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.GetAccountByCode(ctx, ownerID, code); err == nil {
			return errs.New(errs.ErrDuplicateCode, "account code %s already exists", code)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		err := tx.InsertAccount(ctx, a)
		if errors.Is(err, store.ErrConflict) {
			return errs.New(errs.ErrDuplicateCode, "account code %s already exists", code)
		}
		return err
	})
	if err != nil {
		return model.Account{}, err
	}
	slog.Info("account created", "owner", ownerID, "code", a.Code, "id", a.ID)
	return a, nil
}

// Update applies a partial update. The code of an account never changes.
func (s *Service) Update(ctx context.Context, ownerID, accountID string, p UpdateParams) (model.Account, error) {
	var a model.Account
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		a, err = tx.GetAccount(ctx, ownerID, accountID)
		if err != nil {
			return notFound(err, accountID)
		}

		if p.Code != nil && NormalizeCode(*p.Code) != a.Code {
			return errs.New(errs.ErrInvalidField, "account code is immutable")
		}
		if p.Name != nil {
			name := NormalizeName(*p.Name)
			if name == "" {
				return errs.New(errs.ErrInvalidField, "name cannot be empty")
			}
			a.Name = name
		}
		if p.Type != nil {
			if !p.Type.Valid() {
				return errs.New(errs.ErrInvalidField, "invalid account type %q", *p.Type)
			}
			a.Type = *p.Type
		}
		if p.OpeningBalance != nil {
			a.OpeningBalance = *p.OpeningBalance
		}
		if p.Description != nil {
			a.Description = strings.TrimSpace(*p.Description)
		}
		a.UpdatedAt = s.now()
		return tx.UpdateAccount(ctx, a)
	})
	if err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// Delete removes an unused, non-system account.
func (s *Service) Delete(ctx context.Context, ownerID, accountID string) error {
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		a, err := tx.GetAccount(ctx, ownerID, accountID)
		if err != nil {
			return notFound(err, accountID)
		}
		if a.IsSystem {
			return errs.New(errs.ErrSystemAccountProtected, "account %s is a system account and cannot be deleted", a.Code)
		}

		used, err := tx.AccountHasPostedLines(ctx, ownerID, accountID)
		if err != nil {
			return err
		}
		if used {
			return errs.New(errs.ErrAccountInUse, "account %s is referenced by posted journal entries", a.Code)
		}

		settings, err := tx.GetOwnerSettings(ctx, ownerID)
		if err != nil {
			return err
		}
		if settings.DefaultPaymentAccountID == accountID {
			settings.DefaultPaymentAccountID = ""
			if err := tx.PutOwnerSettings(ctx, settings); err != nil {
				return err
			}
		}
		return tx.DeleteAccount(ctx, ownerID, accountID)
	})
	if err != nil {
		return err
	}
	slog.Info("account deleted", "owner", ownerID, "id", accountID)
	return nil
}

// DefaultPaymentAccount returns the owner's ledger settings, which name the
// default payment account when one is configured.
func (s *Service) DefaultPaymentAccount(ctx context.Context, ownerID string) (model.OwnerSettings, error) {
	var settings model.OwnerSettings
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		settings, err = tx.GetOwnerSettings(ctx, ownerID)
		return err
	})
	return settings, err
}

// SetDefaultPaymentAccount records the account expenditures are paid from
// when they name none. An empty id clears the setting.
func (s *Service) SetDefaultPaymentAccount(ctx context.Context, ownerID, accountID string) (model.OwnerSettings, error) {
	settings := model.OwnerSettings{OwnerID: ownerID, DefaultPaymentAccountID: accountID}
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if accountID != "" {
			a, err := tx.GetAccount(ctx, ownerID, accountID)
			if err != nil {
				return notFound(err, accountID)
			}
			if a.Type != model.AccountTypeAsset && a.Type != model.AccountTypeLiability {
				return errs.New(errs.ErrInvalidField, "payment account must be an asset or liability, %s is %s", a.Code, a.Type)
			}
		}
		return tx.PutOwnerSettings(ctx, settings)
	})
	if err != nil {
		return model.OwnerSettings{}, err
	}
	return settings, nil
}

func notFound(err error, accountID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return errs.New(errs.ErrAccountNotFound, "account %s not found", accountID)
	}
	return err
}
