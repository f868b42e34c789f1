package journal

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

// Service provides business logic for journal entries. It is the only
// writer of ledger-affecting facts.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates a journal Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// EntryParams holds the fields of a new journal entry.
type EntryParams struct {
	Date        model.Date   `json:"date"`
	Description string       `json:"description"`
	Lines       []LineParams `json:"lines"`
}

// UpdateParams patches a draft entry. A nil Lines leaves the lines alone;
// any non-nil Lines, even empty, replaces them and re-runs validation.
type UpdateParams struct {
	Date        *model.Date  `json:"date,omitempty"`
	Description *string      `json:"description,omitempty"`
	Lines       []LineParams `json:"lines,omitempty"`
}

// ListFilter narrows List. Zero fields do not filter. Number accepts any
// zero padding ("JE-7" finds JE-0007).
type ListFilter struct {
	Status model.EntryStatus
	From   model.Date
	To     model.Date
	Number string
}

// Create validates and stores a draft entry.
func (s *Service) Create(ctx context.Context, ownerID string, p EntryParams) (model.JournalEntry, error) {
	var e model.JournalEntry
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		e, err = s.CreateTx(ctx, tx, ownerID, p, model.StatusDraft)
		return err
	})
	if err != nil {
		return model.JournalEntry{}, err
	}
	return e, nil
}

// CreateTx runs the creation pipeline inside the caller's transaction and
// stores the entry with the given status. Callers outside this package use
// it to create an entry that is posted from the start.
func (s *Service) CreateTx(ctx context.Context, tx *store.Tx, ownerID string, p EntryParams, status model.EntryStatus) (model.JournalEntry, error) {
	if !status.Valid() {
		return model.JournalEntry{}, fmt.Errorf("invalid entry status %q", status)
	}
	if p.Date.IsZero() {
		return model.JournalEntry{}, errs.New(errs.ErrInvalidField, "date is required")
	}

	lines, totalDebit, totalCredit, err := s.buildLines(ctx, tx, ownerID, p.Lines)
	if err != nil {
		return model.JournalEntry{}, err
	}

	number, err := tx.NextEntryNumber(ctx, ownerID)
	if err != nil {
		return model.JournalEntry{}, err
	}

	now := s.now()
	e := model.JournalEntry{
		ID:          id.New(),
		OwnerID:     ownerID,
		EntryNumber: number,
		Date:        p.Date,
		Description: strings.TrimSpace(p.Description),
		Lines:       lines,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == model.StatusPosted {
		e.PostedAt = &now
	}

	if err := tx.InsertEntry(ctx, e); err != nil {
		return model.JournalEntry{}, err
	}
	slog.Info("journal entry created", "owner", ownerID, "entry_number", e.EntryNumber, "id", e.ID, "status", e.Status)
	return e, nil
}

// buildLines verifies every referenced account belongs to the owner, then
// validates the lines.
func (s *Service) buildLines(ctx context.Context, tx *store.Tx, ownerID string, params []LineParams) ([]model.Line, decimal.Decimal, decimal.Decimal, error) {
	ids := AccountIDs(params)
	accounts, err := tx.AccountsByID(ctx, ownerID, ids)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	if missing := MissingAccounts(ids, accounts); len(missing) > 0 {
		return nil, decimal.Zero, decimal.Zero, errs.New(errs.ErrAccountNotFound, "account not found: %s", strings.Join(missing, ", "))
	}
	return BuildLines(params, accounts)
}

// Update patches a draft entry. Posted entries are immutable.
func (s *Service) Update(ctx context.Context, ownerID, entryID string, p UpdateParams) (model.JournalEntry, error) {
	var e model.JournalEntry
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		e, err = tx.GetEntry(ctx, ownerID, entryID)
		if err != nil {
			return notFound(err, entryID)
		}
		if e.IsPosted() {
			return errs.New(errs.ErrImmutable, "journal entry %s is posted and cannot be changed", e.EntryNumber)
		}

		if p.Date != nil {
			if p.Date.IsZero() {
				return errs.New(errs.ErrInvalidField, "date is required")
			}
			e.Date = *p.Date
		}
		if p.Description != nil {
			e.Description = strings.TrimSpace(*p.Description)
		}
		if p.Lines != nil {
			lines, totalDebit, totalCredit, err := s.buildLines(ctx, tx, ownerID, p.Lines)
			if err != nil {
				return err
			}
			e.Lines = lines
			e.TotalDebit = totalDebit
			e.TotalCredit = totalCredit
		}
		e.UpdatedAt = s.now()
		return tx.UpdateEntry(ctx, e)
	})
	if err != nil {
		return model.JournalEntry{}, err
	}
	return e, nil
}

// Delete removes a draft entry. Its number is not reused.
func (s *Service) Delete(ctx context.Context, ownerID, entryID string) error {
	var number string
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		e, err := tx.GetEntry(ctx, ownerID, entryID)
		if err != nil {
			return notFound(err, entryID)
		}
		if e.IsPosted() {
			return errs.New(errs.ErrImmutable, "journal entry %s is posted and cannot be deleted", e.EntryNumber)
		}
		number = e.EntryNumber
		return tx.DeleteEntry(ctx, ownerID, entryID)
	})
	if err != nil {
		return err
	}
	slog.Info("journal entry deleted", "owner", ownerID, "entry_number", number, "id", entryID)
	return nil
}

// Post moves a draft entry to posted. Lines and totals are not revalidated,
// but every referenced account must still exist.
func (s *Service) Post(ctx context.Context, ownerID, entryID string) (model.JournalEntry, error) {
	var e model.JournalEntry
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		e, err = tx.GetEntry(ctx, ownerID, entryID)
		if err != nil {
			return notFound(err, entryID)
		}
		if e.IsPosted() {
			return errs.New(errs.ErrAlreadyPosted, "journal entry %s is already posted", e.EntryNumber)
		}

		ids := make([]string, 0, len(e.Lines))
		for _, l := range e.Lines {
			ids = append(ids, l.AccountID)
		}
		accounts, err := tx.AccountsByID(ctx, ownerID, ids)
		if err != nil {
			return err
		}
		if missing := MissingAccounts(ids, accounts); len(missing) > 0 {
			return errs.New(errs.ErrAccountNotFound, "journal entry %s references deleted accounts: %s", e.EntryNumber, strings.Join(missing, ", "))
		}

		now := s.now()
		if err := tx.MarkPosted(ctx, ownerID, entryID, now); err != nil {
			return err
		}
		e.Status = model.StatusPosted
		e.PostedAt = &now
		e.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.JournalEntry{}, err
	}
	slog.Info("journal entry posted", "owner", ownerID, "entry_number", e.EntryNumber, "id", e.ID)
	return e, nil
}

// Get returns one entry with its lines.
func (s *Service) Get(ctx context.Context, ownerID, entryID string) (model.JournalEntry, error) {
	var e model.JournalEntry
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		e, err = tx.GetEntry(ctx, ownerID, entryID)
		return notFound(err, entryID)
	})
	return e, err
}

// List returns the owner's entries ordered by date then entry number.
func (s *Service) List(ctx context.Context, ownerID string, f ListFilter) ([]model.JournalEntry, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, errs.New(errs.ErrInvalidField, "invalid status %q", f.Status)
	}
	filter := store.EntryFilter{Status: f.Status, From: f.From, To: f.To}
	if number := strings.ToUpper(strings.TrimSpace(f.Number)); number != "" {
		seq, err := id.ParseEntryNumber(number)
		if err != nil {
			return nil, errs.New(errs.ErrInvalidField, "%v", err)
		}
		filter.Number = id.FormatEntryNumber(seq)
	}

	var entries []model.JournalEntry
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		entries, err = tx.ListEntries(ctx, ownerID, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing journal entries: %w", err)
	}
	return entries, nil
}

func notFound(err error, entryID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return errs.New(errs.ErrEntryNotFound, "journal entry %s not found", entryID)
	}
	return err
}
