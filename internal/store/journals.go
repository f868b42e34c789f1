package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/backoffice/internal/id"
	"github.com/cleared-dev/backoffice/internal/model"
)

const entryColumns = `id, owner_id, entry_number, entry_date, description, total_debit, total_credit, status, posted_at, created_at, updated_at`

// EntryFilter narrows ListEntries. Zero fields do not filter.
type EntryFilter struct {
	Status model.EntryStatus
	From   model.Date
	To     model.Date
	Number string
}

// LineFilter narrows PostedLines. Zero fields do not filter.
type LineFilter struct {
	AccountID string
	To        model.Date // inclusive
}

func scanEntry(row interface{ Scan(...any) error }) (model.JournalEntry, error) {
	var (
		e        model.JournalEntry
		postedAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.OwnerID, &e.EntryNumber, &e.Date, &e.Description, &e.TotalDebit, &e.TotalCredit, &e.Status, &postedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if postedAt.Valid {
		t := postedAt.Time
		e.PostedAt = &t
	}
	return e, nil
}

// NextEntryNumber atomically allocates the owner's next entry number.
// Numbers are never reused, even when a draft is deleted.
func (t *Tx) NextEntryNumber(ctx context.Context, ownerID string) (string, error) {
	var seq int64
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO entry_sequences (owner_id, last_number) VALUES (?, 1)
		 ON CONFLICT(owner_id) DO UPDATE SET last_number = last_number + 1
		 RETURNING last_number`, ownerID).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("allocating entry number: %w", err)
	}
	return id.FormatEntryNumber(seq), nil
}

// InsertEntry stores an entry header and its lines.
func (t *Tx) InsertEntry(ctx context.Context, e model.JournalEntry) error {
	_, err := t.exec(ctx,
		`INSERT INTO journal_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.EntryNumber, e.Date, e.Description, e.TotalDebit, e.TotalCredit, string(e.Status), nullTime(e.PostedAt), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", e.EntryNumber, err)
	}
	return t.insertLines(ctx, e.ID, e.Lines)
}

// UpdateEntry rewrites an entry header and replaces its lines.
func (t *Tx) UpdateEntry(ctx context.Context, e model.JournalEntry) error {
	res, err := t.exec(ctx,
		`UPDATE journal_entries
		 SET entry_date = ?, description = ?, total_debit = ?, total_credit = ?, status = ?, posted_at = ?, updated_at = ?
		 WHERE owner_id = ? AND id = ?`,
		e.Date, e.Description, e.TotalDebit, e.TotalCredit, string(e.Status), nullTime(e.PostedAt), e.UpdatedAt, e.OwnerID, e.ID)
	if err != nil {
		return fmt.Errorf("updating entry %s: %w", e.ID, err)
	}
	if err := requireOne(res); err != nil {
		return err
	}
	if _, err := t.exec(ctx, `DELETE FROM journal_lines WHERE entry_id = ?`, e.ID); err != nil {
		return fmt.Errorf("clearing lines of entry %s: %w", e.ID, err)
	}
	return t.insertLines(ctx, e.ID, e.Lines)
}

// MarkPosted flips a draft entry to posted without touching its lines.
func (t *Tx) MarkPosted(ctx context.Context, ownerID, entryID string, postedAt time.Time) error {
	res, err := t.exec(ctx,
		`UPDATE journal_entries SET status = ?, posted_at = ?, updated_at = ?
		 WHERE owner_id = ? AND id = ? AND status = ?`,
		string(model.StatusPosted), postedAt, postedAt, ownerID, entryID, string(model.StatusDraft))
	if err != nil {
		return fmt.Errorf("posting entry %s: %w", entryID, err)
	}
	return requireOne(res)
}

func (t *Tx) insertLines(ctx context.Context, entryID string, lines []model.Line) error {
	for i, l := range lines {
		_, err := t.exec(ctx,
			`INSERT INTO journal_lines (entry_id, line_no, account_id, account_code, account_name, debit, credit, memo)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entryID, i+1, l.AccountID, l.AccountCode, l.AccountName, l.Debit, l.Credit, l.Memo)
		if err != nil {
			return fmt.Errorf("inserting line %d of entry %s: %w", i+1, entryID, err)
		}
	}
	return nil
}

// DeleteEntry removes an entry and, by cascade, its lines.
func (t *Tx) DeleteEntry(ctx context.Context, ownerID, entryID string) error {
	res, err := t.exec(ctx, `DELETE FROM journal_entries WHERE owner_id = ? AND id = ?`, ownerID, entryID)
	if err != nil {
		return fmt.Errorf("deleting entry %s: %w", entryID, err)
	}
	return requireOne(res)
}

// GetEntry loads an entry with its lines.
func (t *Tx) GetEntry(ctx context.Context, ownerID, entryID string) (model.JournalEntry, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE owner_id = ? AND id = ?`, ownerID, entryID)
	e, err := scanEntry(row)
	if err != nil {
		return model.JournalEntry{}, translate(err)
	}

	lines, err := t.linesWhere(ctx, "e.owner_id = ? AND e.id = ?", ownerID, entryID)
	if err != nil {
		return model.JournalEntry{}, err
	}
	e.Lines = lines[e.ID]
	return e, nil
}

// ListEntries returns an owner's entries ordered by date then entry number,
// each with its lines.
func (t *Tx) ListEntries(ctx context.Context, ownerID string, f EntryFilter) ([]model.JournalEntry, error) {
	where, args := entryWhere(ownerID, f)

	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries e WHERE `+where+` ORDER BY entry_date, length(entry_number), entry_number`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := []model.JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	lines, err := t.linesWhere(ctx, where, args...)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = lines[entries[i].ID]
	}
	return entries, nil
}

// entryWhere builds the condition for f over journal_entries aliased as e.
func entryWhere(ownerID string, f EntryFilter) (string, []any) {
	where := []string{"e.owner_id = ?"}
	args := []any{ownerID}
	if f.Status != "" {
		where = append(where, "e.status = ?")
		args = append(args, string(f.Status))
	}
	if !f.From.IsZero() {
		where = append(where, "e.entry_date >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "e.entry_date <= ?")
		args = append(args, f.To)
	}
	if f.Number != "" {
		where = append(where, "e.entry_number = ?")
		args = append(args, f.Number)
	}
	return strings.Join(where, " AND "), args
}

// linesWhere loads the lines of every entry matching where, keyed by entry id.
func (t *Tx) linesWhere(ctx context.Context, where string, args ...any) (map[string][]model.Line, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT l.entry_id, l.account_id, l.account_code, l.account_name, l.debit, l.credit, l.memo
		 FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id
		 WHERE `+where+` ORDER BY l.entry_id, l.line_no`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying lines: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.Line)
	for rows.Next() {
		var (
			entryID string
			l       model.Line
		)
		if err := rows.Scan(&entryID, &l.AccountID, &l.AccountCode, &l.AccountName, &l.Debit, &l.Credit, &l.Memo); err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}
		out[entryID] = append(out[entryID], l)
	}
	return out, rows.Err()
}

// PostedLines returns the lines of posted entries in chronological order
// (date, entry number, line number).
func (t *Tx) PostedLines(ctx context.Context, ownerID string, f LineFilter) ([]model.PostedLine, error) {
	where := []string{"e.owner_id = ?", "e.status = ?"}
	args := []any{ownerID, string(model.StatusPosted)}
	if f.AccountID != "" {
		where = append(where, "l.account_id = ?")
		args = append(args, f.AccountID)
	}
	if !f.To.IsZero() {
		where = append(where, "e.entry_date <= ?")
		args = append(args, f.To)
	}

	rows, err := t.tx.QueryContext(ctx,
		`SELECT e.id, e.entry_number, e.entry_date, e.description, l.account_id, l.debit, l.credit, l.memo
		 FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY e.entry_date, length(e.entry_number), e.entry_number, l.line_no`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posted lines: %w", err)
	}
	defer rows.Close()

	lines := []model.PostedLine{}
	for rows.Next() {
		var pl model.PostedLine
		if err := rows.Scan(&pl.EntryID, &pl.EntryNumber, &pl.Date, &pl.Description, &pl.AccountID, &pl.Debit, &pl.Credit, &pl.Memo); err != nil {
			return nil, fmt.Errorf("scanning posted line: %w", err)
		}
		lines = append(lines, pl)
	}
	return lines, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
