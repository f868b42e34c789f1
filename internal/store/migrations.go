package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// LatestSchemaVersion is the newest schema version this binary understands.
const LatestSchemaVersion = 3

// Migration is one forward step of the schema.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Ledger core",
		Up: execAll(
			`CREATE TABLE accounts (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				code TEXT NOT NULL,
				name TEXT NOT NULL,
				type TEXT NOT NULL,
				opening_balance TEXT NOT NULL DEFAULT '0',
				is_system INTEGER NOT NULL DEFAULT 0,
				description TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				UNIQUE(owner_id, code)
			)`,
			`CREATE TABLE entry_sequences (
				owner_id TEXT PRIMARY KEY,
				last_number INTEGER NOT NULL
			)`,
			`CREATE TABLE journal_entries (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				entry_number TEXT NOT NULL,
				entry_date TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				total_debit TEXT NOT NULL,
				total_credit TEXT NOT NULL,
				status TEXT NOT NULL,
				posted_at DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				UNIQUE(owner_id, entry_number)
			)`,
			`CREATE INDEX idx_journal_entries_owner_date ON journal_entries(owner_id, status, entry_date)`,
			`CREATE TABLE journal_lines (
				entry_id TEXT NOT NULL REFERENCES journal_entries(id) ON DELETE CASCADE,
				line_no INTEGER NOT NULL,
				account_id TEXT NOT NULL,
				account_code TEXT NOT NULL,
				account_name TEXT NOT NULL,
				debit TEXT NOT NULL,
				credit TEXT NOT NULL,
				memo TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (entry_id, line_no)
			)`,
			`CREATE INDEX idx_journal_lines_account ON journal_lines(account_id)`,
		),
	},
	{
		Version:     2,
		Description: "Expenditures and owner settings",
		Up: execAll(
			`CREATE TABLE expenditures (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				expense_date TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				payee TEXT NOT NULL DEFAULT '',
				amount TEXT NOT NULL,
				expense_account_id TEXT NOT NULL,
				payment_account_id TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				journal_entry_id TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_expenditures_owner ON expenditures(owner_id, expense_date)`,
			`CREATE TABLE owner_settings (
				owner_id TEXT PRIMARY KEY,
				default_payment_account_id TEXT NOT NULL DEFAULT ''
			)`,
		),
	},
	{
		Version:     3,
		Description: "Expenditure source references",
		Up: execAll(
			`ALTER TABLE expenditures ADD COLUMN source_ref TEXT NOT NULL DEFAULT ''`,
			`CREATE UNIQUE INDEX idx_expenditures_source_ref ON expenditures(owner_id, source_ref) WHERE source_ref <> ''`,
		),
	},
}

func execAll(queries ...string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, query := range queries {
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
		}
		return nil
	}
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > LatestSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", current, LatestSchemaVersion)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		slog.Debug("applied migration", "version", m.Version, "description", m.Description)
	}
	return nil
}

func (s *Store) apply(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.Up(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, m.Version, m.Description); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(version.Int64), nil
}

// SchemaVersion returns the version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return s.schemaVersion(ctx)
}
