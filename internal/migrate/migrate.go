// Package migrate applies ordered, versioned schema migrations to a SQL
// store and records them in a schema_migrations ledger. Applying the same
// list twice is a no-op for every version already in the ledger.
package migrate

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Kind is the direction of a migration.
type Kind int

const (
	// Up is a forward schema change. Down migrations are not supported.
	Up Kind = iota
)

// Migration is a single versioned schema-change script. Versions must be
// positive and strictly increasing within a migration list.
type Migration struct {
	Version     int
	Description string
	Kind        Kind
	SQL         string
}

// Applied is a ledger row for a migration that has been run.
type Applied struct {
	Version     int    `db:"version"`
	Description string `db:"description"`
	AppliedAt   int64  `db:"applied_at"`
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at INTEGER NOT NULL
);
`

const insertLedgerSQL = `
INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)
`

// Validate checks a migration list before anything executes.
func Validate(migrations []Migration) error {
	prev := 0
	for _, m := range migrations {
		if m.Version <= 0 {
			return fmt.Errorf("migration version %d: versions must be positive", m.Version)
		}
		if m.Version <= prev {
			return fmt.Errorf("migration version %d after %d: versions must be strictly increasing", m.Version, prev)
		}
		if m.Kind != Up {
			return fmt.Errorf("migration version %d: only Up migrations are supported", m.Version)
		}
		if m.SQL == "" {
			return fmt.Errorf("migration version %d: empty SQL", m.Version)
		}
		prev = m.Version
	}
	return nil
}

// EnsureLedger creates the schema_migrations table if it does not exist.
func EnsureLedger(db *sqlx.DB) error {
	if _, err := db.Exec(ledgerSchema); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// Apply runs every migration whose version is above the current ledger
// version, in ascending order, each inside its own transaction. It returns
// the number of migrations applied.
func Apply(db *sqlx.DB, migrations []Migration) (int, error) {
	if err := Validate(migrations); err != nil {
		return 0, err
	}
	if err := EnsureLedger(db); err != nil {
		return 0, err
	}

	current, err := CurrentVersion(db)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyOne(db, m); err != nil {
			return applied, fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		applied++
	}
	return applied, nil
}

// applyOne runs a single migration batch and its ledger insert in one
// transaction, so a failed batch leaves no ledger entry behind.
func applyOne(db *sqlx.DB, m Migration) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(insertLedgerSQL, m.Version, m.Description, time.Now().Unix()); err != nil {
		return fmt.Errorf("record in ledger: %w", err)
	}

	return tx.Commit()
}

// CurrentVersion returns the highest version in the ledger, or 0 when no
// migration has been applied. The ledger table must exist.
func CurrentVersion(db *sqlx.DB) (int, error) {
	var version int
	err := db.Get(&version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return version, nil
}

// History returns every applied migration in version order.
func History(db *sqlx.DB) ([]Applied, error) {
	var rows []Applied
	err := db.Select(&rows, `SELECT version, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("query migration history: %w", err)
	}
	return rows, nil
}
