package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"timeloop/internal/migrate"
	"timeloop/internal/store"
)

// SQLiteStore implements the store contract using modernc.org/sqlite.
type SQLiteStore struct {
	dbPath     string
	db         *sqlx.DB
	migrations []migrate.Migration
}

// New creates a SQLiteStore with the declared timeloop migrations.
func New(dbPath string) *SQLiteStore {
	return NewWithMigrations(dbPath, Migrations())
}

// NewWithMigrations creates a SQLiteStore with a custom migration list.
func NewWithMigrations(dbPath string, migrations []migrate.Migration) *SQLiteStore {
	return &SQLiteStore{
		dbPath:     dbPath,
		migrations: migrations,
	}
}

// Open opens the SQLite database with safe defaults. Foreign keys are
// enabled so the schema's referential-integrity rules are enforced by the
// engine.
func (s *SQLiteStore) Open() error {
	db, err := sqlx.Connect("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas are per-connection; pin the pool to one connection so they
	// hold for every statement. A single local store needs no more.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for callers that need direct queries.
func (s *SQLiteStore) DB() *sqlx.DB {
	return s.db
}

// TargetVersion returns the highest declared migration version.
func (s *SQLiteStore) TargetVersion() int {
	if len(s.migrations) == 0 {
		return 0
	}
	return s.migrations[len(s.migrations)-1].Version
}

// Migrate applies every pending migration and returns how many ran.
func (s *SQLiteStore) Migrate() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	return migrate.Apply(s.db, s.migrations)
}

// CheckState returns the current state of the store.
func (s *SQLiteStore) CheckState() (store.State, error) {
	if s.db == nil {
		return store.StateMissing, fmt.Errorf("database not opened")
	}

	ok, err := s.hasTable("schema_migrations")
	if err != nil {
		return store.StateUninitialized, err
	}
	if !ok {
		return store.StateUninitialized, nil
	}

	version, err := s.SchemaVersion()
	if err != nil {
		return store.StateUninitialized, err
	}
	if version == 0 {
		return store.StateUninitialized, nil
	}
	if version < s.TargetVersion() {
		return store.StateVersionMismatch, nil
	}

	return store.StateReady, nil
}

// SchemaVersion returns the current schema version from the ledger, or 0
// when the ledger is missing or empty.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	ok, err := s.hasTable("schema_migrations")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	return migrate.CurrentVersion(s.db)
}

// History returns the applied migrations in version order.
func (s *SQLiteStore) History() ([]migrate.Applied, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if err := migrate.EnsureLedger(s.db); err != nil {
		return nil, err
	}
	return migrate.History(s.db)
}

// Verify checks that every table and index the schema declares is present.
func (s *SQLiteStore) Verify() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	for _, name := range schemaTables {
		ok, err := s.hasTable(name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("missing table %q", name)
		}
	}
	for _, name := range schemaIndexes {
		ok, err := s.hasIndex(name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("missing index %q", name)
		}
	}
	return nil
}

func (s *SQLiteStore) hasTable(name string) (bool, error) {
	var count int
	err := s.db.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to check table %q: %w", name, err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) hasIndex(name string) (bool, error) {
	var count int
	err := s.db.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to check index %q: %w", name, err)
	}
	return count > 0, nil
}
