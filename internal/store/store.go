package store

import (
	"fmt"
	"os"
	"path/filepath"

	"timeloop/internal/migrate"
)

const (
	// DefaultDBFile is the fixed logical name of the timeloop store.
	DefaultDBFile = "timeloop.db"
)

// State represents the initialization state of the store.
type State int

const (
	StateMissing         State = iota // file doesn't exist
	StateUninitialized                // file exists but no schema
	StateVersionMismatch              // schema exists but behind the declared migrations
	StateReady                        // initialized and at the current version
)

func (s State) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateVersionMismatch:
		return "version mismatch"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Store is the timeloop datastore contract.
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens the store connection
	Open() error

	// Close closes the store connection
	Close() error

	// Migrate applies every pending migration and returns how many ran
	Migrate() (int, error)

	// CheckState returns the current state of the store
	CheckState() (State, error)

	// SchemaVersion returns the current schema version from the ledger
	SchemaVersion() (int, error)

	// History returns the applied migrations in version order
	History() ([]migrate.Applied, error)

	// Verify checks that every declared table and index is present
	Verify() error
}

// CheckExists verifies if the store exists in the given directory.
func CheckExists(dataDir string) (bool, error) {
	dbPath := filepath.Join(dataDir, DefaultDBFile)
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check store existence: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("store path is a directory, expected file: %s", dbPath)
	}
	return true, nil
}

// DBPath returns the full path to the store file inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DefaultDBFile)
}

// EnsureDir creates the data directory when it is missing.
func EnsureDir(dataDir string) error {
	if dataDir == "" || dataDir == "." {
		return nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir %q: %w", dataDir, err)
	}
	return nil
}
