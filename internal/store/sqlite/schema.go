package sqlite

import "timeloop/internal/migrate"

// createInitialTables is version 1 of the timeloop schema. The statement
// batch is existence-guarded so re-execution is a no-op, and tables are
// declared before the indexes that reference them.
const createInitialTables = `
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    color TEXT DEFAULT '#6366f1',
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    category_id INTEGER,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (category_id) REFERENCES categories(id)
);

CREATE TABLE IF NOT EXISTS time_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id INTEGER NOT NULL,
    duration INTEGER NOT NULL,
    date TEXT NOT NULL,
    note TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_time_entries_date ON time_entries(date);
CREATE INDEX IF NOT EXISTS idx_time_entries_entry_id ON time_entries(entry_id);
`

// tables and indexes the schema declares, used by Verify.
var (
	schemaTables  = []string{"categories", "entries", "time_entries"}
	schemaIndexes = []string{"idx_time_entries_date", "idx_time_entries_entry_id"}
)

// Migrations returns the ordered migration list for the timeloop store.
func Migrations() []migrate.Migration {
	return []migrate.Migration{
		{
			Version:     1,
			Description: "create initial tables",
			Kind:        migrate.Up,
			SQL:         createInitialTables,
		},
	}
}
