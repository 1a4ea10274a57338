package app

import (
	"fmt"

	"timeloop/internal/migrate"
	"timeloop/internal/store"
	"timeloop/internal/store/sqlite"
)

// SQLPlugin opens the timeloop store and applies its migrations during
// bootstrap. Migration failure aborts startup.
type SQLPlugin struct {
	Migrations []migrate.Migration
}

// NewSQLPlugin returns a SQLPlugin carrying the declared timeloop
// migrations.
func NewSQLPlugin() *SQLPlugin {
	return &SQLPlugin{Migrations: sqlite.Migrations()}
}

func (p *SQLPlugin) Name() string {
	return "sql"
}

func (p *SQLPlugin) Setup(a *App) error {
	dataDir := a.Config.DataDir
	if err := store.EnsureDir(dataDir); err != nil {
		return err
	}

	s := sqlite.NewWithMigrations(store.DBPath(dataDir), p.Migrations)
	if err := s.Open(); err != nil {
		return err
	}

	applied, err := s.Migrate()
	if err != nil {
		s.Close()
		return fmt.Errorf("migrate %s: %w", store.DBPath(dataDir), err)
	}

	version, err := s.SchemaVersion()
	if err != nil {
		s.Close()
		return err
	}

	a.Log.Info("store ready at %s (schema version %d, %d migrations applied)",
		store.DBPath(dataDir), version, applied)
	a.Store = s
	return nil
}
