package main

import (
	"fmt"
	"os"

	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"

	"timeloop/internal/app"
	"timeloop/internal/config"
	"timeloop/internal/logger"
	"timeloop/internal/store"
	"timeloop/internal/store/sqlite"
)

var (
	version   = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
	buildDate = ""
)

var (
	dataDir    string
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "timeloop",
		Short: "Timeloop local store bootstrap and management CLI",
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the store file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	// db command group
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Store management commands",
	}

	dbCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the store and apply all migrations",
		RunE:  runDBCreate,
	}
	dbUpgradeCmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Apply pending migrations to an existing store",
		RunE:  runDBUpgrade,
	}
	dbVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify schema structure and version",
		RunE:  runDBVerify,
	}
	dbStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show store state and migration history",
		RunE:  runDBStatus,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the timeloop version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("timeloop %s", version.String())
			if buildDate != "" {
				fmt.Printf(" (built %s)", buildDate)
			}
			fmt.Println()
		},
	}

	dbCmd.AddCommand(dbCreateCmd, dbUpgradeCmd, dbVerifyCmd, dbStatusCmd)
	rootCmd.AddCommand(dbCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the effective config: --data-dir beats the config
// file, which beats the platform default.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return cfg, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// openStore opens the store file under the configured data dir without
// creating the directory or migrating. Used by the read-only commands.
func openStore(cfg config.Config) (*sqlite.SQLiteStore, error) {
	exists, err := store.CheckExists(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("store not found at %s; run 'timeloop db create'", store.DBPath(cfg.DataDir))
	}

	s := sqlite.New(store.DBPath(cfg.DataDir))
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// runDBCreate bootstraps the application the same way process start does:
// builder, plugins, open, migrate.
func runDBCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.NewBuilder().
		WithConfig(cfg).
		WithLogger(logger.Default).
		Plugin(app.NewSQLPlugin()).
		Bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	schemaVersion, err := a.Store.SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Printf("store ready at %s (schema version %d)\n", store.DBPath(cfg.DataDir), schemaVersion)
	return nil
}

func runDBUpgrade(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	applied, err := s.Migrate()
	if err != nil {
		return err
	}

	schemaVersion, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Printf("applied %d migrations, schema version %d\n", applied, schemaVersion)
	return nil
}

func runDBVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	state, err := s.CheckState()
	if err != nil {
		return err
	}
	if state != store.StateReady {
		return fmt.Errorf("store is %s, expected %s", state, store.StateReady)
	}
	if err := s.Verify(); err != nil {
		return fmt.Errorf("schema verification failed: %w", err)
	}

	fmt.Println("store verified: schema structure and version OK")
	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	exists, err := store.CheckExists(cfg.DataDir)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Printf("store:  %s\nstate:  %s\n", store.DBPath(cfg.DataDir), store.StateMissing)
		return nil
	}

	s := sqlite.New(store.DBPath(cfg.DataDir))
	if err := s.Open(); err != nil {
		return err
	}
	defer s.Close()

	state, err := s.CheckState()
	if err != nil {
		return err
	}
	schemaVersion, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	fmt.Printf("store:  %s\n", store.DBPath(cfg.DataDir))
	fmt.Printf("state:  %s\n", state)
	fmt.Printf("schema: version %d (target %d)\n", schemaVersion, s.TargetVersion())

	history, err := s.History()
	if err != nil {
		return err
	}
	for _, m := range history {
		fmt.Printf("  %d  %s\n", m.Version, m.Description)
	}
	return nil
}
