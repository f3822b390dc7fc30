package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jgoulah/callcharts/internal/config"
	"github.com/jgoulah/callcharts/internal/database"
	"github.com/jgoulah/callcharts/internal/logging"
	"github.com/jgoulah/callcharts/internal/remote"
	"github.com/jgoulah/callcharts/internal/workflow"
	"github.com/jgoulah/callcharts/pkg/models"
)

var (
	cfgFile     string
	dbPath      string
	backendName string
	verbose     bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "callcharts",
	Short: "Voice agent call analytics charts with saved custom values",
	Long: `callcharts shows two imaginary call analytics charts (voice quality over a day
and call volume per weekday) and lets you overwrite their values with your own.
Custom values are saved against your email address, either in a local SQLite
database or in a hosted Supabase table.

Run without arguments to open the interactive dashboard.`,
	SilenceUsage:      true,
	PersistentPreRunE: initLogger,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./data.db)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "chart value store: sqlite, supabase or memory (default from config, else sqlite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initLogger builds the zap logger. The dashboard owns the terminal, so it
// only logs when a log file is configured.
func initLogger(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	interactive := cmd.Name() == "callcharts" || cmd.Name() == "dashboard"
	if interactive && cfg.Log.File == "" {
		logger = zap.NewNop()
		return nil
	}

	level := cfg.GetLogLevel()
	if verbose {
		level = "debug"
	}
	file := ""
	if interactive {
		file = cfg.Log.File
	}

	logger, err = logging.New(level, file)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path
func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.GetDatabase()
}

// getBackend returns the store backend, --backend taking precedence
func getBackend(cfg *config.Config) string {
	if backendName != "" {
		return backendName
	}
	return cfg.GetBackend()
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// loadConfigFile loads the configuration file without environment
// overrides, for commands that write it back
func loadConfigFile() (*config.Config, error) {
	return config.LoadFile(getConfigPath())
}

// saveConfig saves the configuration file
func saveConfig(cfg *config.Config) error {
	return config.Save(getConfigPath(), cfg)
}

// openDB opens the database connection
func openDB(cfg *config.Config) (*database.DB, error) {
	path := getDBPath(cfg)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}

// openStore opens the configured chart value store. The returned close
// function is never nil.
func openStore(cfg *config.Config) (workflow.Store, func() error, error) {
	noop := func() error { return nil }

	switch backend := getBackend(cfg); backend {
	case config.BackendSQLite:
		db, err := openDB(cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("opening database: %w", err)
		}
		return db, db.Close, nil
	case config.BackendSupabase:
		supa := cfg.Supabase
		supa.Table = cfg.GetTable()
		store, err := remote.New(supa, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case config.BackendMemory:
		return workflow.NewMemoryStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown backend: %s (available: sqlite, supabase, memory)", backend)
	}
}

// newWorkflow creates the persistence workflow over store
func newWorkflow(cfg *config.Config, store workflow.Store, opts ...workflow.Option) *workflow.Workflow {
	base := []workflow.Option{
		workflow.WithLogger(logger),
		workflow.WithTimeout(cfg.GetStoreTimeout()),
	}
	return workflow.New(store, append(base, opts...)...)
}

// resolveEmail returns the --email flag value or the configured default
func resolveEmail(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Email
}

// workflowError turns a rejected or failed workflow operation into a command error
func workflowError(err error) error {
	var malformed *models.MalformedInputError
	switch {
	case errors.As(err, &malformed):
		return fmt.Errorf("invalid JSON: %w", err)
	case errors.Is(err, workflow.ErrInvalidEmail):
		return fmt.Errorf("%s (use --email or run login)", workflow.StatusInvalidEmail)
	default:
		return err
	}
}
