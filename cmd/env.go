package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/config"
	"github.com/abhisek/coursely/internal/logging"
	"github.com/abhisek/coursely/internal/store"
	"github.com/abhisek/coursely/internal/tracker"
)

// appEnv is everything a command needs to talk to the backend and the local
// journal.
type appEnv struct {
	cfg     *config.Config
	store   *store.Store
	client  backend.Client
	tracker *tracker.Service

	closeLog func() error
}

// loadConfig builds the configuration and applies persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return loadConfigFrom(cmd, path)
}

// loadConfigFrom is loadConfig with an explicit config file; an empty path
// means the default location.
func loadConfigFrom(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: path})
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.API.URL = v
	}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.User.ID = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then COURSELY_DB or the config file, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the local journal without requiring backend settings.
func openStore(cmd *cobra.Command) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return st, cfg, nil
}

// openEnv loads configuration, starts the log file, opens the store and
// builds the backend client.
func openEnv(cmd *cobra.Command) (*appEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	closeLog := setupLog(cfg, dbPath)

	st, err := store.Open(dbPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open store: %w", err)
	}

	client, err := backend.New(cfg.Backend(), st.EventRepo())
	if err != nil {
		st.Close()
		closeLog()
		return nil, err
	}

	slog.Info("coursely started", "command", cmd.Name(), "user", cfg.User.ID, "db", dbPath)
	return &appEnv{
		cfg:      cfg,
		store:    st,
		client:   client,
		tracker:  tracker.NewService(client, st.AttemptRepo(), st.CompletionRepo()),
		closeLog: closeLog,
	}, nil
}

// setupLog starts the diagnostic log file. Failure is reported and logging
// stays on the default handler.
func setupLog(cfg *config.Config, dbPath string) func() error {
	logPath := cfg.Log.Path
	if logPath == "" {
		logPath = logging.DefaultPath(dbPath)
	}
	closeLog, err := logging.Setup(logPath, cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Diagnostic log unavailable:", err)
		return func() error { return nil }
	}
	return closeLog
}

func (e *appEnv) Close() {
	if err := e.store.Close(); err != nil {
		slog.Warn("close store", "err", err)
	}
	_ = e.closeLog()
}

func (e *appEnv) userID() string {
	return e.cfg.User.ID
}

// cliContext labels backend calls made by a subcommand.
func cliContext(cmd *cobra.Command, origin string) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return backend.WithOrigin(ctx, origin)
}
