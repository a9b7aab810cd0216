package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/lox/truckdealer/internal/config"
	"github.com/lox/truckdealer/internal/leaderboard"
)

// loadConfig reads the config file and applies flag overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if g.Storage != "" {
		cfg.Storage.Backend = g.Storage
	}
	if g.DataPath != "" {
		cfg.Storage.Path = g.DataPath
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFile != "" {
		cfg.Log.File = g.LogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           cfg.GetLogLevel(),
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "truckdealer",
	})
}

// openLogFile opens the configured log file for appending.
func openLogFile(cfg *config.Config) (*os.File, error) {
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// openStore opens the configured leaderboard backend. For sqlite the
// database lives in leaderboard.db under the storage path.
func openStore(ctx context.Context, cfg *config.Config, clock quartz.Clock) (leaderboard.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return leaderboard.NewMemoryStore(), nil
	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return leaderboard.NewSQLiteStore(ctx, filepath.Join(cfg.Storage.Path, "leaderboard.db"), clock)
	default:
		return leaderboard.NewFileStore(cfg.Storage.Path), nil
	}
}
