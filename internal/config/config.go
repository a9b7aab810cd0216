// Package config loads the HCL configuration file for truckdealer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/truckdealer/internal/game"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config represents the complete configuration file
type Config struct {
	Game    *GameSettings    `hcl:"game,block"`
	Storage *StorageSettings `hcl:"storage,block"`
	Log     *LogSettings     `hcl:"log,block"`
}

// GameSettings holds house rule overrides. Unset attributes keep the game
// defaults.
type GameSettings struct {
	PunishmentText                    *string `hcl:"punishment_text,optional"`
	WrongStreakToChangeDealer         *int    `hcl:"wrong_streak_to_change_dealer,optional"`
	CorrectStreakForShot              *int    `hcl:"correct_streak_for_shot,optional"`
	CorrectStreakForPunishment        *int    `hcl:"correct_streak_for_punishment,optional"`
	ResetCorrectStreakAfterPunishment *bool   `hcl:"reset_correct_streak_after_punishment,optional"`
}

// StorageSettings selects where leaderboard documents live
type StorageSettings struct {
	Backend string `hcl:"backend,optional"`
	Path    string `hcl:"path,optional"`
}

// LogSettings contains logging settings
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// DefaultDataDir returns the directory used for leaderboard data when no path
// is configured.
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "truckdealer")
	}
	return ".truckdealer"
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Game: &GameSettings{},
		Storage: &StorageSettings{
			Backend: BackendFile,
			Path:    DefaultDataDir(),
		},
		Log: &LogSettings{
			Level: "warn",
			File:  "truckdealer.log",
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Game == nil {
		c.Game = defaults.Game
	}
	if c.Storage == nil {
		c.Storage = defaults.Storage
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.Path == "" && c.Storage.Backend != BackendMemory {
		c.Storage.Path = defaults.Storage.Path
	}
	if c.Log == nil {
		c.Log = defaults.Log
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = defaults.Log.File
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the %s backend", c.Storage.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

// Overrides returns the game block as START_GAME overrides.
func (c *Config) Overrides() *game.ConfigOverrides {
	if c.Game == nil {
		return nil
	}
	return &game.ConfigOverrides{
		PunishmentText:                    c.Game.PunishmentText,
		WrongStreakToChangeDealer:         c.Game.WrongStreakToChangeDealer,
		CorrectStreakForShot:              c.Game.CorrectStreakForShot,
		CorrectStreakForPunishment:        c.Game.CorrectStreakForPunishment,
		ResetCorrectStreakAfterPunishment: c.Game.ResetCorrectStreakAfterPunishment,
	}
}

// Rules returns the effective house rules.
func (c *Config) Rules() game.Config {
	return game.DefaultConfig().Apply(c.Overrides())
}

// GetLogLevel returns the parsed log level, falling back to warn.
func (c *Config) GetLogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.WarnLevel
	}
	return level
}
