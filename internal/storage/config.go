package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/bmr/internal/model"
)

// Snapshot backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config holds application configuration.
type Config struct {
	DatabasePath    string `json:"databasePath" yaml:"database_path"`
	SnapshotBackend string `json:"snapshotBackend" yaml:"snapshot_backend"`
	SnapshotPath    string `json:"snapshotPath" yaml:"snapshot_path"` // json backend only
	RootParentID    string `json:"rootParentId" yaml:"root_parent_id"`
	MaxSnapshots    int    `json:"maxSnapshots" yaml:"max_snapshots"`
	LogLevel        string `json:"logLevel" yaml:"log_level"`
	ListenAddr      string `json:"listenAddr" yaml:"listen_addr"`
}

// DefaultConfig returns the default configuration.
// Paths are left empty and resolved by ApplyDefaults.
func DefaultConfig() Config {
	return Config{
		SnapshotBackend: BackendSQLite,
		RootParentID:    model.DefaultParentID,
		MaxSnapshots:    10,
		LogLevel:        "info",
		ListenAddr:      "127.0.0.1:7420",
	}
}

// ApplyDefaults fills every missing field.
func (c *Config) ApplyDefaults() error {
	defaults := DefaultConfig()
	if c.SnapshotBackend == "" {
		c.SnapshotBackend = defaults.SnapshotBackend
	}
	if c.RootParentID == "" {
		c.RootParentID = defaults.RootParentID
	}
	if c.MaxSnapshots <= 0 {
		c.MaxSnapshots = defaults.MaxSnapshots
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.ListenAddr == "" {
		c.ListenAddr = defaults.ListenAddr
	}
	if c.DatabasePath == "" {
		path, err := DefaultSQLitePath()
		if err != nil {
			return err
		}
		c.DatabasePath = path
	}
	if c.SnapshotBackend == BackendJSON && c.SnapshotPath == "" {
		path, err := DefaultJSONPath()
		if err != nil {
			return err
		}
		c.SnapshotPath = path
	}
	if c.SnapshotBackend != BackendSQLite && c.SnapshotBackend != BackendJSON {
		return fmt.Errorf("unknown snapshot backend %q", c.SnapshotBackend)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// LoadConfig reads config from path. Files ending in .yaml or .yml are
// decoded as YAML, anything else as JSON.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			if err := config.ApplyDefaults(); err != nil {
				return nil, err
			}
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes config to path in the format its extension implies.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/bmr/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmr", "config.json"), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
