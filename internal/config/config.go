// Package config handles application configuration
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"supertask/backend"
)

//go:embed config.sample.yaml
var sampleConfig string

// GetSampleConfig returns the embedded sample configuration content
func GetSampleConfig() string {
	return sampleConfig
}

// Color modes for ui.color
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the application configuration
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Priorities []PriorityConfig `yaml:"priorities"`
	UI         UIConfig         `yaml:"ui"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StorageConfig locates the task file and its backups
type StorageConfig struct {
	File      string `yaml:"file"`
	BackupDir string `yaml:"backup_dir"` // Relative paths resolve against the task file's directory
}

// PriorityConfig is one priority level as written in the config file
type PriorityConfig struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// UIConfig holds user interface settings
type UIConfig struct {
	Color string `yaml:"color"` // auto, always, never
}

// AnalyticsConfig holds analytics settings
type AnalyticsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	priorities := make([]PriorityConfig, 0, 3)
	for _, l := range backend.DefaultPriorities() {
		priorities = append(priorities, PriorityConfig{Key: string(l.Key), Name: l.Name, Color: l.Color})
	}
	return &Config{
		Storage: StorageConfig{
			File: filepath.Join(GetDataDir(), "tasks.json"),
		},
		Priorities: priorities,
		UI:         UIConfig{Color: ColorAuto},
		Analytics: AnalyticsConfig{
			Enabled:       false,
			Path:          filepath.Join(GetDataDir(), "analytics.db"),
			RetentionDays: 365,
		},
	}
}

// DefaultPath returns the config file location used when none is given
func DefaultPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load loads configuration from configPath, or the default XDG path if empty.
// If the file doesn't exist, the documented sample is written there first.
// Keys missing from the file keep their defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath()
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeSample(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and expands paths
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	defaults := cfg.Priorities
	cfg.Priorities = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file: %w", err)
	}

	if len(cfg.Priorities) == 0 {
		cfg.Priorities = defaults
	}
	if cfg.UI.Color == "" {
		cfg.UI.Color = ColorAuto
	}

	cfg.Storage.File = ExpandPath(cfg.Storage.File)
	cfg.Storage.BackupDir = ExpandPath(cfg.Storage.BackupDir)
	cfg.Analytics.Path = ExpandPath(cfg.Analytics.Path)

	return cfg, nil
}

// writeSample writes the embedded sample config to path
func writeSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.File) == "" {
		return errors.New("storage.file must not be empty")
	}

	seen := make(map[string]bool, len(c.Priorities))
	for i, p := range c.Priorities {
		if strings.TrimSpace(p.Key) == "" {
			return fmt.Errorf("priorities[%d]: key must not be empty", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("priorities[%d]: name must not be empty", i)
		}
		if seen[p.Key] {
			return fmt.Errorf("priorities[%d]: duplicate key %q", i, p.Key)
		}
		seen[p.Key] = true
	}
	if !seen[string(backend.DefaultPriority)] {
		return fmt.Errorf("priorities must include key %q (used for tasks without a known priority)", backend.DefaultPriority)
	}

	switch c.UI.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid ui.color: %q (must be 'auto', 'always' or 'never')", c.UI.Color)
	}

	if c.Analytics.RetentionDays < 0 {
		return fmt.Errorf("analytics.retention_days must not be negative, got %d", c.Analytics.RetentionDays)
	}
	if c.Analytics.Enabled && c.Analytics.Path == "" {
		return errors.New("analytics.path is required when analytics is enabled")
	}

	return nil
}

// PriorityTable converts the configured priorities for the backend
func (c *Config) PriorityTable() backend.PriorityTable {
	table := make(backend.PriorityTable, 0, len(c.Priorities))
	for _, p := range c.Priorities {
		table = append(table, backend.PriorityLevel{
			Key:   backend.Priority(p.Key),
			Name:  p.Name,
			Color: p.Color,
		})
	}
	return table
}

// ApplyFlags applies CLI flag overrides to the configuration
func (c *Config) ApplyFlags(file, backupDir string, verbose, noColor bool) {
	if file != "" {
		c.Storage.File = ExpandPath(file)
	}
	if backupDir != "" {
		c.Storage.BackupDir = ExpandPath(backupDir)
	}
	if verbose {
		c.Logging.Verbose = true
	}
	if noColor {
		c.UI.Color = ColorNever
	}
}

// IsAnalyticsEnabled returns the effective analytics setting
func (c *Config) IsAnalyticsEnabled() bool {
	return c.Analytics.Enabled
}

// GetAnalyticsRetentionDays returns the retention period, defaulting to 365
func (c *Config) GetAnalyticsRetentionDays() int {
	if c.Analytics.RetentionDays <= 0 {
		return 365
	}
	return c.Analytics.RetentionDays
}

// getXDGDir returns a directory path following XDG Base Directory.
// envVar is the XDG environment variable (e.g., "XDG_CONFIG_HOME").
// fallbackPath is the relative path from home (e.g., ".config").
func getXDGDir(envVar, fallbackPath string) string {
	if xdgDir := os.Getenv(envVar); xdgDir != "" {
		return filepath.Join(xdgDir, "supertask")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", fallbackPath, "supertask")
	}
	return filepath.Join(home, fallbackPath, "supertask")
}

// GetConfigDir returns the configuration directory following XDG Base Directory
func GetConfigDir() string {
	return getXDGDir("XDG_CONFIG_HOME", ".config")
}

// GetDataDir returns the data directory following XDG Base Directory
func GetDataDir() string {
	return getXDGDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
