package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SetupConfig controls the environment bootstrap sequence.
type SetupConfig struct {
	// Manifest is the dependency manifest checked before anything runs
	Manifest string `yaml:"manifest"`

	// Runtime is the interpreter the toolchain is built around
	Runtime string `yaml:"runtime"`

	// SkipUpgrade skips the best-effort package manager upgrade step
	SkipUpgrade bool `yaml:"skip_upgrade"`
}

// ReplayConfig holds defaults for session playback.
type ReplayConfig struct {
	// Cooldown is the delay before playback starts
	Cooldown time.Duration `yaml:"cooldown"`

	// Sensitivity is the mouse movement multiplier applied during playback
	Sensitivity float64 `yaml:"sensitivity"`

	// Injector selects the playback backend (noop, console)
	Injector string `yaml:"injector"`
}

// HistoryConfig controls the run-history database.
type HistoryConfig struct {
	// Enabled turns run-history recording on
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`

	// KeepDays is how long run records are retained; 0 keeps everything
	KeepDays int `yaml:"keep_days"`
}

// Config represents replaykit configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LibraryDir is the directory holding recorded sessions
	LibraryDir string `yaml:"library_dir"`

	// Setup contains environment bootstrap configuration
	Setup SetupConfig `yaml:"setup"`

	// Replay contains playback defaults
	Replay ReplayConfig `yaml:"replay"`

	// History contains run-history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
// The defaults match the recordings and install flow this tool grew up with:
// python tooling, a requirements.txt manifest, and a routes_out library.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		LibraryDir: "routes_out",
		Setup: SetupConfig{
			Manifest:    "requirements.txt",
			Runtime:     "python3",
			SkipUpgrade: false,
		},
		Replay: ReplayConfig{
			Cooldown:    3 * time.Second,
			Sensitivity: 1.0,
			Injector:    "console",
		},
		History: HistoryConfig{
			Enabled:  true,
			DBPath:   ".replaykit/history.db",
			KeepDays: 90,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations arrive as strings in YAML, so unmarshal through an
	// intermediate and merge non-zero values over the defaults.
	type yamlReplay struct {
		Cooldown    string  `yaml:"cooldown"`
		Sensitivity float64 `yaml:"sensitivity"`
		Injector    string  `yaml:"injector"`
	}
	type yamlConfig struct {
		LogLevel   string        `yaml:"log_level"`
		LibraryDir string        `yaml:"library_dir"`
		Setup      SetupConfig   `yaml:"setup"`
		Replay     yamlReplay    `yaml:"replay"`
		History    HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LibraryDir != "" {
		cfg.LibraryDir = yamlCfg.LibraryDir
	}
	if yamlCfg.Setup.Manifest != "" {
		cfg.Setup.Manifest = yamlCfg.Setup.Manifest
	}
	if yamlCfg.Setup.Runtime != "" {
		cfg.Setup.Runtime = yamlCfg.Setup.Runtime
	}
	if yamlCfg.Setup.SkipUpgrade {
		cfg.Setup.SkipUpgrade = true
	}
	if yamlCfg.Replay.Cooldown != "" {
		cooldown, err := time.ParseDuration(yamlCfg.Replay.Cooldown)
		if err != nil {
			return nil, fmt.Errorf("invalid cooldown format %q: %w", yamlCfg.Replay.Cooldown, err)
		}
		cfg.Replay.Cooldown = cooldown
	}
	if yamlCfg.Replay.Sensitivity != 0 {
		cfg.Replay.Sensitivity = yamlCfg.Replay.Sensitivity
	}
	if yamlCfg.Replay.Injector != "" {
		cfg.Replay.Injector = yamlCfg.Replay.Injector
	}

	// The history section needs presence detection: "enabled: false" is a
	// legitimate value that a plain non-zero merge would lose.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
			if _, exists := historyMap["keep_days"]; exists {
				cfg.History.KeepDays = yamlCfg.History.KeepDays
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .replaykit/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".replaykit", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values, letting flags take
// precedence over the config file.
func (c *Config) MergeWithFlags(libraryDir *string, cooldown *time.Duration, sensitivity *float64, logLevel *string) {
	if libraryDir != nil {
		c.LibraryDir = *libraryDir
	}
	if cooldown != nil {
		c.Replay.Cooldown = *cooldown
	}
	if sensitivity != nil {
		c.Replay.Sensitivity = *sensitivity
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.LibraryDir == "" {
		return fmt.Errorf("library_dir cannot be empty")
	}

	if c.Setup.Manifest == "" {
		return fmt.Errorf("setup.manifest cannot be empty")
	}
	if c.Setup.Runtime == "" {
		return fmt.Errorf("setup.runtime cannot be empty")
	}

	if c.Replay.Cooldown < 0 {
		return fmt.Errorf("replay.cooldown must be >= 0, got %v", c.Replay.Cooldown)
	}
	if c.Replay.Sensitivity <= 0 {
		return fmt.Errorf("replay.sensitivity must be > 0, got %v", c.Replay.Sensitivity)
	}
	switch c.Replay.Injector {
	case "noop", "console":
	default:
		return fmt.Errorf("invalid replay.injector %q, must be one of: noop, console", c.Replay.Injector)
	}

	if c.History.Enabled {
		if c.History.DBPath == "" {
			return fmt.Errorf("history.db_path cannot be empty when history is enabled")
		}
		if c.History.KeepDays < 0 {
			return fmt.Errorf("history.keep_days must be >= 0, got %d", c.History.KeepDays)
		}
	}

	return nil
}
