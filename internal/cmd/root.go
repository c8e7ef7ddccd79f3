package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/m0ric/replaykit/internal/config"
	"github.com/m0ric/replaykit/internal/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for replaykit
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replaykit",
		Short: "Record, replay and manage input macro sessions",
		Long: `Replaykit records input sessions as portable JSON files and plays
them back through a configurable injector.

It also bootstraps the runtime environment its recordings depend on:
the setup command checks the dependency manifest, verifies the runtime
and its package manager, and installs the manifest's requirements.

Configuration is loaded from .replaykit/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .replaykit/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log verbosity (trace, debug, info, warn, error)")
	cmd.PersistentFlags().String("library", "", "Session library directory")

	// Add subcommands
	cmd.AddCommand(NewSetupCommand())
	cmd.AddCommand(NewDoctorCommand())
	cmd.AddCommand(NewRecordCommand())
	cmd.AddCommand(NewPlayCommand())
	cmd.AddCommand(NewSessionsCommand())
	cmd.AddCommand(NewPlaybookCommand())
	cmd.AddCommand(NewValidateCommand())

	return cmd
}

// loadConfig loads configuration honoring the persistent flags. Flags that
// were not set leave the config file values in place.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var libraryDir, logLevel *string
	if cmd.Flags().Changed("library") {
		v, _ := cmd.Flags().GetString("library")
		libraryDir = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevel = &v
	}
	cfg.MergeWithFlags(libraryDir, nil, nil, logLevel)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the console logger for a command run.
func newLogger(cfg *config.Config) *logger.ConsoleLogger {
	return logger.NewConsoleLogger(os.Stderr, cfg.LogLevel)
}

// parseDurationFlag reads an optional duration flag into a pointer for
// config merging.
func parseDurationFlag(cmd *cobra.Command, name string) (*time.Duration, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString(name)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s value %q: %w", name, raw, err)
	}
	if d < 0 {
		return nil, fmt.Errorf("invalid --%s value %q: must not be negative", name, raw)
	}
	return &d, nil
}
