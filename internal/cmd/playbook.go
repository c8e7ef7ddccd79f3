package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m0ric/replaykit/internal/history"
	"github.com/m0ric/replaykit/internal/logger"
	"github.com/m0ric/replaykit/internal/playbook"
	"github.com/m0ric/replaykit/internal/replay"
	"github.com/m0ric/replaykit/internal/session"
)

// NewPlaybookCommand creates the playbook subcommand
func NewPlaybookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playbook <file>",
		Short: "Run a Markdown playbook of sessions",
		Long: `Execute a playbook: a Markdown file listing sessions to replay
in order, with optional per-step repeats, sensitivity and cooldown
overrides and playbook-wide defaults in YAML frontmatter.

A failed step stops the run; the remaining steps do not execute.

Example playbook:
  ---
  cooldown: 2s
  sensitivity: 0.8
  ---

  - gather_loop (repeats: 3)
  - walk_to_bank (sensitivity: 1.2)
  - deposit`,
		Args:         cobra.ExactArgs(1),
		RunE:         runPlaybook,
		SilenceUsage: true,
	}

	cmd.Flags().String("injector", "", "Playback backend (noop, console)")

	return cmd
}

func runPlaybook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	pb, err := playbook.NewParser().ParseFile(args[0])
	if err != nil {
		return err
	}

	libraryDir := cfg.LibraryDir
	if pb.Library != "" {
		libraryDir = pb.Library
	}

	injectorName := cfg.Replay.Injector
	if v, _ := cmd.Flags().GetString("injector"); v != "" {
		injectorName = v
	}
	injector, err := buildInjector(injectorName, log)
	if err != nil {
		return err
	}

	runner := &playbook.Runner{
		Player:  replay.NewPlayer(injector),
		Library: session.NewLibrary(libraryDir),
		Logger:  log,
		Defaults: replay.Options{
			Cooldown:    cfg.Replay.Cooldown,
			Sensitivity: cfg.Replay.Sensitivity,
		},
	}

	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History.DBPath)
		if err != nil {
			log.LogWarn(fmt.Sprintf("Failed to open history: %v", err))
		} else {
			defer store.Close()
			runner.History = store
		}
	}

	summary, err := runner.Run(cmd.Context(), pb)
	if err != nil {
		return err
	}

	log.LogSuccess(fmt.Sprintf("Playbook done: %d step(s) in %s",
		summary.Completed, logger.FormatDuration(summary.Duration)))
	return nil
}
