package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/m0ric/replaykit/internal/config"
	"github.com/m0ric/replaykit/internal/history"
	"github.com/m0ric/replaykit/internal/logger"
	"github.com/m0ric/replaykit/internal/replay"
	"github.com/m0ric/replaykit/internal/session"
)

// NewPlayCommand creates the play subcommand
func NewPlayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <session>",
		Short: "Replay a recorded session",
		Long: `Load a session from the library and replay it through the
configured injector.

The session argument may be a library name, a file name, or a path.
Playback waits out the cooldown first so the target window can be
focused, then fires events on the recorded timeline.

Examples:
  replaykit play gather_loop
  replaykit play gather_loop --cooldown 5s --sens 0.8
  replaykit play routes_out/replay_2024-11-25_18-03-41.json --injector noop`,
		Args:         cobra.ExactArgs(1),
		RunE:         runPlay,
		SilenceUsage: true,
	}

	cmd.Flags().String("cooldown", "", "Delay before playback starts (e.g. 3s)")
	cmd.Flags().Float64("sens", 0, "Mouse sensitivity multiplier")
	cmd.Flags().Float64("speed", 1.0, "Timing multiplier (2.0 plays twice as fast)")
	cmd.Flags().String("injector", "", "Playback backend (noop, console)")

	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cooldown, err := parseDurationFlag(cmd, "cooldown")
	if err != nil {
		return err
	}
	var sensitivity *float64
	if cmd.Flags().Changed("sens") {
		v, _ := cmd.Flags().GetFloat64("sens")
		if v <= 0 {
			return fmt.Errorf("invalid --sens value %v: must be positive", v)
		}
		sensitivity = &v
	}
	cfg.MergeWithFlags(nil, cooldown, sensitivity, nil)

	speed, _ := cmd.Flags().GetFloat64("speed")
	if speed <= 0 {
		return fmt.Errorf("invalid --speed value %v: must be positive", speed)
	}

	injectorName := cfg.Replay.Injector
	if v, _ := cmd.Flags().GetString("injector"); v != "" {
		injectorName = v
	}

	log := newLogger(cfg)
	injector, err := buildInjector(injectorName, log)
	if err != nil {
		return err
	}

	library := session.NewLibrary(cfg.LibraryDir)
	path, err := library.Resolve(args[0])
	if err != nil {
		return err
	}
	rec, err := session.Load(path)
	if err != nil {
		return err
	}

	log.LogInfo(fmt.Sprintf("Playing %s: %d events over %s (cooldown %s)",
		args[0], rec.EventCount(), logger.FormatDuration(rec.Duration()),
		logger.FormatDuration(cfg.Replay.Cooldown)))

	player := replay.NewPlayer(injector)
	result, err := player.Play(cmd.Context(), rec, replay.Options{
		Cooldown:    cfg.Replay.Cooldown,
		Sensitivity: cfg.Replay.Sensitivity,
		Speed:       speed,
		OnProgress:  progressReporter(cmd.OutOrStdout(), log, rec.EventCount()),
	})

	recordPlayRun(cfg, log, args[0], result, err)

	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	log.LogSuccess(fmt.Sprintf("Played %d events in %s",
		result.Played, logger.FormatDuration(result.Duration)))
	if result.Skipped > 0 {
		log.LogWarn(fmt.Sprintf("Skipped %d events with unknown types", result.Skipped))
	}
	return nil
}

// progressReporter picks how replay progress reaches the operator: an
// in-place bar when out is a terminal, plain log lines otherwise.
func progressReporter(out io.Writer, log *logger.ConsoleLogger, total int) func(done, total int) {
	if !logger.IsTerminal(out) {
		return func(done, total int) {
			log.LogInfo(fmt.Sprintf("Progress: %d/%d events", done, total))
		}
	}

	bar := logger.NewProgressBar(total, 30, true)
	finished := false
	return func(done, total int) {
		bar.Update(done)
		if done >= total {
			// The final callback can land on the same count as the last
			// interval one.
			if !finished {
				bar.Finish(out)
				finished = true
			}
			return
		}
		bar.Draw(out)
	}
}

// buildInjector selects the playback backend by name.
func buildInjector(name string, log *logger.ConsoleLogger) (replay.Injector, error) {
	switch name {
	case "noop":
		return replay.NoopInjector{}, nil
	case "console":
		return replay.NewConsoleInjector(log), nil
	default:
		return nil, fmt.Errorf("unknown injector %q (expected noop or console)", name)
	}
}

func recordPlayRun(cfg *config.Config, log *logger.ConsoleLogger, target string, result *replay.Result, runErr error) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("Failed to open history: %v", err))
		return
	}
	defer store.Close()

	events := 0
	var dur time.Duration
	if result != nil {
		events = result.Played
		dur = result.Duration
	}
	if err := store.RecordRun(history.KindPlay, target, runErr == nil, events, dur, runErr); err != nil {
		log.LogWarn(fmt.Sprintf("Failed to record history: %v", err))
	}
}
