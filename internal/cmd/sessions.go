package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/m0ric/replaykit/internal/display"
	"github.com/m0ric/replaykit/internal/history"
	"github.com/m0ric/replaykit/internal/session"
	"github.com/m0ric/replaykit/internal/watch"
)

// NewSessionsCommand creates the sessions subcommand group
func NewSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect the session library and run history",
	}

	cmd.AddCommand(newSessionsListCommand())
	cmd.AddCommand(newSessionsShowCommand())
	cmd.AddCommand(newSessionsHistoryCommand())

	return cmd
}

func newSessionsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		Long: `List the sessions in the library, newest first.

With --watch the table is re-rendered whenever a session file changes,
until interrupted.`,
		Args:         cobra.NoArgs,
		RunE:         runSessionsList,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("watch", false, "Keep the listing fresh as the library changes")

	return cmd
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	library := session.NewLibrary(cfg.LibraryDir)
	out := cmd.OutOrStdout()

	render := func() error {
		summaries, err := library.List()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Fprintf(out, "No sessions in %s\n", cfg.LibraryDir)
			return nil
		}
		return display.Sessions(out, summaries)
	}

	if err := render(); err != nil {
		return err
	}

	watchFlag, _ := cmd.Flags().GetBool("watch")
	if !watchFlag {
		return nil
	}

	watcher, err := watch.NewLibraryWatcher(cfg.LibraryDir)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.LibraryDir, err)
	}
	defer watcher.Close()

	log := newLogger(cfg)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case ev := <-watcher.Events():
			fmt.Fprintf(out, "\n%s %s\n", ev.Path, ev.Op)
			if err := render(); err != nil {
				return err
			}
		case err := <-watcher.Errors():
			log.LogWarn(fmt.Sprintf("Watcher error: %v", err))
		}
	}
}

func newSessionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "show <session>",
		Short:        "Show one session's details",
		Args:         cobra.ExactArgs(1),
		RunE:         runSessionsShow,
		SilenceUsage: true,
	}
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
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

	return display.SessionDetail(cmd.OutOrStdout(), args[0], rec)
}

func newSessionsHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Long: `Show recent setup, play and playbook runs from the history
database, newest first. Prunes records older than the configured
retention on each invocation.`,
		Args:         cobra.NoArgs,
		RunE:         runSessionsHistory,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	cmd.Flags().String("kind", "", "Only show runs of one kind (setup, play, playbook)")

	return cmd
}

func runSessionsHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in configuration")
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.History.KeepDays > 0 {
		if _, err := store.Prune(time.Duration(cfg.History.KeepDays) * 24 * time.Hour); err != nil {
			newLogger(cfg).LogWarn(fmt.Sprintf("Failed to prune history: %v", err))
		}
	}

	limit, _ := cmd.Flags().GetInt("limit")
	kind, _ := cmd.Flags().GetString("kind")

	var runs []history.Run
	if kind != "" {
		runs, err = store.ByKind(kind, limit)
	} else {
		runs, err = store.Recent(limit)
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
		return nil
	}
	return display.History(cmd.OutOrStdout(), runs)
}
