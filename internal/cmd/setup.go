package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/m0ric/replaykit/internal/bootstrap"
	"github.com/m0ric/replaykit/internal/config"
	"github.com/m0ric/replaykit/internal/history"
	"github.com/m0ric/replaykit/internal/logger"
)

// NewSetupCommand creates the setup subcommand
func NewSetupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup [manifest]",
		Short: "Prepare the runtime environment",
		Long: `Check the dependency manifest, verify that the runtime and its
package manager are available, upgrade the package manager, and install
the manifest's requirements.

The manifest, runtime and package manager checks are hard preconditions:
a failure stops the sequence and exits non-zero. The upgrade is best
effort. A failed install is reported as a warning and does not change
the exit code, since it usually just needs elevated privileges.

Examples:
  replaykit setup
  replaykit setup requirements-dev.txt
  replaykit setup --runtime python3.12 --skip-upgrade
  replaykit setup --dry-run`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runSetup,
		SilenceUsage: true,
	}

	cmd.Flags().String("manifest", "", "Path to the dependency manifest")
	cmd.Flags().String("runtime", "", "Runtime interpreter to use")
	cmd.Flags().Bool("skip-upgrade", false, "Skip the package manager upgrade step")
	cmd.Flags().Bool("dry-run", false, "Print the commands that would run without executing them")

	return cmd
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	manifest := cfg.Setup.Manifest
	if v, _ := cmd.Flags().GetString("manifest"); v != "" {
		manifest = v
	}
	if len(args) == 1 {
		manifest = args[0]
	}

	runtime := cfg.Setup.Runtime
	if v, _ := cmd.Flags().GetString("runtime"); v != "" {
		runtime = v
	}

	skipUpgrade := cfg.Setup.SkipUpgrade
	if cmd.Flags().Changed("skip-upgrade") {
		skipUpgrade, _ = cmd.Flags().GetBool("skip-upgrade")
	}

	installer := &bootstrap.Installer{
		Runner:      bootstrap.NewExecCommandRunner(""),
		Logger:      log,
		Toolchain:   bootstrap.PythonToolchain(runtime),
		Manifest:    manifest,
		SkipUpgrade: skipUpgrade,
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		out := cmd.OutOrStdout()
		if reqs, err := bootstrap.ParseManifest(manifest); err != nil {
			fmt.Fprintf(out, "Would check manifest %s (currently: %v), then run:\n", manifest, err)
		} else {
			fmt.Fprintf(out, "Would install %d requirement(s) from %s:\n", len(reqs), manifest)
			for _, r := range reqs {
				fmt.Fprintf(out, "  %s\n", r)
			}
			fmt.Fprintln(out, "Then run:")
		}
		for _, c := range installer.Plan() {
			fmt.Fprintf(out, "  %s\n", c)
		}
		return nil
	}

	report, err := installer.Run(cmd.Context())

	recordSetupRun(cfg, log, manifest, report, err)

	return err
}

// recordSetupRun writes the setup outcome to history when enabled. History
// problems never affect the setup result.
func recordSetupRun(cfg *config.Config, log *logger.ConsoleLogger, manifest string, report *bootstrap.Report, runErr error) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("Failed to open history: %v", err))
		return
	}
	defer store.Close()

	success := runErr == nil && report != nil && report.Installed
	var duration time.Duration
	if report != nil {
		duration = report.Duration
	}
	if err := store.RecordRun(history.KindSetup, manifest, success, 0, duration, runErr); err != nil {
		log.LogWarn(fmt.Sprintf("Failed to record history: %v", err))
	}
}
