package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m0ric/replaykit/internal/bootstrap"
	"github.com/m0ric/replaykit/internal/display"
	"github.com/m0ric/replaykit/internal/hostinfo"
)

// NewDoctorCommand creates the doctor subcommand
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report toolchain and host status",
		Long: `Probe the runtime toolchain the same way setup does, without
changing anything, and print the results next to basic host facts.

Exit code: 0 when the runtime and package manager are present, 1 otherwise`,
		Args:         cobra.NoArgs,
		RunE:         runDoctor,
		SilenceUsage: true,
	}

	cmd.Flags().String("runtime", "", "Runtime interpreter to probe")

	return cmd
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runtime := cfg.Setup.Runtime
	if v, _ := cmd.Flags().GetString("runtime"); v != "" {
		runtime = v
	}

	tc := bootstrap.PythonToolchain(runtime)
	runner := bootstrap.NewExecCommandRunner("")
	out := cmd.OutOrStdout()

	checks := []display.ToolCheck{
		probe(cmd, runner, "runtime", tc.RuntimeVersion),
		probe(cmd, runner, "package manager", tc.ManagerVersion),
	}

	if err := display.Toolchain(out, checks); err != nil {
		return err
	}

	fmt.Fprintln(out)
	if err := display.HostReport(out, hostinfo.Gather()); err != nil {
		return err
	}

	var missing []string
	for _, c := range checks {
		if !c.Present {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// probe runs one version query and condenses the answer to a single line.
func probe(cmd *cobra.Command, runner bootstrap.CommandRunner, name string, versionCmd bootstrap.Command) display.ToolCheck {
	check := display.ToolCheck{Name: name, Command: versionCmd.String()}

	output, err := runner.Run(cmd.Context(), versionCmd.Name, versionCmd.Args...)
	if err != nil {
		return check
	}

	check.Present = true
	if line, _, _ := strings.Cut(strings.TrimSpace(output), "\n"); line != "" {
		check.Version = strings.TrimSpace(line)
	}
	return check
}
