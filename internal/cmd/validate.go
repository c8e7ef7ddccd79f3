package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m0ric/replaykit/internal/bootstrap"
	"github.com/m0ric/replaykit/internal/playbook"
	"github.com/m0ric/replaykit/internal/session"
)

// NewValidateCommand creates the validate subcommand
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate session, playbook or manifest files",
		Long: `Parse session (.json), playbook (.md) and dependency manifest
(.txt) files and report problems without executing anything.

For playbooks, session references are also checked against the library.

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			library := session.NewLibrary(cfg.LibraryDir)
			return validateFiles(args, library, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
}

// validateFiles checks every file and reports per-file outcomes. A single
// invalid file fails the whole invocation.
func validateFiles(paths []string, library *session.Library, out io.Writer) error {
	failed := 0
	for _, path := range paths {
		if err := validateFile(path, library); err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
		} else {
			fmt.Fprintf(out, "✓ %s\n", path)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) invalid", failed, len(paths))
	}
	return nil
}

func validateFile(path string, library *session.Library) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		_, err := session.Load(path)
		return err
	case ".md":
		return validatePlaybook(path, library)
	case ".txt":
		return validateManifest(path)
	default:
		return fmt.Errorf("unsupported file type (expected .json, .md or .txt)")
	}
}

// validateManifest parses a dependency manifest. A manifest that exists but
// yields no requirements is treated as invalid, since installing from it
// would be a no-op.
func validateManifest(path string) error {
	reqs, err := bootstrap.ParseManifest(path)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return fmt.Errorf("manifest has no requirements")
	}
	return nil
}

func validatePlaybook(path string, library *session.Library) error {
	pb, err := playbook.NewParser().ParseFile(path)
	if err != nil {
		return err
	}

	// A playbook may carry its own library for its steps.
	if pb.Library != "" {
		library = session.NewLibrary(pb.Library)
	}

	var missing []string
	for _, step := range pb.Steps {
		if _, err := library.Resolve(step.Session); err != nil {
			missing = append(missing, step.Session)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unresolved session(s): %s", strings.Join(missing, ", "))
	}
	return nil
}
