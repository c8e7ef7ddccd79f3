// Package bootstrap verifies and prepares the external toolchain the macro
// tooling depends on: a dependency manifest, a runtime interpreter, and the
// runtime's package manager. The sequence is strictly ordered and each step
// delegates to the real tools through a CommandRunner.
package bootstrap

import (
	"context"
	"errors"
	"os/exec"
)

// CommandRunner abstracts external command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (output string, err error)
}

// ExecCommandRunner executes real commands and returns combined stdout/stderr.
type ExecCommandRunner struct {
	WorkDir string // Working directory for commands (empty = current dir)
}

// NewExecCommandRunner creates a CommandRunner that executes real commands.
func NewExecCommandRunner(workDir string) *ExecCommandRunner {
	return &ExecCommandRunner{WorkDir: workDir}
}

// Run executes the named command and returns combined stdout/stderr.
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.WorkDir != "" {
		cmd.Dir = r.WorkDir
	}

	output, err := cmd.CombinedOutput()
	return string(output), err
}

// IsNotFound reports whether an error from a CommandRunner means the binary
// itself could not be located, as opposed to the tool running and failing.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
