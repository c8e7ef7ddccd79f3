package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for the fatal precondition failures. Each aborts the
// sequence immediately; nothing after a failed precondition runs.
var (
	// ErrRuntimeMissing indicates the runtime interpreter could not be found.
	ErrRuntimeMissing = errors.New("runtime not found")

	// ErrManagerMissing indicates the package manager could not be found.
	ErrManagerMissing = errors.New("package manager not found")
)

// Logger receives progress and outcome messages from the installer.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogSuccess(message string)
	LogStep(index, total int, description string)
}

// StepResult holds the outcome of a single bootstrap step.
type StepResult struct {
	Name     string        // Step identifier: manifest, runtime, manager, upgrade, install
	Command  string        // Command executed (empty for the manifest check)
	Output   string        // Combined stdout/stderr
	Err      error         // Error if the step failed
	Skipped  bool          // True when the step was skipped by configuration
	Duration time.Duration // Time taken
}

// Report aggregates the results of a full bootstrap run.
type Report struct {
	Steps     []StepResult
	Installed bool // True when the install step completed successfully
	Duration  time.Duration
}

// Installer drives the bootstrap sequence: manifest check, runtime check,
// package manager check, best-effort manager upgrade, then install.
type Installer struct {
	Runner    CommandRunner
	Logger    Logger
	Toolchain Toolchain

	// Manifest is the path to the dependency manifest.
	Manifest string

	// SkipUpgrade skips the package manager upgrade step.
	SkipUpgrade bool
}

// totalSteps is the length of the sequence as reported to the operator.
const totalSteps = 5

// Plan returns the external commands the sequence would run, in order.
// The manifest existence check is filesystem-only and has no command.
func (ins *Installer) Plan() []Command {
	return []Command{
		ins.Toolchain.RuntimeVersion,
		ins.Toolchain.ManagerVersion,
		ins.Toolchain.ManagerUpgrade,
		ins.Toolchain.InstallCommand(ins.Manifest),
	}
}

// Run executes the bootstrap sequence.
//
// The three precondition failures (missing manifest, missing runtime,
// missing package manager) are fatal and returned as wrapped sentinel
// errors. An upgrade failure is logged and ignored. An install failure is
// reported as a warning but does NOT produce an error: the report's
// Installed field carries the outcome.
func (ins *Installer) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}

	// Step 1: manifest must exist before anything is attempted.
	ins.Logger.LogStep(1, totalSteps, fmt.Sprintf("Checking manifest %s", ins.Manifest))
	stepStart := time.Now()
	err := CheckManifest(ins.Manifest)
	report.Steps = append(report.Steps, StepResult{
		Name:     "manifest",
		Err:      err,
		Duration: time.Since(stepStart),
	})
	if err != nil {
		ins.Logger.LogError(fmt.Sprintf("Manifest %s not found. Run from the project root or pass --manifest.", ins.Manifest))
		report.Duration = time.Since(start)
		return report, err
	}

	// Step 2: runtime interpreter must answer a version query.
	runtime := ins.Toolchain.RuntimeVersion
	ins.Logger.LogStep(2, totalSteps, fmt.Sprintf("Checking runtime (%s)", runtime))
	result := ins.runStep(ctx, "runtime", runtime)
	report.Steps = append(report.Steps, result)
	if result.Err != nil {
		if IsNotFound(result.Err) {
			ins.Logger.LogError(fmt.Sprintf("Runtime %s is not installed. Install it and make sure it is on PATH.", runtime.Name))
		} else {
			ins.Logger.LogError(fmt.Sprintf("Runtime %s failed its version check: %v", runtime.Name, result.Err))
		}
		report.Duration = time.Since(start)
		return report, fmt.Errorf("%w: %s: %v", ErrRuntimeMissing, runtime.Name, result.Err)
	}
	if output := strings.TrimSpace(result.Output); output != "" {
		ins.Logger.LogDebug(output)
	}

	// Step 3: the package manager must answer a version query.
	manager := ins.Toolchain.ManagerVersion
	ins.Logger.LogStep(3, totalSteps, fmt.Sprintf("Checking package manager (%s)", manager))
	result = ins.runStep(ctx, "manager", manager)
	report.Steps = append(report.Steps, result)
	if result.Err != nil {
		if IsNotFound(result.Err) {
			ins.Logger.LogError(fmt.Sprintf("Package manager command could not be started (%s). Check the runtime installation.", manager))
		} else {
			ins.Logger.LogError(fmt.Sprintf("Package manager is not available (%s failed). Bootstrap it for this runtime first.", manager))
		}
		report.Duration = time.Since(start)
		return report, fmt.Errorf("%w: %s: %v", ErrManagerMissing, manager, result.Err)
	}
	if output := strings.TrimSpace(result.Output); output != "" {
		ins.Logger.LogDebug(output)
	}

	// Step 4: upgrade the package manager. Best effort, never fatal.
	upgrade := ins.Toolchain.ManagerUpgrade
	if ins.SkipUpgrade {
		ins.Logger.LogStep(4, totalSteps, "Skipping package manager upgrade")
		report.Steps = append(report.Steps, StepResult{Name: "upgrade", Command: upgrade.String(), Skipped: true})
	} else {
		ins.Logger.LogStep(4, totalSteps, fmt.Sprintf("Upgrading package manager (%s)", upgrade))
		result = ins.runStep(ctx, "upgrade", upgrade)
		report.Steps = append(report.Steps, result)
		if result.Err != nil {
			ins.Logger.LogWarn(fmt.Sprintf("Package manager upgrade failed, continuing: %v", result.Err))
		}
	}

	// Step 5: install from the manifest.
	install := ins.Toolchain.InstallCommand(ins.Manifest)
	ins.Logger.LogStep(5, totalSteps, fmt.Sprintf("Installing dependencies (%s)", install))
	result = ins.runStep(ctx, "install", install)
	report.Steps = append(report.Steps, result)
	report.Duration = time.Since(start)

	if result.Err != nil {
		ins.Logger.LogWarn(fmt.Sprintf("Dependency install failed: %v", result.Err))
		if output := strings.TrimSpace(result.Output); output != "" {
			ins.Logger.LogWarn(output)
		}
		ins.Logger.LogWarn("Try again with elevated privileges if the failure was a permission error.")
		return report, nil
	}

	report.Installed = true
	ins.Logger.LogSuccess(fmt.Sprintf("Dependencies installed from %s in %s", ins.Manifest, report.Duration.Round(time.Millisecond)))
	return report, nil
}

// runStep executes one toolchain command and times it.
func (ins *Installer) runStep(ctx context.Context, name string, cmd Command) StepResult {
	start := time.Now()
	output, err := ins.Runner.Run(ctx, cmd.Name, cmd.Args...)
	return StepResult{
		Name:     name,
		Command:  cmd.String(),
		Output:   output,
		Err:      err,
		Duration: time.Since(start),
	}
}
