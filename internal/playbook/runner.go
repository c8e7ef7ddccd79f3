package playbook

import (
	"context"
	"fmt"
	"time"

	"github.com/m0ric/replaykit/internal/logger"
	"github.com/m0ric/replaykit/internal/replay"
	"github.com/m0ric/replaykit/internal/session"
)

// SessionResolver resolves a step's session reference to a file path.
type SessionResolver interface {
	Resolve(ref string) (string, error)
}

// Logger is the subset of the console logger the runner uses.
type Logger interface {
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogStep(index, total int, description string)
}

// Recorder receives the outcome of each step, typically the history store.
type Recorder interface {
	RecordRun(kind, target string, success bool, events int, duration time.Duration, runErr error) error
}

// StepResult is the outcome of one playbook step.
type StepResult struct {
	Step     Step
	Played   int
	Duration time.Duration
	Err      error
}

// Summary is the outcome of a whole playbook run.
type Summary struct {
	Name      string
	Results   []StepResult
	Completed int
	Failed    int
	Duration  time.Duration
}

// Runner executes playbooks sequentially. A failed step aborts the rest of
// the run.
type Runner struct {
	Player   *replay.Player
	Library  SessionResolver
	Logger   Logger
	History  Recorder // optional
	Defaults replay.Options
}

// Run executes every step in order and returns a summary. The returned
// error is non-nil when any step failed or the context was cancelled; the
// summary covers the steps that ran either way.
func (r *Runner) Run(ctx context.Context, pb *Playbook) (*Summary, error) {
	summary := &Summary{Name: pb.Name}
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	total := len(pb.Steps)
	for i, step := range pb.Steps {
		r.Logger.LogStep(i+1, total, fmt.Sprintf("Playing %s", step.Session))

		result := r.runStep(ctx, pb, step)
		summary.Results = append(summary.Results, result)

		if r.History != nil {
			if err := r.History.RecordRun("playbook", step.Session, result.Err == nil, result.Played, result.Duration, result.Err); err != nil {
				r.Logger.LogWarn(fmt.Sprintf("Failed to record history: %v", err))
			}
		}

		if result.Err != nil {
			summary.Failed++
			r.Logger.LogError(fmt.Sprintf("Step %d failed: %v", i+1, result.Err))
			return summary, fmt.Errorf("step %d (%s): %w", i+1, step.Session, result.Err)
		}

		summary.Completed++
		r.Logger.LogInfo(fmt.Sprintf("Step %d done: %d events in %s",
			i+1, result.Played, logger.FormatDuration(result.Duration)))
	}

	return summary, nil
}

// runStep plays one step, honoring its overrides and repeat count.
func (r *Runner) runStep(ctx context.Context, pb *Playbook, step Step) StepResult {
	result := StepResult{Step: step}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	path, err := r.Library.Resolve(step.Session)
	if err != nil {
		result.Err = err
		return result
	}

	rec, err := session.Load(path)
	if err != nil {
		result.Err = err
		return result
	}

	opts := r.stepOptions(pb, step)
	repeats := step.Repeats
	if repeats < 1 {
		repeats = 1
	}

	for n := 0; n < repeats; n++ {
		played, err := r.Player.Play(ctx, rec, opts)
		if played != nil {
			result.Played += played.Played
		}
		if err != nil {
			result.Err = err
			return result
		}
	}
	return result
}

// stepOptions layers step overrides over playbook defaults over run
// defaults.
func (r *Runner) stepOptions(pb *Playbook, step Step) replay.Options {
	opts := r.Defaults

	if pb.Cooldown > 0 {
		opts.Cooldown = pb.Cooldown
	}
	if pb.Sensitivity > 0 {
		opts.Sensitivity = pb.Sensitivity
	}
	if step.Cooldown > 0 {
		opts.Cooldown = step.Cooldown
	}
	if step.Sensitivity > 0 {
		opts.Sensitivity = step.Sensitivity
	}
	return opts
}
