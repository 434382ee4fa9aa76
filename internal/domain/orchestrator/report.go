// Package orchestrator drives phased, idempotent, crash-resumable step
// execution with persisted completion state.
package orchestrator

import (
	"time"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
)

// Outcome is the terminal disposition of one step within a run.
type Outcome string

const (
	// OutcomeCompleted means the body ran to full, observed success and
	// the completion marker was set.
	OutcomeCompleted Outcome = "completed"
	// OutcomeSkipped means the marker and live probe both confirmed the
	// step was already done, so the body never executed.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeRetryable means the body failed recoverably; no marker was
	// set and the next invocation retries the step.
	OutcomeRetryable Outcome = "retryable"
	// OutcomeAborted means the body failed fatally and the run stopped.
	OutcomeAborted Outcome = "aborted"
	// OutcomeWouldRun means a dry run determined the body would execute.
	OutcomeWouldRun Outcome = "would-run"
)

// StepRecord captures the result of one step in the run report.
type StepRecord struct {
	ID       step.ID
	Phase    string
	Label    string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Report aggregates a whole orchestrator run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Records   []StepRecord
	Aborted   bool
	// Err is the fatal error that aborted the run, if any.
	Err error
}

// Completed counts steps whose bodies ran to success.
func (r *Report) Completed() int { return r.count(OutcomeCompleted) }

// Skipped counts steps short-circuited by existing completion state.
func (r *Report) Skipped() int { return r.count(OutcomeSkipped) }

// Retryable counts steps left pending for a future invocation.
func (r *Report) Retryable() int { return r.count(OutcomeRetryable) }

// Ok reports whether the run finished without a fatal abort. Steps that
// only warned still count as a successful run.
func (r *Report) Ok() bool {
	return !r.Aborted
}

func (r *Report) count(outcome Outcome) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Outcome == outcome {
			n++
		}
	}
	return n
}
