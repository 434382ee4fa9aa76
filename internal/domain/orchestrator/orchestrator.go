package orchestrator

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/groundwork-cli/groundwork/internal/domain/phase"
	"github.com/groundwork-cli/groundwork/internal/domain/state"
	"github.com/groundwork-cli/groundwork/internal/domain/step"
	"github.com/groundwork-cli/groundwork/internal/ports"
	"github.com/groundwork-cli/groundwork/internal/privilege"
)

// ErrInterrupted is recorded when the operator cancels a run between
// steps. The interrupted step left no marker, so the next invocation
// retries it.
var ErrInterrupted = errors.New("run interrupted")

// Orchestrator executes registered steps in phase order, consulting the
// state store for short-circuiting and committing markers only on full,
// observed success.
type Orchestrator struct {
	store   state.Store
	session *privilege.Session
	log     ports.Logger
}

// New creates an Orchestrator.
func New(store state.Store, session *privilege.Session, log ports.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		session: session,
		log:     log,
	}
}

// Run executes all steps of the given phase groups in order. The
// returned report is always populated, even on abort; the error mirrors
// report.Err for callers that only care about disposition.
func (o *Orchestrator) Run(runCtx step.RunContext, groups []phase.Group) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
	}()

	if err := o.session.RequireElevated(runCtx.Context()); err != nil {
		o.log.Error("administrative rights check failed", ports.F("error", err))
		report.Aborted = true
		report.Err = err
		return report, err
	}

	// Scratch space is released on every exit path, including
	// signal-triggered cancellation.
	if !runCtx.DryRun() {
		scratch, err := os.MkdirTemp("", "groundwork-run-")
		if err != nil {
			report.Aborted = true
			report.Err = step.Fatalf("create scratch directory: %v", err)
			return report, report.Err
		}
		defer func() {
			_ = os.RemoveAll(scratch)
		}()
		runCtx = runCtx.WithScratchDir(scratch)
	}

	for _, group := range groups {
		o.log.Section(group.Phase.Identifier())

		// Renewed defensively at every phase boundary: one long install
		// can outlast a single credential-cache window.
		if err := o.session.Extend(runCtx.Context()); err != nil {
			o.log.Warn("could not refresh privilege session", ports.F("error", err))
		}

		for _, s := range group.Steps {
			if err := runCtx.Context().Err(); err != nil {
				o.log.Warn("run interrupted, remaining steps left pending")
				report.Aborted = true
				report.Err = fmt.Errorf("%w: %v", ErrInterrupted, err)
				return report, report.Err
			}

			record := o.executeStep(runCtx, group.Phase, s)
			report.Records = append(report.Records, record)

			if record.Outcome == OutcomeAborted {
				report.Aborted = true
				report.Err = record.Err
				return report, report.Err
			}
		}
	}

	return report, nil
}

// executeStep runs a single step through its lifecycle machine and
// classifies the result.
func (o *Orchestrator) executeStep(runCtx step.RunContext, ph phase.Phase, s step.Step) StepRecord {
	record := StepRecord{
		ID:    s.ID(),
		Phase: ph.Identifier(),
		Label: s.Label(),
	}

	life, err := newLifecycle()
	if err != nil {
		record.Outcome = OutcomeAborted
		record.Err = step.Fatalf("build step lifecycle: %v", err)
		return record
	}
	defer life.stop()

	key := s.ID().String()

	if !runCtx.Force() {
		if outcome, done := o.shortCircuit(runCtx, s, key, life); done {
			record.Outcome = outcome
			return record
		}
	}

	if runCtx.DryRun() {
		o.log.Step(s.Label(), ports.F("step", key))
		o.log.Info("dry run, body not executed")
		record.Outcome = OutcomeWouldRun
		return record
	}

	o.log.Step(s.Label(), ports.F("step", key))
	life.send(eventStart)

	start := time.Now()
	runErr := s.Run(runCtx)
	record.Duration = time.Since(start)

	switch {
	case runErr == nil:
		if err := o.store.Set(key); err != nil {
			// A completion that cannot be recorded would re-run
			// destructively next time; that makes the whole run fatal.
			life.send(eventAbort)
			o.log.Error("failed to record completion marker", ports.F("step", key), ports.F("error", err))
			record.Outcome = OutcomeAborted
			record.Err = step.Fatal(fmt.Errorf("record completion for %s: %w", key, err))
			return record
		}
		life.send(eventComplete)
		o.log.Success(s.Label(), ports.F("duration", record.Duration.Round(time.Millisecond)))
		record.Outcome = OutcomeCompleted

	case step.IsFatal(runErr):
		life.send(eventAbort)
		o.log.Error(s.Label(), ports.F("step", key), ports.F("error", runErr))
		record.Outcome = OutcomeAborted
		record.Err = runErr

	default:
		// Recoverable: no marker is set, so a future run retries it.
		life.send(eventRetry)
		o.log.Warn(s.Label(), ports.F("step", key), ports.F("error", runErr))
		record.Outcome = OutcomeRetryable
		record.Err = runErr
	}

	return record
}

// shortCircuit decides whether the step can be skipped without running
// its body. The live probe is authoritative when it disagrees with the
// marker: a marker with an unsatisfied probe re-runs the step, and a
// satisfied probe without a marker adopts one, tolerating manual
// intervention between runs.
func (o *Orchestrator) shortCircuit(runCtx step.RunContext, s step.Step, key string, life *lifecycle) (Outcome, bool) {
	probe, err := s.Check(runCtx)
	if err != nil {
		o.log.Debug("idempotency probe failed, assuming step must run",
			ports.F("step", key), ports.F("error", err))
		probe = step.StatusUnknown
	}

	hasMarker := o.store.Has(key)

	if probe.Satisfied() {
		if !hasMarker && !runCtx.DryRun() {
			if err := o.store.Set(key); err != nil {
				o.log.Warn("could not adopt completion marker", ports.F("step", key), ports.F("error", err))
			}
		}
		life.send(eventSkip)
		o.log.Info(s.Label()+": already completed, skipping", ports.F("step", key))
		return OutcomeSkipped, true
	}

	if hasMarker && probe == step.StatusUnknown {
		// Marker says done and the probe cannot contradict it.
		life.send(eventSkip)
		o.log.Info(s.Label()+": already completed, skipping", ports.F("step", key))
		return OutcomeSkipped, true
	}

	return "", false
}
