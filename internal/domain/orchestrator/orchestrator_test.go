package orchestrator

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/groundwork-cli/groundwork/internal/adapters/logging"
	"github.com/groundwork-cli/groundwork/internal/domain/phase"
	"github.com/groundwork-cli/groundwork/internal/domain/state"
	"github.com/groundwork-cli/groundwork/internal/domain/step"
	"github.com/groundwork-cli/groundwork/internal/ports"
	"github.com/groundwork-cli/groundwork/internal/privilege"
	"github.com/groundwork-cli/groundwork/internal/testutil/mocks"
)

// fakeStep is a scripted step for orchestrator tests.
type fakeStep struct {
	id       step.ID
	phase    string
	status   step.Status
	checkErr error
	runErr   error
	runs     int
	onRun    func(step.RunContext)
}

func newFakeStep(phase, name string) *fakeStep {
	return &fakeStep{
		id:     step.MustNewID(phase + ":" + name),
		phase:  phase,
		status: step.StatusUnknown,
	}
}

func (s *fakeStep) ID() step.ID   { return s.id }
func (s *fakeStep) Phase() string { return s.phase }
func (s *fakeStep) Label() string { return s.id.String() }

func (s *fakeStep) Check(step.RunContext) (step.Status, error) {
	return s.status, s.checkErr
}

func (s *fakeStep) Run(ctx step.RunContext) error {
	s.runs++
	if s.onRun != nil {
		s.onRun(ctx)
	}
	return s.runErr
}

func rootSession() *privilege.Session {
	return privilege.NewSession(nil, privilege.WithEUID(func() int { return 0 }))
}

func groupOf(t *testing.T, identifier string, steps ...step.Step) []phase.Group {
	t.Helper()

	r := phase.NewRegistry()
	if err := r.Register(phase.MustParse(identifier), steps...); err != nil {
		t.Fatalf("register %s: %v", identifier, err)
	}
	return r.All()
}

func runOrchestrator(t *testing.T, store state.Store, groups []phase.Group, opts ...func(step.RunContext) step.RunContext) *Report {
	t.Helper()

	runCtx := step.NewRunContext(context.Background())
	for _, opt := range opts {
		runCtx = opt(runCtx)
	}

	orch := New(store, rootSession(), logging.NewNopLogger())
	report, _ := orch.Run(runCtx, groups)
	return report
}

func TestRunCompletesFreshSteps(t *testing.T) {
	store := state.NewMemoryStore()
	a := newFakeStep("00-core", "a")
	b := newFakeStep("00-core", "b")

	report := runOrchestrator(t, store, groupOf(t, "00-core", a, b))

	if !report.Ok() {
		t.Fatalf("run should succeed, got error %v", report.Err)
	}
	if report.Completed() != 2 {
		t.Errorf("Completed() = %d, want 2", report.Completed())
	}
	if a.runs != 1 || b.runs != 1 {
		t.Errorf("each body should run once, got a=%d b=%d", a.runs, b.runs)
	}
	for _, s := range []*fakeStep{a, b} {
		if !store.Has(s.ID().String()) {
			t.Errorf("marker missing for %s", s.ID())
		}
	}
	if report.RunID == "" {
		t.Error("report should carry a run ID")
	}
}

func TestSecondRunSkipsCompletedSteps(t *testing.T) {
	store := state.NewMemoryStore()
	a := newFakeStep("00-core", "a")
	b := newFakeStep("00-core", "b")
	groups := groupOf(t, "00-core", a, b)

	runOrchestrator(t, store, groups)
	report := runOrchestrator(t, store, groups)

	if report.Skipped() != 2 {
		t.Errorf("Skipped() = %d, want 2", report.Skipped())
	}
	if a.runs != 1 || b.runs != 1 {
		t.Errorf("bodies must not re-run, got a=%d b=%d", a.runs, b.runs)
	}
}

func TestPrePopulatedMarkersExecuteNoBodies(t *testing.T) {
	store := state.NewMemoryStore()
	a := newFakeStep("00-core", "a")
	b := newFakeStep("00-core", "b")
	for _, s := range []*fakeStep{a, b} {
		if err := store.Set(s.ID().String()); err != nil {
			t.Fatalf("seed marker: %v", err)
		}
	}

	report := runOrchestrator(t, store, groupOf(t, "00-core", a, b))

	if a.runs != 0 || b.runs != 0 {
		t.Errorf("no body should execute, got a=%d b=%d", a.runs, b.runs)
	}
	if !report.Ok() || report.Skipped() != 2 {
		t.Errorf("report = %d skipped, aborted=%v; want 2 skipped, ok", report.Skipped(), report.Aborted)
	}
}

func TestForceReRunsCompletedSteps(t *testing.T) {
	store := state.NewMemoryStore()
	a := newFakeStep("00-core", "a")
	a.status = step.StatusSatisfied
	if err := store.Set(a.ID().String()); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	report := runOrchestrator(t, store, groupOf(t, "00-core", a),
		func(rc step.RunContext) step.RunContext { return rc.WithForce(true) })

	if a.runs != 1 {
		t.Errorf("force must execute the body, runs = %d", a.runs)
	}
	if report.Completed() != 1 {
		t.Errorf("Completed() = %d, want 1", report.Completed())
	}
}

func TestFatalFailureAbortsRun(t *testing.T) {
	store := state.NewMemoryStore()
	a := newFakeStep("00-core", "a")
	bad := newFakeStep("00-core", "bad")
	bad.runErr = step.Fatalf("volume group missing")
	after := newFakeStep("00-core", "after")

	report := runOrchestrator(t, store, groupOf(t, "00-core", a, bad, after))

	if !report.Aborted {
		t.Fatal("fatal failure must abort the run")
	}
	if report.Err == nil || !step.IsFatal(report.Err) {
		t.Errorf("report error = %v, want fatal", report.Err)
	}
	if after.runs != 0 {
		t.Error("steps after a fatal failure must not execute")
	}
	if store.Has(bad.ID().String()) {
		t.Error("a failed step must not get a marker")
	}
	if !store.Has(a.ID().String()) {
		t.Error("steps completed before the abort keep their markers")
	}
}

func TestFatalAbortSkipsLaterPhases(t *testing.T) {
	store := state.NewMemoryStore()
	bad := newFakeStep("00-core", "bad")
	bad.runErr = step.Fatalf("missing toolchain")
	later := newFakeStep("01-lvm", "volumes")

	r := phase.NewRegistry()
	if err := r.Register(phase.MustParse(bad.Phase()), bad); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(phase.MustParse(later.Phase()), later); err != nil {
		t.Fatalf("register: %v", err)
	}

	report := runOrchestrator(t, store, r.All())

	if !report.Aborted {
		t.Fatal("run should abort")
	}
	if later.runs != 0 {
		t.Error("later phases must not execute after an abort")
	}
}

func TestRecoverableFailureContinuesRun(t *testing.T) {
	store := state.NewMemoryStore()
	flaky := newFakeStep("00-core", "flaky")
	flaky.runErr = errors.New("network hiccup")
	after := newFakeStep("00-core", "after")

	report := runOrchestrator(t, store, groupOf(t, "00-core", flaky, after))

	if !report.Ok() {
		t.Fatalf("recoverable failure should not abort, got %v", report.Err)
	}
	if report.Retryable() != 1 || report.Completed() != 1 {
		t.Errorf("report = %d retryable %d completed, want 1 and 1", report.Retryable(), report.Completed())
	}
	if after.runs != 1 {
		t.Error("steps after a recoverable failure must still run")
	}
	if store.Has(flaky.ID().String()) {
		t.Error("a recoverable failure must not get a marker")
	}
}

func TestRetryableStepRunsNextInvocation(t *testing.T) {
	store := state.NewMemoryStore()
	flaky := newFakeStep("00-core", "flaky")
	flaky.runErr = errors.New("mirror down")
	groups := groupOf(t, "00-core", flaky)

	runOrchestrator(t, store, groups)

	flaky.runErr = nil
	report := runOrchestrator(t, store, groups)

	if flaky.runs != 2 {
		t.Errorf("pending step should retry, runs = %d", flaky.runs)
	}
	if report.Completed() != 1 {
		t.Errorf("Completed() = %d, want 1", report.Completed())
	}
	if !store.Has(flaky.ID().String()) {
		t.Error("retried success should record a marker")
	}
}

func TestSatisfiedProbeAdoptsMarker(t *testing.T) {
	store := state.NewMemoryStore()
	s := newFakeStep("00-core", "handmade")
	s.status = step.StatusSatisfied

	report := runOrchestrator(t, store, groupOf(t, "00-core", s))

	if s.runs != 0 {
		t.Error("a satisfied probe must skip the body")
	}
	if report.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", report.Skipped())
	}
	if !store.Has(s.ID().String()) {
		t.Error("a satisfied probe without a marker should adopt one")
	}
}

func TestNeedsRunProbeOverridesMarker(t *testing.T) {
	store := state.NewMemoryStore()
	s := newFakeStep("00-core", "unmounted")
	s.status = step.StatusNeedsRun
	if err := store.Set(s.ID().String()); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	report := runOrchestrator(t, store, groupOf(t, "00-core", s))

	if s.runs != 1 {
		t.Error("an unsatisfied probe must re-run the body despite the marker")
	}
	if report.Completed() != 1 {
		t.Errorf("Completed() = %d, want 1", report.Completed())
	}
}

func TestProbeErrorFallsBackToMarker(t *testing.T) {
	store := state.NewMemoryStore()
	s := newFakeStep("00-core", "probeless")
	s.checkErr = errors.New("probe tooling missing")
	if err := store.Set(s.ID().String()); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	report := runOrchestrator(t, store, groupOf(t, "00-core", s))

	if s.runs != 0 {
		t.Error("a failed probe with a marker should skip")
	}
	if report.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", report.Skipped())
	}
}

func TestDryRunExecutesNoBodies(t *testing.T) {
	store := state.NewMemoryStore()
	a := newFakeStep("00-core", "a")
	done := newFakeStep("00-core", "done")
	done.status = step.StatusSatisfied

	report := runOrchestrator(t, store, groupOf(t, "00-core", a, done),
		func(rc step.RunContext) step.RunContext { return rc.WithDryRun(true) })

	if a.runs != 0 {
		t.Error("dry run must not execute bodies")
	}
	if store.Has(a.ID().String()) {
		t.Error("dry run must not record markers")
	}
	if store.Has(done.ID().String()) {
		t.Error("dry run must not adopt markers")
	}
	if report.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", report.Skipped())
	}

	wouldRun := 0
	for _, rec := range report.Records {
		if rec.Outcome == OutcomeWouldRun {
			wouldRun++
		}
	}
	if wouldRun != 1 {
		t.Errorf("would-run records = %d, want 1", wouldRun)
	}
}

func TestMarkerWriteFailureIsFatal(t *testing.T) {
	store := state.NewMemoryStore()
	store.FailWrites()
	a := newFakeStep("00-core", "a")

	report := runOrchestrator(t, store, groupOf(t, "00-core", a))

	if !report.Aborted {
		t.Fatal("an unrecordable completion must abort the run")
	}
	if !errors.Is(report.Err, state.ErrUnwritable) {
		t.Errorf("report error = %v, want ErrUnwritable in chain", report.Err)
	}
}

func TestInterruptStopsBetweenSteps(t *testing.T) {
	store := state.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	first := newFakeStep("00-core", "first")
	first.onRun = func(step.RunContext) { cancel() }
	second := newFakeStep("00-core", "second")

	orch := New(store, rootSession(), logging.NewNopLogger())
	report, err := orch.Run(step.NewRunContext(ctx), groupOf(t, "00-core", first, second))

	if !report.Aborted {
		t.Fatal("interrupt must abort the run")
	}
	if !errors.Is(err, ErrInterrupted) {
		t.Errorf("error = %v, want ErrInterrupted", err)
	}
	if second.runs != 0 {
		t.Error("steps after the interrupt must stay pending")
	}
	if !store.Has(first.ID().String()) {
		t.Error("the step that finished before the interrupt keeps its marker")
	}
}

func TestElevationFailureAbortsBeforeAnyStep(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"-v"}, ports.CommandResult{ExitCode: 1, Stderr: "denied"})
	session := privilege.NewSession(runner, privilege.WithEUID(func() int { return 1000 }))

	store := state.NewMemoryStore()
	a := newFakeStep("00-core", "a")

	orch := New(store, session, logging.NewNopLogger())
	report, err := orch.Run(step.NewRunContext(context.Background()), groupOf(t, "00-core", a))

	if !report.Aborted {
		t.Fatal("failed elevation must abort the run")
	}
	if !step.IsFatal(err) {
		t.Errorf("error = %v, want fatal", err)
	}
	if a.runs != 0 {
		t.Error("no step may execute without elevation")
	}
}

func TestScratchDirProvidedAndCleaned(t *testing.T) {
	store := state.NewMemoryStore()
	var scratch string
	s := newFakeStep("00-core", "stager")
	s.onRun = func(rc step.RunContext) { scratch = rc.ScratchDir() }

	runOrchestrator(t, store, groupOf(t, "00-core", s))

	if scratch == "" {
		t.Fatal("step bodies should receive a scratch directory")
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("scratch directory should be removed after the run, stat err = %v", err)
	}
}
