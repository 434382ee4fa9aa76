package orchestrator

import (
	"github.com/felixgeelhaar/statekit"
)

// Per-step lifecycle states. Completed is terminal and persists across
// invocations through the state store; a retryable failure returns the
// step to pending so the next invocation picks it up again; aborted
// never persists; the next invocation starts the step fresh.
const (
	statePending   = "pending"
	stateRunning   = "running"
	stateCompleted = "completed"
	stateAborted   = "aborted"
)

// Lifecycle events.
const (
	eventStart    = "START"
	eventSkip     = "SKIP"
	eventComplete = "COMPLETE"
	eventRetry    = "RETRY"
	eventAbort    = "ABORT"
)

// lifecycleContext carries per-step bookkeeping through the machine.
type lifecycleContext struct {
	LastError error
}

// lifecycle wraps the statekit interpreter for a single step execution.
type lifecycle struct {
	interp *statekit.Interpreter[lifecycleContext]
}

// newLifecycle constructs the per-step state machine.
func newLifecycle() (*lifecycle, error) {
	machine, err := statekit.NewMachine[lifecycleContext]("groundwork-step").
		WithInitial(statePending).
		WithContext(lifecycleContext{}).
		State(statePending).
		On(eventStart).Target(stateRunning).
		On(eventSkip).Target(stateCompleted).Done().
		State(stateRunning).
		On(eventComplete).Target(stateCompleted).
		On(eventRetry).Target(statePending).
		On(eventAbort).Target(stateAborted).Done().
		State(stateCompleted).Done().
		State(stateAborted).Done().
		Build()
	if err != nil {
		return nil, err
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &lifecycle{interp: interp}, nil
}

// send fires a lifecycle event.
func (l *lifecycle) send(event string) {
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

// state returns the current lifecycle state value.
func (l *lifecycle) state() string {
	return string(l.interp.State().Value)
}

// stop halts the interpreter.
func (l *lifecycle) stop() {
	l.interp.Stop()
}
