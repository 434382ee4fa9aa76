package step

// Status is the outcome of a step's live idempotency probe.
type Status string

const (
	// StatusSatisfied indicates the step's desired state is already met.
	StatusSatisfied Status = "satisfied"
	// StatusNeedsRun indicates the step body must execute.
	StatusNeedsRun Status = "needs-run"
	// StatusUnknown indicates the probe could not determine live state.
	StatusUnknown Status = "unknown"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Satisfied returns true when no action is needed.
func (s Status) Satisfied() bool {
	return s == StatusSatisfied
}
