// Package step defines the contract every provisioning step implements.
package step

// Step is an idempotent unit of provisioning work. Steps are immutable
// once registered and are created at program startup from the static
// registry.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() ID

	// Phase returns the identifier of the owning phase (e.g. "01-lvm").
	Phase() string

	// Label returns the human-readable description used for logging.
	Label() string

	// Check probes live system state to determine whether the step's
	// work is already done. It must not mutate anything.
	Check(ctx RunContext) (Status, error)

	// Run executes the step body. It must be idempotent: running twice
	// produces the same system state. A nil return means full, observed
	// success; a *FatalError aborts the whole run; any other error is a
	// recoverable failure and the step stays pending for a future
	// retry.
	Run(ctx RunContext) error
}
