package step

import (
	"context"
	"time"
)

// RunContext carries the per-invocation execution settings into Check
// and Run. Constructed once per invocation and read-only thereafter; it
// is never persisted.
type RunContext struct {
	ctx         context.Context
	force       bool
	interactive bool
	dryRun      bool
	sudoTimeout time.Duration
	scratchDir  string
}

// NewRunContext creates a new RunContext with the given context.
func NewRunContext(ctx context.Context) RunContext {
	return RunContext{
		ctx:         ctx,
		sudoTimeout: 5 * time.Minute,
	}
}

// Context returns the underlying context.Context.
func (r RunContext) Context() context.Context {
	return r.ctx
}

// Force returns whether idempotency short-circuiting is disabled.
func (r RunContext) Force() bool {
	return r.force
}

// Interactive returns whether steps may prompt the operator.
func (r RunContext) Interactive() bool {
	return r.interactive
}

// DryRun returns whether this is a dry-run execution.
func (r RunContext) DryRun() bool {
	return r.dryRun
}

// SudoTimeout returns the credential-cache lifetime the run assumes.
func (r RunContext) SudoTimeout() time.Duration {
	return r.sudoTimeout
}

// ScratchDir returns the per-run temporary workdir. It is removed on
// every exit path, including interrupt.
func (r RunContext) ScratchDir() string {
	return r.scratchDir
}

// WithForce returns a new RunContext with the force flag set.
func (r RunContext) WithForce(force bool) RunContext {
	r.force = force
	return r
}

// WithInteractive returns a new RunContext with the interactive flag set.
func (r RunContext) WithInteractive(interactive bool) RunContext {
	r.interactive = interactive
	return r
}

// WithDryRun returns a new RunContext with the dry-run flag set.
func (r RunContext) WithDryRun(dryRun bool) RunContext {
	r.dryRun = dryRun
	return r
}

// WithSudoTimeout returns a new RunContext with the sudo timeout set.
func (r RunContext) WithSudoTimeout(d time.Duration) RunContext {
	r.sudoTimeout = d
	return r
}

// WithScratchDir returns a new RunContext with the scratch dir set.
func (r RunContext) WithScratchDir(dir string) RunContext {
	r.scratchDir = dir
	return r
}
