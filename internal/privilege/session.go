// Package privilege verifies elevated rights and keeps the sudo
// credential cache warm for long-running phase runs.
package privilege

import (
	"context"
	"fmt"
	"os"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
	"github.com/groundwork-cli/groundwork/internal/ports"
)

// Session is the explicit privilege handle passed to the orchestrator.
// Elevation is never mutated ambiently; the orchestrator calls Extend
// at every phase boundary because a single credential-cache window can
// be outlived by one long package install.
type Session struct {
	runner ports.CommandRunner
	euid   func() int
}

// Option configures a Session.
type Option func(*Session)

// WithEUID overrides effective-uid detection, for tests.
func WithEUID(fn func() int) Option {
	return func(s *Session) {
		s.euid = fn
	}
}

// NewSession creates a Session using the given command runner.
func NewSession(runner ports.CommandRunner, opts ...Option) *Session {
	s := &Session{
		runner: runner,
		euid:   os.Geteuid,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Elevated reports whether the process already runs as root.
func (s *Session) Elevated() bool {
	return s.euid() == 0
}

// RequireElevated verifies the invoking principal can obtain
// administrative rights, prompting through sudo when necessary. Failure
// is fatal: nothing in a run may execute without elevation.
func (s *Session) RequireElevated(ctx context.Context) error {
	if s.Elevated() {
		return nil
	}

	result, err := s.runner.Run(ctx, "sudo", "-v")
	if err != nil {
		return step.Fatalf("sudo is required but could not be invoked: %v", err)
	}
	if !result.Success() {
		return step.Fatal(fmt.Errorf("administrative rights are required: sudo validation failed: %s", result.Stderr))
	}
	return nil
}

// Extend refreshes the cached sudo credential so a multi-minute phase
// does not re-prompt mid-execution. A no-op when already root.
func (s *Session) Extend(ctx context.Context) error {
	if s.Elevated() {
		return nil
	}

	result, err := s.runner.Run(ctx, "sudo", "-n", "-v")
	if err != nil {
		return fmt.Errorf("refresh sudo credential: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("refresh sudo credential: %s", result.Stderr)
	}
	return nil
}
