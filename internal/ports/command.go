// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"strings"
)

// CommandResult represents the result of executing a shell command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Output returns stdout with surrounding whitespace trimmed.
func (r CommandResult) Output() string {
	return strings.TrimSpace(r.Stdout)
}

// CommandCall records a command invocation, for test fakes.
type CommandCall struct {
	Command string
	Args    []string
}

// CommandRunner executes external commands. Step bodies never shell out
// directly; every package-manager, volume-manager and service call goes
// through this boundary so its result can be observed and classified.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
}
