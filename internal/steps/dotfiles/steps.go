// Package dotfiles provides steps that link configuration files from a
// dotfiles checkout into the home directory.
package dotfiles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
)

// SymlinkStep links target to source with ln -sf semantics: an existing
// link or file at the target is replaced.
type SymlinkStep struct {
	phase  string
	source string
	target string
	id     step.ID
}

// NewSymlinkStep creates a new SymlinkStep in the given phase.
func NewSymlinkStep(phase, source, target string) *SymlinkStep {
	sanitized := strings.Trim(strings.NewReplacer("/", "-", ".", "").Replace(target), "-")
	return &SymlinkStep{
		phase:  phase,
		source: source,
		target: target,
		id:     step.MustNewID(phase + ":dotfiles:link-" + sanitized),
	}
}

// ID returns the step identifier.
func (s *SymlinkStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *SymlinkStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *SymlinkStep) Label() string {
	return fmt.Sprintf("Link %s -> %s", s.target, s.source)
}

// Check reads the live link. Satisfied only when the target is a
// symlink already pointing at the source.
func (s *SymlinkStep) Check(_ step.RunContext) (step.Status, error) {
	dest, err := os.Readlink(s.target)
	if err != nil {
		if os.IsNotExist(err) {
			return step.StatusNeedsRun, nil
		}
		// Exists but is not a symlink
		return step.StatusNeedsRun, nil
	}
	if dest == s.source {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsRun, nil
}

// Run replaces whatever is at the target with a link to the source. A
// missing source defers the step: the dotfiles checkout may simply not
// have happened yet.
func (s *SymlinkStep) Run(_ step.RunContext) error {
	if _, err := os.Stat(s.source); err != nil {
		return fmt.Errorf("link source unavailable: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.target), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	if err := os.Remove(s.target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace existing target: %w", err)
	}

	if err := os.Symlink(s.source, s.target); err != nil {
		return fmt.Errorf("create symlink: %w", err)
	}
	return nil
}
