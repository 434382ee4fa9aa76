// Package apt provides steps for Debian package management.
package apt

import (
	"fmt"
	"strings"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
	"github.com/groundwork-cli/groundwork/internal/ports"
	"github.com/groundwork-cli/groundwork/internal/validation"
)

// UpdateStep refreshes the apt package index. The index has no reliable
// live probe, so completion is tracked by marker alone; force mode
// refreshes it again.
type UpdateStep struct {
	phase  string
	id     step.ID
	runner ports.CommandRunner
}

// NewUpdateStep creates a new UpdateStep in the given phase.
func NewUpdateStep(phase string, runner ports.CommandRunner) *UpdateStep {
	return &UpdateStep{
		phase:  phase,
		id:     step.MustNewID(phase + ":apt:update"),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *UpdateStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *UpdateStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *UpdateStep) Label() string {
	return "Refresh apt package index"
}

// Check has no live probe for index freshness.
func (s *UpdateStep) Check(_ step.RunContext) (step.Status, error) {
	return step.StatusUnknown, nil
}

// Run refreshes the package index. A missing apt toolchain is fatal:
// nothing later in the run can install anything without it.
func (s *UpdateStep) Run(ctx step.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), "sudo", "apt-get", "update")
	if err != nil {
		return step.Fatalf("apt-get is required but could not be invoked: %v", err)
	}
	if !result.Success() {
		// A stale index is survivable; installs will surface real problems.
		return fmt.Errorf("apt-get update failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// PPAStep adds a Personal Package Archive to the apt sources.
type PPAStep struct {
	phase  string
	ppa    string
	id     step.ID
	runner ports.CommandRunner
}

// NewPPAStep creates a new PPAStep in the given phase.
func NewPPAStep(phase, ppa string, runner ports.CommandRunner) *PPAStep {
	// Sanitize PPA name for the step ID (replace colon and slash)
	sanitized := strings.NewReplacer(":", "-", "/", "-").Replace(ppa)
	return &PPAStep{
		phase:  phase,
		ppa:    ppa,
		id:     step.MustNewID(phase + ":apt:ppa-" + sanitized),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *PPAStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *PPAStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *PPAStep) Label() string {
	return fmt.Sprintf("Add apt PPA %s", s.ppa)
}

// Check probes apt-cache policy for the PPA URL.
func (s *PPAStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "apt-cache", "policy")
	if err != nil {
		return step.StatusUnknown, err
	}

	ppaURL := strings.TrimPrefix(s.ppa, "ppa:")
	if strings.Contains(result.Stdout, ppaURL) {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsRun, nil
}

// Run adds the PPA. add-apt-repository is an optional convenience tool,
// so its absence only defers this step to a future run.
func (s *PPAStep) Run(ctx step.RunContext) error {
	if err := validation.ValidatePPA(s.ppa); err != nil {
		return step.Fatal(fmt.Errorf("invalid PPA: %w", err))
	}

	result, err := s.runner.Run(ctx.Context(), "sudo", "add-apt-repository", "-y", s.ppa)
	if err != nil {
		return fmt.Errorf("add-apt-repository unavailable: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("add-apt-repository %s failed: %s", s.ppa, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Package describes one apt package to install.
type Package struct {
	Name string
	// Required marks packages the rest of the run depends on; their
	// installation failures abort the run instead of deferring.
	Required bool
}

// PackageStep installs an apt package.
type PackageStep struct {
	phase  string
	pkg    Package
	id     step.ID
	runner ports.CommandRunner
}

// NewPackageStep creates a new PackageStep in the given phase.
func NewPackageStep(phase string, pkg Package, runner ports.CommandRunner) *PackageStep {
	return &PackageStep{
		phase:  phase,
		pkg:    pkg,
		id:     step.MustNewID(phase + ":apt:install-" + pkg.Name),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *PackageStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *PackageStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *PackageStep) Label() string {
	return fmt.Sprintf("Install apt package %s", s.pkg.Name)
}

// Check probes the dpkg database for an installed package.
func (s *PackageStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "dpkg-query", "-W", "-f=${db:Status-Status}", s.pkg.Name)
	if err != nil {
		return step.StatusUnknown, err
	}

	// dpkg-query exits non-zero when the package is unknown
	if !result.Success() {
		return step.StatusNeedsRun, nil
	}

	// Exact match: dpkg also reports "not-installed" and
	// "half-installed", neither of which is done.
	if result.Output() == "installed" {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsRun, nil
}

// Run installs the package. Installs are additive, so re-running after
// an interrupt is safe.
func (s *PackageStep) Run(ctx step.RunContext) error {
	if err := validation.ValidatePackageName(s.pkg.Name); err != nil {
		return step.Fatal(fmt.Errorf("invalid package name: %w", err))
	}

	result, err := s.runner.Run(ctx.Context(), "sudo", "apt-get", "install", "-y", s.pkg.Name)
	if err != nil {
		return step.Fatalf("apt-get is required but could not be invoked: %v", err)
	}
	if !result.Success() {
		failure := fmt.Errorf("apt-get install %s failed: %s", s.pkg.Name, strings.TrimSpace(result.Stderr))
		if s.pkg.Required {
			return step.Fatal(failure)
		}
		return failure
	}
	return nil
}
