// Package docker provides steps that relocate the Docker data root and
// bounce the daemon. Docker is an optional workload, so failures are
// recoverable.
package docker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
	"github.com/groundwork-cli/groundwork/internal/ports"
	"github.com/groundwork-cli/groundwork/internal/validation"
)

// DaemonConfigStep rewrites data-root in /etc/docker/daemon.json,
// preserving any other settings already present.
type DaemonConfigStep struct {
	phase      string
	configPath string
	dataRoot   string
	id         step.ID
	runner     ports.CommandRunner
}

// NewDaemonConfigStep creates a new DaemonConfigStep in the given phase.
func NewDaemonConfigStep(phase, configPath, dataRoot string, runner ports.CommandRunner) *DaemonConfigStep {
	return &DaemonConfigStep{
		phase:      phase,
		configPath: configPath,
		dataRoot:   dataRoot,
		id:         step.MustNewID(phase + ":docker:data-root"),
		runner:     runner,
	}
}

// ID returns the step identifier.
func (s *DaemonConfigStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *DaemonConfigStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *DaemonConfigStep) Label() string {
	return fmt.Sprintf("Point Docker data-root at %s", s.dataRoot)
}

// Check reads the live daemon configuration.
func (s *DaemonConfigStep) Check(_ step.RunContext) (step.Status, error) {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return step.StatusNeedsRun, nil
		}
		return step.StatusUnknown, err
	}

	var config map[string]interface{}
	if err := json.Unmarshal(data, &config); err != nil {
		return step.StatusNeedsRun, nil
	}

	if root, ok := config["data-root"].(string); ok && root == s.dataRoot {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsRun, nil
}

// Run merges data-root into the existing configuration. The file is
// staged in the run's scratch directory and installed with elevated
// rights, since /etc/docker is not writable by the invoking user.
func (s *DaemonConfigStep) Run(ctx step.RunContext) error {
	if err := validation.ValidatePath(s.dataRoot); err != nil {
		return step.Fatal(err)
	}

	config := make(map[string]interface{})
	if data, err := os.ReadFile(s.configPath); err == nil {
		// Keep unrelated daemon settings; a corrupt file starts fresh
		_ = json.Unmarshal(data, &config)
	}
	config["data-root"] = s.dataRoot

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("encode daemon config: %w", err)
	}

	staged := filepath.Join(ctx.ScratchDir(), "daemon.json")
	if err := os.WriteFile(staged, data, 0o644); err != nil {
		return fmt.Errorf("stage daemon config: %w", err)
	}

	result, err := s.runner.Run(ctx.Context(), "sudo", "install", "-D", "-m", "644", staged, s.configPath)
	if err != nil {
		return fmt.Errorf("install daemon config: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("install daemon config failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// RestartStep restarts a systemd unit so configuration changes take
// effect.
type RestartStep struct {
	phase  string
	unit   string
	id     step.ID
	runner ports.CommandRunner
}

// NewRestartStep creates a new RestartStep in the given phase.
func NewRestartStep(phase, unit string, runner ports.CommandRunner) *RestartStep {
	return &RestartStep{
		phase:  phase,
		unit:   unit,
		id:     step.MustNewID(phase + ":docker:restart-" + strings.TrimSuffix(unit, ".service")),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *RestartStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *RestartStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *RestartStep) Label() string {
	return fmt.Sprintf("Restart %s", s.unit)
}

// Check has no live probe: a restart is an action, not a state.
// Completion is tracked by marker within a provisioning cycle.
func (s *RestartStep) Check(_ step.RunContext) (step.Status, error) {
	return step.StatusUnknown, nil
}

// Run restarts the unit. A host without the unit leaves the step
// pending.
func (s *RestartStep) Run(ctx step.RunContext) error {
	if err := validation.ValidateUnitName(s.unit); err != nil {
		return step.Fatal(err)
	}

	result, err := s.runner.Run(ctx.Context(), "sudo", "systemctl", "restart", s.unit)
	if err != nil {
		return fmt.Errorf("systemctl unavailable: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("systemctl restart %s failed: %s", s.unit, strings.TrimSpace(result.Stderr))
	}
	return nil
}
