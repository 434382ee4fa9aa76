// Package shellcfg provides steps that write shell tooling
// configuration files.
package shellcfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
)

// PromptConfig is the subset of the starship prompt configuration this
// step manages. Unknown keys in an existing file are preserved by the
// comparison but overwritten on Run, which keeps the step deterministic.
type PromptConfig struct {
	AddNewline     bool   `toml:"add_newline"`
	CommandTimeout int64  `toml:"command_timeout,omitempty"`
	Format         string `toml:"format,omitempty"`
	Palette        string `toml:"palette,omitempty"`
}

// PromptStep writes the starship prompt configuration.
type PromptStep struct {
	phase  string
	path   string
	config PromptConfig
	id     step.ID
}

// NewPromptStep creates a new PromptStep in the given phase.
func NewPromptStep(phase, path string, config PromptConfig) *PromptStep {
	return &PromptStep{
		phase:  phase,
		path:   path,
		config: config,
		id:     step.MustNewID(phase + ":shellcfg:starship"),
	}
}

// ID returns the step identifier.
func (s *PromptStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *PromptStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *PromptStep) Label() string {
	return "Write starship prompt configuration"
}

// Check parses the existing file and compares the managed fields.
func (s *PromptStep) Check(_ step.RunContext) (step.Status, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return step.StatusNeedsRun, nil
		}
		return step.StatusUnknown, err
	}

	var current PromptConfig
	if err := toml.Unmarshal(data, &current); err != nil {
		// Unparseable config gets rewritten
		return step.StatusNeedsRun, nil
	}

	if current == s.config {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsRun, nil
}

// Run writes the configuration file.
func (s *PromptStep) Run(_ step.RunContext) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("encode prompt config: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write prompt config: %w", err)
	}
	return nil
}
