// Package desktop provides steps for desktop-environment configuration:
// application launcher entries and GNOME settings keys. Everything here
// is optional polish, so failures are recoverable.
package desktop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
	"github.com/groundwork-cli/groundwork/internal/ports"
	"github.com/groundwork-cli/groundwork/internal/validation"
)

// Entry describes a freedesktop.org application launcher entry.
type Entry struct {
	Name       string
	Exec       string
	Icon       string
	Categories string
	Terminal   bool
}

// EntryStep writes a .desktop launcher file.
type EntryStep struct {
	phase string
	path  string
	entry Entry
	id    step.ID
}

// NewEntryStep creates a new EntryStep in the given phase.
func NewEntryStep(phase, path string, entry Entry) *EntryStep {
	base := strings.TrimSuffix(filepath.Base(path), ".desktop")
	return &EntryStep{
		phase: phase,
		path:  path,
		entry: entry,
		id:    step.MustNewID(phase + ":desktop:entry-" + base),
	}
}

// ID returns the step identifier.
func (s *EntryStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *EntryStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *EntryStep) Label() string {
	return fmt.Sprintf("Write launcher entry %s", s.entry.Name)
}

// Check parses the existing file and compares the fields that matter.
func (s *EntryStep) Check(_ step.RunContext) (step.Status, error) {
	cfg, err := ini.Load(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return step.StatusNeedsRun, nil
		}
		return step.StatusUnknown, err
	}

	section := cfg.Section("Desktop Entry")
	if section.Key("Name").String() == s.entry.Name &&
		section.Key("Exec").String() == s.entry.Exec &&
		section.Key("Icon").String() == s.entry.Icon {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsRun, nil
}

// Run writes the launcher entry.
func (s *EntryStep) Run(_ step.RunContext) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create applications directory: %w", err)
	}

	cfg := ini.Empty()
	section := cfg.Section("Desktop Entry")
	section.Key("Type").SetValue("Application")
	section.Key("Name").SetValue(s.entry.Name)
	section.Key("Exec").SetValue(s.entry.Exec)
	if s.entry.Icon != "" {
		section.Key("Icon").SetValue(s.entry.Icon)
	}
	if s.entry.Categories != "" {
		section.Key("Categories").SetValue(s.entry.Categories)
	}
	section.Key("Terminal").SetValue(fmt.Sprintf("%t", s.entry.Terminal))

	if err := cfg.SaveTo(s.path); err != nil {
		return fmt.Errorf("write launcher entry: %w", err)
	}
	return nil
}

// GSettingsStep sets one GNOME settings key.
type GSettingsStep struct {
	phase  string
	schema string
	key    string
	value  string
	id     step.ID
	runner ports.CommandRunner
}

// NewGSettingsStep creates a new GSettingsStep in the given phase.
func NewGSettingsStep(phase, schema, key, value string, runner ports.CommandRunner) *GSettingsStep {
	return &GSettingsStep{
		phase:  phase,
		schema: schema,
		key:    key,
		value:  value,
		id:     step.MustNewID(phase + ":desktop:gsettings-" + key),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *GSettingsStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *GSettingsStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *GSettingsStep) Label() string {
	return fmt.Sprintf("Set %s %s", s.schema, s.key)
}

// Check reads the live key value.
func (s *GSettingsStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "gsettings", "get", s.schema, s.key)
	if err != nil {
		return step.StatusUnknown, err
	}
	if !result.Success() {
		return step.StatusUnknown, nil
	}
	if result.Output() == s.value {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsRun, nil
}

// Run sets the key. A host without the schema (different desktop, no
// GNOME at all) just leaves the step pending.
func (s *GSettingsStep) Run(ctx step.RunContext) error {
	if err := validation.ValidateSchemaKey(s.schema); err != nil {
		return step.Fatal(err)
	}
	if err := validation.ValidateSchemaKey(s.key); err != nil {
		return step.Fatal(err)
	}

	result, err := s.runner.Run(ctx.Context(), "gsettings", "set", s.schema, s.key, s.value)
	if err != nil {
		return fmt.Errorf("gsettings unavailable: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("gsettings set %s %s failed: %s", s.schema, s.key, strings.TrimSpace(result.Stderr))
	}
	return nil
}
