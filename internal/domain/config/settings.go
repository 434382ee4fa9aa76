// Package config loads groundwork's invocation settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the settings file looked up when --config is not given.
const DefaultFileName = "groundwork.yaml"

// Duration is a time.Duration that unmarshals from YAML strings like "5m".
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML encodes the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Settings are the durable invocation defaults. CLI flags override
// individual fields; the merged result is read-only for the rest of the
// run.
type Settings struct {
	// StateDir holds the completion markers and the run lock. It must
	// not be located on storage the provisioning steps reformat.
	StateDir string `yaml:"state_dir"`

	// LogFile is the append-only audit log. Empty disables the file tee.
	LogFile string `yaml:"log_file"`

	// SudoTimeout is the credential-cache lifetime the run assumes when
	// scheduling keep-alive refreshes.
	SudoTimeout Duration `yaml:"sudo_timeout"`

	// Phases is the default phase selection. Empty means all.
	Phases []string `yaml:"phases"`

	// NonInteractive suppresses operator prompts.
	NonInteractive bool `yaml:"non_interactive"`
}

// DefaultSettings returns the built-in defaults, rooted under the XDG
// state directory so markers survive reformatting of managed volumes.
func DefaultSettings() Settings {
	stateDir := stateHome()
	return Settings{
		StateDir:    stateDir,
		LogFile:     filepath.Join(stateDir, "groundwork.log"),
		SudoTimeout: Duration(5 * time.Minute),
	}
}

// Load reads settings from path, falling back to defaults when the file
// does not exist. Fields absent from the file keep their defaults.
func Load(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), NewConfigParseError(path, err)
	}

	if settings.StateDir == "" {
		settings.StateDir = stateHome()
	}

	return settings, nil
}

// stateHome resolves $XDG_STATE_HOME/groundwork, defaulting to
// ~/.local/state/groundwork.
func stateHome() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "groundwork")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "groundwork-state")
	}
	return filepath.Join(home, ".local", "state", "groundwork")
}
