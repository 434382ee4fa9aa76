// Package validation provides input validation utilities to prevent
// command injection and path traversal in step bodies that shell out.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput         = errors.New("input cannot be empty")
	ErrInvalidPackageName = errors.New("invalid package name")
	ErrInvalidPPA         = errors.New("invalid PPA format")
	ErrInvalidVolumeName  = errors.New("invalid LVM volume name")
	ErrInvalidUnitName    = errors.New("invalid systemd unit name")
	ErrInvalidSchemaKey   = errors.New("invalid gsettings key")
	ErrPathTraversal      = errors.New("path traversal detected")
	ErrCommandInjection   = errors.New("potential command injection detected")
)

// Compiled regex patterns for validation (compiled once for performance).
var (
	// packageNameRegex matches valid apt package names.
	// Examples: "git", "linux-image-generic", "python3.11", "g++"
	packageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

	// ppaRegex matches valid PPA format: "ppa:owner/name" or "owner/name".
	// Examples: "ppa:deadsnakes/ppa", "git-core/ppa"
	ppaRegex = regexp.MustCompile(`^(ppa:)?[a-zA-Z0-9_-]+/[a-zA-Z0-9_-]+$`)

	// volumeNameRegex matches valid LVM VG/LV names.
	// Examples: "vg0", "data", "home-crypt"
	volumeNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

	// unitNameRegex matches systemd unit names with optional suffix.
	// Examples: "docker", "docker.service", "pipewire-pulse.socket"
	unitNameRegex = regexp.MustCompile(`^[a-zA-Z0-9:_.\\-]+(\.[a-z]+)?$`)

	// schemaKeyRegex matches gsettings schema and key tokens.
	// Examples: "org.gnome.desktop.interface", "clock-show-seconds"
	schemaKeyRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

	// shellMetaChars contains shell metacharacters that could enable injection.
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}
)

// ValidatePackageName validates an apt package name.
func ValidatePackageName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 256 {
		return fmt.Errorf("%w: name too long (max 256 characters)", ErrInvalidPackageName)
	}

	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidPackageName, name)
	}

	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, name)
	}

	return nil
}

// ValidatePPA validates an apt PPA identifier.
func ValidatePPA(ppa string) error {
	if ppa == "" {
		return ErrEmptyInput
	}

	if !ppaRegex.MatchString(ppa) {
		return fmt.Errorf("%w: %q", ErrInvalidPPA, ppa)
	}

	return nil
}

// ValidateVolumeName validates an LVM volume group or logical volume name.
func ValidateVolumeName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if !volumeNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidVolumeName, name)
	}

	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, name)
	}

	return nil
}

// ValidateUnitName validates a systemd unit name.
func ValidateUnitName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if !unitNameRegex.MatchString(name) || containsShellMeta(name) {
		return fmt.Errorf("%w: %q", ErrInvalidUnitName, name)
	}

	return nil
}

// ValidateSchemaKey validates a gsettings schema or key token.
func ValidateSchemaKey(token string) error {
	if token == "" {
		return ErrEmptyInput
	}

	if !schemaKeyRegex.MatchString(token) {
		return fmt.Errorf("%w: %q", ErrInvalidSchemaKey, token)
	}

	return nil
}

// ValidatePath rejects relative traversal and injection in paths handed
// to external tools.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: %q", ErrPathTraversal, path)
	}

	for _, meta := range []string{";", "|", "&", "`", "\n", "\r"} {
		if strings.Contains(path, meta) {
			return fmt.Errorf("%w: %q", ErrCommandInjection, path)
		}
	}

	return nil
}

// containsShellMeta checks for shell metacharacters.
func containsShellMeta(s string) bool {
	for _, meta := range shellMetaChars {
		if strings.Contains(s, meta) {
			return true
		}
	}
	return false
}
