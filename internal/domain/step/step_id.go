package step

import (
	"errors"
	"regexp"
	"strings"
)

// ID uniquely identifies a step across the whole registry. IDs follow
// the phase:provider:substep convention ("04-apps:apt:install-docker.io")
// and the string form doubles as the completion-marker key, so the
// accepted alphabet is whatever survives the marker filename flattening:
// letters, digits, dots, hyphens, underscores and slashes, in
// colon-separated segments. Dots matter here because Debian package
// names carry them (docker.io, python3.11).
type ID struct {
	value string
}

// Errors for ID validation.
var (
	ErrEmptyID   = errors.New("step ID cannot be empty")
	ErrInvalidID = errors.New("step ID format invalid: colon-separated segments of letters, digits, dots, hyphens, underscores or slashes")
)

// Segments must start with a letter or digit so IDs can never be
// mistaken for flags or dotfiles when they reach the filesystem.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*(?::[a-zA-Z0-9][a-zA-Z0-9._/-]*)*$`)

// NewID creates an ID from its string form.
func NewID(value string) (ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ID{}, ErrEmptyID
	}

	if !idPattern.MatchString(trimmed) {
		return ID{}, ErrInvalidID
	}

	return ID{value: trimmed}, nil
}

// MustNewID creates an ID, panicking on error. For IDs composed at
// registry-construction time, where an invalid ID is a programming
// error.
func MustNewID(value string) ID {
	id, err := NewID(value)
	if err != nil {
		panic("invalid step ID: " + value + ": " + err.Error())
	}
	return id
}

// String returns the string form, which is also the marker key.
func (id ID) String() string {
	return id.value
}

// Equals checks equality with another ID.
func (id ID) Equals(other ID) bool {
	return id.value == other.value
}

// IsZero returns true if this is a zero-value ID.
func (id ID) IsZero() bool {
	return id.value == ""
}
