// Package phase groups steps into numerically ordered phases and
// resolves phase-subset selection.
package phase

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Errors for phase identifier validation.
var (
	ErrEmptyPhase   = errors.New("phase identifier cannot be empty")
	ErrInvalidPhase = errors.New("phase identifier format invalid: must be NN-name (e.g. \"05-tweaks\")")
)

// identifierPattern matches phase identifiers like "00-core" or "05-tweaks".
var identifierPattern = regexp.MustCompile(`^[0-9]{2}-[a-z0-9][a-z0-9-]*$`)

// Phase identifies a numbered group of steps. Execution order across
// phases is the ascending numeric prefix.
type Phase struct {
	number int
	name   string
}

// Parse creates a Phase from an identifier such as "01-lvm".
func Parse(identifier string) (Phase, error) {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return Phase{}, ErrEmptyPhase
	}

	if !identifierPattern.MatchString(trimmed) {
		return Phase{}, fmt.Errorf("%w: %q", ErrInvalidPhase, identifier)
	}

	number, err := strconv.Atoi(trimmed[:2])
	if err != nil {
		return Phase{}, fmt.Errorf("%w: %q", ErrInvalidPhase, identifier)
	}

	return Phase{number: number, name: trimmed[3:]}, nil
}

// MustParse creates a Phase from an identifier, panicking on error.
// Use this for compile-time known values that should never fail validation.
func MustParse(identifier string) Phase {
	p, err := Parse(identifier)
	if err != nil {
		panic("invalid phase identifier: " + identifier + ": " + err.Error())
	}
	return p
}

// Number returns the numeric prefix.
func (p Phase) Number() int {
	return p.number
}

// Name returns the phase name without the numeric prefix.
func (p Phase) Name() string {
	return p.name
}

// Identifier returns the canonical "NN-name" form.
func (p Phase) Identifier() string {
	return fmt.Sprintf("%02d-%s", p.number, p.name)
}

// String returns the identifier.
func (p Phase) String() string {
	return p.Identifier()
}

// Equals checks equality with another Phase.
func (p Phase) Equals(other Phase) bool {
	return p.number == other.number && p.name == other.name
}

// Before reports whether this phase runs before the other.
func (p Phase) Before(other Phase) bool {
	return p.number < other.number
}
