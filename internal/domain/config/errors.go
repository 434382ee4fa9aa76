package config

import (
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound  = "CONFIG_NOT_FOUND"
	ErrCodeConfigParse     = "CONFIG_PARSE"
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodePhaseUnknown    = "PHASE_UNKNOWN"
	ErrCodePhaseSelection  = "PHASE_SELECTION_INVALID"
	ErrCodeStateUnwritable = "STATE_UNWRITABLE"
	ErrCodePrivilege       = "PRIVILEGE_REQUIRED"
	ErrCodeRunLocked       = "RUN_LOCKED"
)

// UserError represents a user-friendly error with actionable suggestions.
type UserError struct {
	Code       string // Error code for categorization (e.g., "CONFIG_PARSE")
	Message    string // User-friendly error message
	Context    string // File path or other location context
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)

	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}

	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewConfigParseError creates an error for an unreadable settings file.
func NewConfigParseError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "settings file could not be parsed",
		Context:    path,
		Suggestion: "Check the YAML syntax. Run with --verbose for the underlying parser error.",
		Underlying: err,
	}
}

// NewPhaseSelectionError creates an error for a bad --phase selector.
func NewPhaseSelectionError(err error) *UserError {
	return &UserError{
		Code:       ErrCodePhaseSelection,
		Message:    "invalid phase selection",
		Suggestion: "Use 'groundwork phases' to list registered phase identifiers.",
		Underlying: err,
	}
}

// NewStateUnwritableError creates an error for an unwritable state dir.
func NewStateUnwritableError(dir string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeStateUnwritable,
		Message:    "state directory is not writable",
		Context:    dir,
		Suggestion: "Completion markers must persist between runs. Point --state-dir at a writable location outside any volume being re-provisioned.",
		Underlying: err,
	}
}

// NewRunLockedError creates an error for a held run lock.
func NewRunLockedError(err error) *UserError {
	return &UserError{
		Code:       ErrCodeRunLocked,
		Message:    "another run is already in progress",
		Suggestion: "Wait for the other invocation to finish, or remove a stale run.lock from the state directory.",
		Underlying: err,
	}
}
