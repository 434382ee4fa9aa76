// Package state persists one durable completion marker per finished
// step key. Markers survive process exit and reboot, and live outside
// any volume the tracked steps re-provision.
package state

import (
	"errors"
	"time"
)

// ErrUnwritable is returned when the backing location cannot record a
// marker. Callers must treat this as fatal: a step that silently fails
// to record completion would re-run destructively on the next
// invocation.
var ErrUnwritable = errors.New("state store location is not writable")

// Marker is a recorded completion. The timestamp is kept for
// diagnostics only; presence of the marker is the sole completion
// signal.
type Marker struct {
	Key         string    `json:"key"`
	CompletedAt time.Time `json:"completed_at"`
}

// Store records step completion. Set is idempotent; markers are never
// cleared automatically; removal is an explicit operator action.
type Store interface {
	// Has reports whether a completion marker exists for the key.
	Has(key string) bool

	// Set records completion for the key. Setting an already-set key is
	// a no-op. An unwritable backing location yields ErrUnwritable.
	Set(key string) error

	// Clear removes the marker for the key, if present.
	Clear(key string) error

	// Markers returns all recorded completions.
	Markers() ([]Marker, error)
}
