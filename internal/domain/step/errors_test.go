package step

import (
	"errors"
	"fmt"
	"testing"
)

func TestFatalClassification(t *testing.T) {
	base := errors.New("disk on fire")

	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{name: "nil", err: nil, fatal: false},
		{name: "plain error is recoverable", err: base, fatal: false},
		{name: "wrapped fatal", err: Fatal(base), fatal: true},
		{name: "formatted fatal", err: Fatalf("mkfs failed: %v", base), fatal: true},
		{name: "fatal buried in chain", err: fmt.Errorf("step failed: %w", Fatal(base)), fatal: true},
		{name: "recoverable wrapping stays recoverable", err: fmt.Errorf("step failed: %w", base), fatal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.fatal)
			}
		})
	}
}

func TestFatalNilPassthrough(t *testing.T) {
	if Fatal(nil) != nil {
		t.Error("Fatal(nil) should return nil")
	}
}

func TestFatalUnwrap(t *testing.T) {
	base := errors.New("volume group missing")
	wrapped := Fatal(base)

	if !errors.Is(wrapped, base) {
		t.Error("fatal error should unwrap to the underlying error")
	}
	if wrapped.Error() != base.Error() {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), base.Error())
	}
}
