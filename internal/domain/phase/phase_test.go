package phase

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantNumber int
		wantName   string
		wantErr    bool
	}{
		{name: "core", input: "00-core", wantNumber: 0, wantName: "core"},
		{name: "two digit", input: "42-extras", wantNumber: 42, wantName: "extras"},
		{name: "hyphenated name", input: "03-desktop-apps", wantNumber: 3, wantName: "desktop-apps"},
		{name: "trimmed", input: " 01-lvm ", wantNumber: 1, wantName: "lvm"},
		{name: "missing prefix", input: "core", wantErr: true},
		{name: "one digit prefix", input: "1-lvm", wantErr: true},
		{name: "three digit prefix", input: "100-lvm", wantErr: true},
		{name: "uppercase name", input: "00-Core", wantErr: true},
		{name: "missing name", input: "00-", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ph, err := Parse(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, ph)
				}
				return
			}

			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if ph.Number() != tt.wantNumber {
				t.Errorf("Number() = %d, want %d", ph.Number(), tt.wantNumber)
			}
			if ph.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", ph.Name(), tt.wantName)
			}
		})
	}
}

func TestParseEmptyError(t *testing.T) {
	_, err := Parse("   ")
	if !errors.Is(err, ErrEmptyPhase) {
		t.Errorf("Parse(blank) error = %v, want ErrEmptyPhase", err)
	}
}

func TestIdentifierRoundTrip(t *testing.T) {
	ph := MustParse("05-tweaks")
	if got := ph.Identifier(); got != "05-tweaks" {
		t.Errorf("Identifier() = %q, want %q", got, "05-tweaks")
	}
	if got := ph.String(); got != "05-tweaks" {
		t.Errorf("String() = %q, want %q", got, "05-tweaks")
	}
}

func TestBefore(t *testing.T) {
	core := MustParse("00-core")
	tweaks := MustParse("05-tweaks")

	if !core.Before(tweaks) {
		t.Error("00-core should run before 05-tweaks")
	}
	if tweaks.Before(core) {
		t.Error("05-tweaks should not run before 00-core")
	}
	if core.Before(core) {
		t.Error("a phase is not before itself")
	}
}

func TestMustParsePanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse("nope")
}
