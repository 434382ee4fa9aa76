package step

import (
	"context"
	"testing"
	"time"
)

func TestRunContextDefaults(t *testing.T) {
	rc := NewRunContext(context.Background())

	if rc.Force() {
		t.Error("force should default to false")
	}
	if rc.DryRun() {
		t.Error("dry-run should default to false")
	}
	if rc.Interactive() {
		t.Error("interactive should default to false")
	}
	if got := rc.SudoTimeout(); got != 5*time.Minute {
		t.Errorf("SudoTimeout() = %v, want 5m", got)
	}
	if rc.ScratchDir() != "" {
		t.Error("scratch dir should default to empty")
	}
}

func TestRunContextWithersDoNotMutate(t *testing.T) {
	base := NewRunContext(context.Background())

	forced := base.WithForce(true).
		WithDryRun(true).
		WithInteractive(true).
		WithSudoTimeout(time.Minute).
		WithScratchDir("/tmp/scratch")

	if !forced.Force() || !forced.DryRun() || !forced.Interactive() {
		t.Error("withers should set the derived context's flags")
	}
	if forced.SudoTimeout() != time.Minute {
		t.Errorf("SudoTimeout() = %v, want 1m", forced.SudoTimeout())
	}
	if forced.ScratchDir() != "/tmp/scratch" {
		t.Errorf("ScratchDir() = %q, want /tmp/scratch", forced.ScratchDir())
	}

	if base.Force() || base.DryRun() || base.Interactive() {
		t.Error("withers must not mutate the original context")
	}
}
