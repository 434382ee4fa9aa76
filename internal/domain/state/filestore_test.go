package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreSetAndHas(t *testing.T) {
	store := NewFileStore(t.TempDir())

	key := "00-core:apt:install-git"
	if store.Has(key) {
		t.Fatal("fresh store should have no markers")
	}

	if err := store.Set(key); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !store.Has(key) {
		t.Error("marker should exist after Set")
	}
}

func TestFileStoreSetIsIdempotent(t *testing.T) {
	store := NewFileStore(t.TempDir())
	key := "01-lvm:volumes:create-home"

	if err := store.Set(key); err != nil {
		t.Fatalf("first Set: %v", err)
	}
	first, err := store.Markers()
	if err != nil {
		t.Fatalf("Markers: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if err := store.Set(key); err != nil {
		t.Fatalf("second Set: %v", err)
	}
	second, err := store.Markers()
	if err != nil {
		t.Fatalf("Markers: %v", err)
	}

	if len(second) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(second))
	}
	if !second[0].CompletedAt.Equal(first[0].CompletedAt) {
		t.Error("re-setting a marker must preserve its original timestamp")
	}
}

func TestFileStoreClear(t *testing.T) {
	store := NewFileStore(t.TempDir())
	key := "03-desktop:gsettings:dark-mode"

	if err := store.Set(key); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Clear(key); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if store.Has(key) {
		t.Error("marker should be gone after Clear")
	}

	// Clearing an absent marker is not an error.
	if err := store.Clear(key); err != nil {
		t.Errorf("Clear of missing marker: %v", err)
	}
}

func TestFileStoreMarkersSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	store := NewFileStore(dir)
	if err := store.Set("00-core:apt:update"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened := NewFileStore(dir)
	if !reopened.Has("00-core:apt:update") {
		t.Error("markers must survive process restarts")
	}
}

func TestFileStoreKeyFlattening(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	if err := store.Set("01-lvm:mount-data/docker"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 marker file, got %d", len(entries))
	}
	// The key's colons and slashes must not create subdirectories.
	if entries[0].IsDir() {
		t.Error("marker must be a flat file")
	}
}

func TestFileStoreUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not bind for root")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	store := NewFileStore(dir)
	err := store.Set("00-core:apt:update")
	if !errors.Is(err, ErrUnwritable) {
		t.Errorf("Set on read-only dir error = %v, want ErrUnwritable", err)
	}
}

func TestFileStoreCorruptMarkerStillCountsAsDone(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	if err := store.Set("00-core:apt:update"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("not json"), 0o644); err != nil {
		t.Fatalf("corrupt marker: %v", err)
	}

	if !store.Has("00-core:apt:update") {
		t.Error("presence of the marker file signals completion even when corrupt")
	}
	markers, err := store.Markers()
	if err != nil {
		t.Fatalf("Markers: %v", err)
	}
	if len(markers) != 1 || markers[0].Key == "" {
		t.Errorf("corrupt marker should still list with a filename-derived key, got %+v", markers)
	}
}

func TestFileStoreMarkersOnMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "never-created"))

	markers, err := store.Markers()
	if err != nil {
		t.Fatalf("Markers on missing dir: %v", err)
	}
	if len(markers) != 0 {
		t.Errorf("expected no markers, got %d", len(markers))
	}
}
