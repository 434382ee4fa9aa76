package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore implements Store with one marker file per completed step
// key. The directory must sit on a filesystem mounted early and not
// itself re-provisioned by the steps being tracked.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the backing directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Has reports whether a completion marker exists for the key.
func (s *FileStore) Has(key string) bool {
	_, err := os.Stat(s.markerPath(key))
	return err == nil
}

// Set records completion for the key. Idempotent: an existing marker is
// left untouched so its original timestamp survives.
func (s *FileStore) Set(key string) error {
	if s.Has(key) {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnwritable, s.dir, err)
	}

	marker := Marker{Key: key, CompletedAt: time.Now()}
	data, err := json.Marshal(marker)
	if err != nil {
		return err
	}

	// Write-then-rename keeps a crash from leaving a half-written marker
	// that would read as completion.
	tmp := s.markerPath(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnwritable, s.dir, err)
	}
	if err := os.Rename(tmp, s.markerPath(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %s: %v", ErrUnwritable, s.dir, err)
	}
	return nil
}

// Clear removes the marker for the key, if present.
func (s *FileStore) Clear(key string) error {
	err := os.Remove(s.markerPath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Markers returns all recorded completions.
func (s *FileStore) Markers() ([]Marker, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	markers := make([]Marker, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), markerSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var marker Marker
		if err := json.Unmarshal(data, &marker); err != nil {
			// A corrupt marker still signals completion by presence; keep
			// the key derivable from the filename.
			marker = Marker{Key: strings.TrimSuffix(entry.Name(), markerSuffix)}
		}
		markers = append(markers, marker)
	}
	return markers, nil
}

const markerSuffix = ".done"

// markerPath maps a step key to its marker file. Colons and slashes are
// flattened so keys stay valid filenames.
func (s *FileStore) markerPath(key string) string {
	name := strings.NewReplacer(":", "__", "/", "-").Replace(key)
	return filepath.Join(s.dir, name+markerSuffix)
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
