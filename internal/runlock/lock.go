// Package runlock prevents concurrent orchestrator invocations on the
// same host with a pidfile in the state directory.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrHeld is returned when another live invocation holds the lock.
var ErrHeld = errors.New("another groundwork run is already in progress")

// Lock is a held run lock. Release it on every exit path.
type Lock struct {
	path string
}

// Acquire takes the run lock under dir, claiming stale locks left by
// dead processes.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := filepath.Join(dir, "run.lock")
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("write lock file: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if !stale(path) {
			return nil, fmt.Errorf("%w (lock file %s)", ErrHeld, path)
		}
		_ = os.Remove(path)
	}

	return nil, fmt.Errorf("%w (lock file %s)", ErrHeld, path)
}

// Release removes the lock file.
func (l *Lock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// stale reports whether the lock's recorded pid no longer refers to a
// live process. An unreadable or malformed lock counts as stale.
func stale(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return true
	}
	if pid == os.Getpid() {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	return proc.Signal(syscall.Signal(0)) != nil
}
