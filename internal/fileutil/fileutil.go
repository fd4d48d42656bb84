// Package fileutil holds small filesystem helpers shared by the writer and
// the run orchestrator.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another process holds a directory lock.
var ErrLocked = errors.New("directory is locked by another run")

// WriteAtomic streams fill into a temp file next to path and renames it into
// place, so readers never observe a partially written file. The temp file is
// removed on failure.
func WriteAtomic(path string, mode os.FileMode, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := fill(tmp); err != nil {
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	committed = true
	return nil
}

// DirLock is an advisory lock file inside a directory.
type DirLock struct {
	lock *flock.Flock
}

// LockDir takes a non-blocking exclusive lock on dir/name, creating dir when
// needed. It returns ErrLocked when another holder exists.
func LockDir(dir, name string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, name))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	return &DirLock{lock: lock}, nil
}

// Path returns the lock file path.
func (l *DirLock) Path() string {
	if l == nil || l.lock == nil {
		return ""
	}
	return l.lock.Path()
}

// Unlock releases the lock. The lock file is left in place.
func (l *DirLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
