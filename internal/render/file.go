package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
	"github.com/Aman-CERP/pagemark/internal/pipeline"
)

// OutputLock provides cross-process locking of an output file using
// gofrs/flock, so two pagemark runs (for example a watch loop and a manual
// run) never interleave writes to the same file.
type OutputLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewOutputLock creates a lock guarding target. The lock file is
// <target>.lock next to it.
func NewOutputLock(target string) *OutputLock {
	lockPath := target + ".lock"
	return &OutputLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if it's held by another process.
func (l *OutputLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. The lock file is left in place.
// It's safe to call Unlock multiple times or on an unlocked OutputLock.
func (l *OutputLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *OutputLock) Path() string {
	return l.path
}

// IsLocked returns true if the lock is currently held.
func (l *OutputLock) IsLocked() bool {
	return l.locked
}

// WriteFile renders report into path. The file is written to a temporary
// sibling and renamed into place while holding the output lock, so readers
// never see a partial document.
func WriteFile(path string, r Renderer, report *pipeline.Report) error {
	lock := NewOutputLock(path)
	ok, err := lock.TryLock()
	if err != nil {
		return pmerrors.Wrap(pmerrors.ErrCodeOutputWrite, err).WithDetail("path", path)
	}
	if !ok {
		return pmerrors.New(pmerrors.ErrCodeOutputLocked,
			fmt.Sprintf("%s is being written by another process", path), nil).
			WithDetail("lock", lock.Path()).
			WithSuggestion("Wait for the other run to finish or choose another --output")
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return pmerrors.Wrap(pmerrors.ErrCodeOutputWrite, err).WithDetail("path", path)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := r.Render(tmp, report); err != nil {
		cleanup()
		return pmerrors.Wrap(pmerrors.ErrCodeOutputWrite, err).WithDetail("path", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return pmerrors.Wrap(pmerrors.ErrCodeOutputWrite, err).WithDetail("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return pmerrors.Wrap(pmerrors.ErrCodeOutputWrite, err).WithDetail("path", path)
	}
	return nil
}

// Write renders report to w, or to the file at path when path is non-empty
// and not "-".
func Write(w io.Writer, path string, r Renderer, report *pipeline.Report) error {
	if path == "" || path == "-" {
		if err := r.Render(w, report); err != nil {
			return pmerrors.Wrap(pmerrors.ErrCodeOutputWrite, err)
		}
		return nil
	}
	return WriteFile(path, r, report)
}
