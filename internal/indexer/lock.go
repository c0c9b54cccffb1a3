package indexer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the writer lock inside the index directory.
const LockFileName = ".lock"

// ErrIndexLocked is returned when another process is already indexing into
// the same index directory.
var ErrIndexLocked = errors.New("index is locked by another process")

// IndexLock is the single-writer lock for an index directory.
type IndexLock struct {
	flock  *flock.Flock
	locked bool
}

// NewIndexLock returns the lock for the index directory dir.
func NewIndexLock(dir string) *IndexLock {
	return &IndexLock{flock: flock.New(filepath.Join(dir, LockFileName))}
}

// TryLock acquires the lock without blocking, or returns ErrIndexLocked.
func (l *IndexLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.flock.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrIndexLocked, l.flock.Path())
	}
	l.locked = true
	return nil
}

// Unlock releases the lock. It is safe to call on an unlocked IndexLock.
func (l *IndexLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
