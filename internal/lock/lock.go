// Package lock prevents two lambdo runs from deploying out of the same
// project at once.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrHeld indicates another process holds the lock.
var ErrHeld = errors.New("lock held by another process")

// Lock is an exclusive, non-blocking file lock.
type Lock struct {
	path string
	file *os.File
}

// New creates a lock for operation inside dir (typically .lambdo/locks).
func New(dir, operation string) *Lock {
	return &Lock{path: filepath.Join(dir, operation+".lock")}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

func (l *Lock) operation() string {
	return strings.TrimSuffix(filepath.Base(l.path), ".lock")
}

// Acquire takes the lock or fails immediately with ErrHeld.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := lockFile(f); err != nil {
		f.Close()
		l.file = nil
		if errors.Is(err, ErrHeld) {
			return fmt.Errorf("another %s is already running (%s): %w", l.operation(), l.path, ErrHeld)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// PID for whoever finds a stale lock file.
	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := unlockFile(l.file); err != nil {
		l.file.Close()
		l.file = nil
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	os.Remove(l.path)
	l.file = nil

	return nil
}

// WithLock runs fn while holding the lock for operation in dir.
func WithLock(dir, operation string, fn func() error) error {
	lock := New(dir, operation)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
