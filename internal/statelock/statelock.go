// Package statelock guards against two daemon instances (or a daemon and
// an offline maintenance script) mutating the Fact Store and Change Log
// concurrently. Grounded on the original Rust implementation's
// updater/lock.rs; reimplemented here with flock(2) since Go has no
// built-in cross-process advisory lock.
package statelock

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock is a held advisory file lock. Release unlocks and closes the file;
// the lock is also released automatically if the process exits.
type Lock struct {
	f *os.File
}

// ErrHeld is returned by Acquire when another process already holds the
// lock.
var ErrHeld = fmt.Errorf("statelock: already held by another process")

// Acquire takes an exclusive, non-blocking advisory lock on path,
// creating the file if necessary. Callers must call Release on success.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o640)
	if err != nil {
		return nil, fmt.Errorf("statelock: open %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("statelock: flock %s: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Release unlocks and closes the underlying file.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		l.f.Close()
		return fmt.Errorf("statelock: unlock: %w", err)
	}
	return l.f.Close()
}
