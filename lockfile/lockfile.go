// Package lockfile provides the single-instance advisory lock spec §6 treats
// as an external collaborator: a well-known path, exclusive non-blocking
// flock, acquisition failure maps to exit code 2.
package lockfile

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// StaleWarnAfter is how old an existing lock file's mtime must be before a
// failed acquisition reports it as possibly stale through Acquire's stale
// flag (the acquisition still fails; locks are never broken automatically).
const StaleWarnAfter = 24 * time.Hour

// Lock is a held advisory lock on a single file.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes an exclusive, non-blocking flock on path, creating it if
// necessary. If another process already holds it, Acquire returns an error
// and, when the existing file looks older than StaleWarnAfter, a stale flag
// the caller can surface as a warning.
func Acquire(path string) (lock *Lock, stale bool, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("lockfile: opening %s: %w", path, err)
	}

	if flockErr := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); flockErr != nil {
		info, statErr := f.Stat()
		isStale := statErr == nil && time.Since(info.ModTime()) > StaleWarnAfter
		f.Close()
		return nil, isStale, fmt.Errorf("lockfile: %s is already locked: %w", path, flockErr)
	}

	if err := f.Truncate(0); err == nil {
		fmt.Fprintf(f, "%d\n", os.Getpid())
	}

	return &Lock{file: f, path: path}, false, nil
}

// Release drops the lock and closes the file. It does not remove the file:
// the path is reused by the next run.
func (l *Lock) Release() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("lockfile: unlocking %s: %w", l.path, err)
	}
	return l.file.Close()
}
