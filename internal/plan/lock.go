package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const lockFileName = "run.lock"

// RunLock is a PID file that keeps two runs of one task file from sharing
// a journal.
type RunLock struct {
	path string
}

// NewRunLock creates a lock in the given state directory.
func NewRunLock(stateDir string) *RunLock {
	return &RunLock{path: filepath.Join(stateDir, lockFileName)}
}

// Acquire takes the lock. A lock left behind by a dead process is replaced;
// one held by a live process is an error.
func (l *RunLock) Acquire() error {
	err := l.create()
	if !os.IsExist(err) {
		return err
	}

	held, err := l.holder()
	if err != nil {
		return err
	}
	if held != 0 {
		return fmt.Errorf("task file is already running (PID %d)", held)
	}

	// Only one retry: a second collision means another run won the race.
	if err := l.create(); err != nil {
		if os.IsExist(err) {
			return errors.New("lock acquired by another process during retry")
		}
		return err
	}
	return nil
}

// create writes our PID with O_EXCL. os.IsExist reports a held lock.
func (l *RunLock) create() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return err
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()
	if writeErr != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", writeErr)
	}
	return nil
}

// holder returns the PID of the live process holding the lock, or 0 after
// removing a stale or unreadable lock file.
func (l *RunLock) holder() (int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read existing lock file: %w", err)
	}

	pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr == nil && processExists(pid) {
		return pid, nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to remove stale lock file: %w", err)
	}
	return 0, nil
}

// Release removes the lock file. Releasing a lock that is not held is a no-op.
func (l *RunLock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// IsLocked reports whether a live process holds the lock.
func (l *RunLock) IsLocked() (bool, error) {
	pid, err := l.holder()
	return pid != 0, err
}

// processExists checks for a process with kill(pid, 0).
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
