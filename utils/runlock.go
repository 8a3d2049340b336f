package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"
)

// RunLock is a file lock guarding local execution of a single workflow
type RunLock struct {
	lockFile *flock.Flock
	lockPath string
}

var unsafeLockNameChars = regexp.MustCompile(`[^\w\-.]`)

// sanitizeLockName converts a workflow name into a safe lock file name
func sanitizeLockName(name string) string {
	sanitized := strings.ReplaceAll(name, "/", "--")
	sanitized = strings.ReplaceAll(sanitized, "\\", "--")
	sanitized = strings.ReplaceAll(sanitized, ":", "--")
	sanitized = unsafeLockNameChars.ReplaceAllString(sanitized, "-")
	sanitized = strings.Trim(sanitized, ".-")

	if sanitized == "" {
		sanitized = "default"
	}

	return sanitized
}

// NewRunLock creates a lock for the named workflow under dir.
// An empty dir uses the system temp directory.
func NewRunLock(dir, workflowName string) (*RunLock, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "incidentflow")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, fmt.Sprintf("%s.lock", sanitizeLockName(workflowName)))

	return &RunLock{
		lockFile: flock.New(lockPath),
		lockPath: lockPath,
	}, nil
}

// TryLock attempts to acquire the lock without blocking
func (l *RunLock) TryLock() (bool, error) {
	locked, err := l.lockFile.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock: %w", err)
	}
	return locked, nil
}

// Unlock releases the lock and removes the lock file
func (l *RunLock) Unlock() error {
	if l.lockFile == nil {
		return nil
	}

	if err := l.lockFile.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}

	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	return nil
}

func (l *RunLock) Path() string {
	return l.lockPath
}
