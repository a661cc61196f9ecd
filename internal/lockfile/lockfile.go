// Package lockfile marks a running interactive session next to the database.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habit/internal/constants"
)

var (
	// ErrActiveSession is returned by Acquire when another live process holds the lock.
	ErrActiveSession = errors.New("another habit session is running")

	findProcessFunc = ps.FindProcess
	currentPID      = os.Getpid
)

// State describes what a lockfile says about the session it names
type State int

const (
	StateNone State = iota
	StateActive
	StateStale
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateStale:
		return "stale"
	default:
		return "none"
	}
}

// Status is the result of Check
type Status struct {
	State State
	PID   int
	Path  string
}

// Lock is a held lockfile
type Lock struct {
	path string
	pid  int
}

// PathFor returns the lockfile path for a database
func PathFor(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), constants.LockfileName)
}

// Check reads the lockfile at path and reports whether its process is alive.
// A missing file is StateNone; an unreadable pid is StateStale.
func Check(path string) (Status, error) {
	status := Status{Path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return status, nil
	}
	if err != nil {
		return status, fmt.Errorf("failed to read lockfile: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		status.State = StateStale
		return status, nil
	}
	status.PID = pid

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		status.State = StateStale
		return status, nil
	}

	status.State = StateActive
	return status, nil
}

// Acquire writes the current pid to path. Stale locks and locks held by this
// process are replaced.
func Acquire(path string) (*Lock, error) {
	status, err := Check(path)
	if err != nil {
		return nil, err
	}

	pid := currentPID()
	if status.State == StateActive && status.PID != pid {
		return nil, fmt.Errorf("%w (pid %d, lockfile %s)", ErrActiveSession, status.PID, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}

	return &Lock{path: path, pid: pid}, nil
}

// Release removes the lockfile if it still names this lock's process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(l.pid) {
		return nil
	}
	return os.Remove(l.path)
}

// Path returns the lockfile location
func (l *Lock) Path() string {
	return l.path
}
