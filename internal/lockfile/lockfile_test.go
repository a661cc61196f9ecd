package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProcess struct {
	pid        int
	executable string
}

func (p *mockProcess) Pid() int           { return p.pid }
func (p *mockProcess) PPid() int          { return 0 }
func (p *mockProcess) Executable() string { return p.executable }

func withProcesses(t *testing.T, self int, alive ...int) {
	t.Helper()
	oldFind, oldPID := findProcessFunc, currentPID
	t.Cleanup(func() {
		findProcessFunc = oldFind
		currentPID = oldPID
	})

	live := map[int]bool{self: true}
	for _, pid := range alive {
		live[pid] = true
	}
	findProcessFunc = func(pid int) (ps.Process, error) {
		if live[pid] {
			return &mockProcess{pid: pid, executable: "habit"}, nil
		}
		return nil, nil
	}
	currentPID = func() int { return self }
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "habit.lock"), PathFor(filepath.Join("data", "habits.db")))
}

func TestCheck(t *testing.T) {
	withProcesses(t, 100, 200)
	dir := t.TempDir()

	tests := []struct {
		name    string
		content *string
		want    State
		wantPID int
	}{
		{name: "missing", content: nil, want: StateNone},
		{name: "alive", content: strPtr("200"), want: StateActive, wantPID: 200},
		{name: "dead", content: strPtr("300\n"), want: StateStale, wantPID: 300},
		{name: "garbage", content: strPtr("not-a-pid"), want: StateStale},
		{name: "negative", content: strPtr("-4"), want: StateStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".lock")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o600))
			}

			status, err := Check(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.State)
			assert.Equal(t, tt.wantPID, status.PID)
			assert.Equal(t, path, status.Path)
		})
	}
}

func TestAcquireAndRelease(t *testing.T) {
	withProcesses(t, 100)
	path := filepath.Join(t.TempDir(), "nested", "habit.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)
	assert.Equal(t, path, lock.Path())

	status, err := Check(path)
	require.NoError(t, err)
	assert.Equal(t, StateActive, status.State)
	assert.Equal(t, 100, status.PID)

	// Re-acquiring from the same process is allowed
	again, err := Acquire(path)
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	require.NoError(t, again.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireRejectsActiveSession(t *testing.T) {
	withProcesses(t, 100, 200)
	path := filepath.Join(t.TempDir(), "habit.lock")
	require.NoError(t, os.WriteFile(path, []byte("200"), 0o600))

	lock, err := Acquire(path)
	assert.Nil(t, lock)
	assert.True(t, errors.Is(err, ErrActiveSession))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "200", string(data))
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	withProcesses(t, 100)
	path := filepath.Join(t.TempDir(), "habit.lock")
	require.NoError(t, os.WriteFile(path, []byte("300"), 0o600))

	lock, err := Acquire(path)
	require.NoError(t, err)
	defer lock.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "100", string(data))
}

func TestReleaseLeavesForeignLock(t *testing.T) {
	withProcesses(t, 100)
	path := filepath.Join(t.TempDir(), "habit.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)

	// Another session took over after ours went stale
	require.NoError(t, os.WriteFile(path, []byte("555"), 0o600))
	require.NoError(t, lock.Release())

	_, err = os.Stat(path)
	assert.NoError(t, err)

	var nilLock *Lock
	assert.NoError(t, nilLock.Release())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "none", StateNone.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "stale", StateStale.String())
}

func strPtr(s string) *string { return &s }
