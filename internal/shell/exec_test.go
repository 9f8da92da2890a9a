package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/sys/unix"
)

func TestForegroundExitCode(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.eval(writeScript(t, "exit 7"))

	assert.Equal(t, Status{Code: 7}, s.lastStatus)
}

func TestForegroundSignalDeath(t *testing.T) {
	s, out, _ := newTestSession(t)

	s.eval(writeScript(t, "kill -9 $$"))

	assert.Equal(t, Status{Signal: 9, Signaled: true}, s.lastStatus)
	assert.Contains(t, out.String(), "terminated by signal 9\n")
}

func TestLastStatusMostRecentEventWins(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.eval(writeScript(t, "kill -9 $$"))
	require.True(t, s.lastStatus.Signaled)

	s.eval(writeScript(t, "exit 2"))
	assert.Equal(t, Status{Code: 2}, s.lastStatus)
}

func TestSpawnFailureSetsSentinelStatus(t *testing.T) {
	s, _, errOut := newTestSession(t)

	s.eval("/no/such/program")

	assert.Equal(t, Status{Code: 1}, s.lastStatus)
	assert.NotEmpty(t, errOut.String())
}

func TestBackgroundReportsPidWithoutWaiting(t *testing.T) {
	s, out, _ := newTestSession(t)
	s.lastStatus = Status{Code: 42}

	s.eval("sleep 30 &")

	jobs := s.jobs.activeJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, fmt.Sprintf("background pid is %d\n", jobs[0].pid), out.String())

	// Background spawns never touch last-status.
	assert.Equal(t, Status{Code: 42}, s.lastStatus)
}

func TestForegroundOnlyModeSuppressesBackground(t *testing.T) {
	s, out, _ := newTestSession(t)
	s.fgOnly.Store(true)

	s.eval("true &")

	assert.NotContains(t, out.String(), "background pid")
	assert.Empty(t, s.jobs.activeJobs())
	// Ran foreground, so the status was collected synchronously.
	assert.Equal(t, Status{Code: 0}, s.lastStatus)
}

func TestOutputRedirection(t *testing.T) {
	s, _, _ := newTestSession(t)
	out := filepath.Join(t.TempDir(), "out.txt")

	s.eval("echo hello > " + out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestOutputRedirectionTruncates(t *testing.T) {
	s, _, _ := newTestSession(t)
	out := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(out, []byte("previous contents linger\n"), 0o644))

	s.eval("echo new > " + out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))
}

func TestInputRedirection(t *testing.T) {
	s, _, _ := newTestSession(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("line one\n"), 0o644))

	s.eval(fmt.Sprintf("cat < %s > %s", in, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "line one\n", string(data))
	assert.Equal(t, Status{Code: 0}, s.lastStatus)
}

func TestInputOpenFailureIsExitValueOne(t *testing.T) {
	s, _, errOut := newTestSession(t)

	s.eval("cat < /no/such/input")

	assert.Equal(t, Status{Code: 1}, s.lastStatus)
	assert.Contains(t, errOut.String(), "cannot open /no/such/input for input")
}

func TestBackgroundBindsNullDevice(t *testing.T) {
	s, out, _ := newTestSession(t)

	// With stdin on the null device, cat sees EOF and exits 0 instead of
	// hanging on the terminal.
	s.eval("cat &")

	jobs := s.jobs.activeJobs()
	require.Len(t, jobs, 1)
	pid := jobs[0].pid

	out.Reset()
	pollUntil(t, s.jobs, out, fmt.Sprintf("background pid %d is done: exit value 0\n", pid))
}

func TestBackgroundExplicitRedirectionWins(t *testing.T) {
	s, out, _ := newTestSession(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	dst := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("payload\n"), 0o644))

	s.eval(fmt.Sprintf("cat < %s > %s &", in, dst))

	jobs := s.jobs.activeJobs()
	require.Len(t, jobs, 1)
	pollUntil(t, s.jobs, out, fmt.Sprintf("background pid %d is done: exit value 0\n", jobs[0].pid))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload\n", string(data))
}

func TestBackgroundChildIgnoresTerminalInterrupt(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.eval("sleep 30 &")
	jobs := s.jobs.activeJobs()
	require.Len(t, jobs, 1)
	pid := jobs[0].pid

	// The child sits in its own process group, so an interrupt aimed at the
	// shell's group never reaches it.
	pgid, err := unix.Getpgid(pid)
	require.NoError(t, err)
	assert.Equal(t, pid, pgid)
	assert.NotEqual(t, unix.Getpgrp(), pgid)
}
