package shell

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"smallsh/internal/parser"
)

// runExternal spawns cmd and either waits on it (foreground) or registers it
// as a background job. Foreground-only mode downgrades a & request to a
// plain foreground run.
func (s *Session) runExternal(cmd *parser.Command) {
	background := cmd.Background && !s.fgOnly.Load()

	c := exec.Command(cmd.Program, cmd.Args[1:]...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	// Redirection targets are opened before the spawn; a failed open abandons
	// the spawn and counts as exit value 1, the same outcome the child would
	// have produced.
	files, err := s.applyRedirects(c, cmd, background)
	if err != nil {
		s.reportError(err)
		s.lastStatus = Status{Code: 1}
		return
	}

	// Every child runs in its own process group: terminal-delivered SIGINT
	// and SIGTSTP go to the shell's group only, so no child ever sees the
	// stop signal. The interrupt still reaches a foreground child because
	// the signal handler forwards it to that child's group.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	err = c.Start()
	for _, f := range files {
		// The child holds its own descriptors once started.
		f.Close()
	}
	if err != nil {
		s.reportError(err)
		s.lastStatus = Status{Code: 1}
		return
	}

	if background {
		pid := c.Process.Pid
		fmt.Fprintf(s.stdout, "background pid is %d\n", pid)
		s.jobs.add(pid, cmd.Args)
		// No wait and no last-status update; the job poll reports completion.
		return
	}

	s.waitForeground(c)
}

// waitForeground blocks until the child terminates, then records its outcome
// in the session's last-status. Death by signal is also reported right away.
func (s *Session) waitForeground(c *exec.Cmd) {
	// Published so the signal handler can forward interrupts to this child's
	// process group while the wait blocks.
	s.fgPID.Store(int64(c.Process.Pid))
	err := c.Wait()
	s.fgPID.Store(0)
	if c.ProcessState == nil {
		// The wait itself failed.
		s.reportError(err)
		s.lastStatus = Status{Code: 1}
		return
	}

	if ws, ok := c.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		sig := int(ws.Signal())
		s.lastStatus = Status{Signal: sig, Signaled: true}
		fmt.Fprintf(s.stdout, "terminated by signal %d\n", sig)
		return
	}
	s.lastStatus = Status{Code: c.ProcessState.ExitCode()}
}

// applyRedirects opens cmd's redirection targets and binds them to c.
// A background command with no explicit redirection gets the null device on
// the missing side so it never contends for the terminal. Returned files
// belong to the caller and must be closed after Start.
func (s *Session) applyRedirects(c *exec.Cmd, cmd *parser.Command, background bool) ([]*os.File, error) {
	var files []*os.File

	switch {
	case cmd.InputFile != "":
		f, err := os.Open(cmd.InputFile)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s for input: %w", cmd.InputFile, err)
		}
		c.Stdin = f
		files = append(files, f)
	case background:
		f, err := os.Open(os.DevNull)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s for input: %w", os.DevNull, err)
		}
		c.Stdin = f
		files = append(files, f)
	}

	switch {
	case cmd.OutputFile != "":
		f, err := os.OpenFile(cmd.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			closeAll(files)
			return nil, fmt.Errorf("cannot open %s for output: %w", cmd.OutputFile, err)
		}
		c.Stdout = f
		files = append(files, f)
	case background:
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			closeAll(files)
			return nil, fmt.Errorf("cannot open %s for output: %w", os.DevNull, err)
		}
		c.Stdout = f
		files = append(files, f)
	}

	return files, nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}
