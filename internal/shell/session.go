// Package shell implements the interactive session: the read-eval loop,
// built-in commands, external command execution, background job tracking and
// the signal-driven foreground-only mode.
package shell

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"smallsh/internal/config"
	"smallsh/internal/history"
	"smallsh/internal/parser"
)

// Status is the outcome of the most recent foreground command. Exactly one
// of Code/Signal is meaningful at a time, selected by Signaled.
type Status struct {
	Code     int
	Signal   int
	Signaled bool
}

func (s Status) String() string {
	if s.Signaled {
		return fmt.Sprintf("terminated by signal %d", s.Signal)
	}
	return fmt.Sprintf("exit value %d", s.Code)
}

// Session is one interactive shell session. It owns all mutable shell state:
// the job table, the last foreground status and the foreground-only flag.
// Everything except fgOnly is touched only from the main loop; fgOnly is
// written by the signal goroutine and read here.
type Session struct {
	cfg        *config.Config
	history    *history.History
	jobs       *jobTable
	lastStatus Status
	fgOnly     atomic.Bool
	// fgPID is the pid of the currently waited-on foreground child, or 0.
	// Written around the foreground wait, read by the signal goroutine to
	// forward interrupts.
	fgPID      atomic.Int64
	signalChan chan os.Signal
	reader     *readline.Instance

	stdout   io.Writer
	stderr   io.Writer
	noticeFD int
}

var errorPrefix = color.New(color.FgRed).SprintFunc()

func New(cfg *config.Config) (*Session, error) {
	hist, err := history.New(cfg.HistoryFile)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	return &Session{
		cfg:        cfg,
		history:    hist,
		jobs:       newJobTable(),
		// Buffered a few deep so back-to-back deliveries are not coalesced
		// while the handler goroutine is busy. The kernel still merges
		// signals that are pending at the same time; nothing user-space can
		// do about that.
		signalChan: make(chan os.Signal, 4),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		noticeFD:   int(os.Stdout.Fd()),
	}, nil
}

// Run drives the read-eval loop until end of input or the exit builtin.
func (s *Session) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      s.cfg.Prompt,
		HistoryFile: s.cfg.HistoryFile,
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	s.reader = rl
	defer rl.Close()

	s.setupSignals()
	defer s.teardownSignals()

	for {
		// Finished background jobs surface only here, at the top of the
		// cycle, never while a foreground command has the terminal.
		s.jobs.poll(s.stdout)

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// The interrupt is for foreground children; the session itself
			// never dies from it.
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		s.eval(line)
	}

	// End of input gets the same job cleanup as the exit builtin.
	s.jobs.terminateAll(s.cfg.TermGrace())
	return nil
}

// eval parses and dispatches one input line. Errors are reported and the
// loop carries on; nothing here is fatal to the session.
func (s *Session) eval(line string) {
	cmd, err := parser.Parse(line)
	if err != nil {
		s.reportError(err)
		return
	}
	if cmd == nil {
		// Blank line or comment.
		return
	}

	s.history.Add(line)

	if s.runBuiltin(cmd) {
		return
	}
	s.runExternal(cmd)
}

func (s *Session) reportError(err error) {
	fmt.Fprintf(s.stderr, "%s %v\n", errorPrefix("smallsh:"), err)
}
