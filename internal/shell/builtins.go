package shell

import (
	"errors"
	"fmt"
	"os"

	"github.com/kballard/go-shellquote"

	"smallsh/internal/parser"
)

// runBuiltin dispatches cmd if it names a builtin and reports whether it did.
// Builtins always run in the foreground; a trailing & is ignored.
func (s *Session) runBuiltin(cmd *parser.Command) bool {
	switch cmd.Program {
	case "exit":
		s.exit()
		return true
	case "cd":
		if err := s.changeDirectory(cmd.Args[1:]); err != nil {
			s.reportError(err)
		}
		return true
	case "status":
		fmt.Fprintln(s.stdout, s.lastStatus)
		return true
	case "history":
		s.showHistory()
		return true
	case "jobs":
		s.showJobs()
		return true
	}
	return false
}

// exit terminates every tracked job, then the session. It does not return.
func (s *Session) exit() {
	s.jobs.terminateAll(s.cfg.TermGrace())
	if s.reader != nil {
		s.reader.Close()
	}
	os.Exit(0)
}

// changeDirectory implements cd. It deliberately leaves the last-status
// fields untouched whether it succeeds or fails.
func (s *Session) changeDirectory(args []string) error {
	var dir string
	switch len(args) {
	case 0:
		home, ok := os.LookupEnv("HOME")
		if !ok {
			return errors.New("cd: HOME environment variable not set")
		}
		dir = home
	case 1:
		dir = args[0]
	default:
		return errors.New("cd: too many arguments")
	}

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	return nil
}

func (s *Session) showHistory() {
	for i, line := range s.history.All() {
		fmt.Fprintf(s.stdout, "%d: %s\n", i+1, line)
	}
}

func (s *Session) showJobs() {
	for _, j := range s.jobs.activeJobs() {
		fmt.Fprintf(s.stdout, "[%d] %s\n", j.pid, shellquote.Join(j.args...))
	}
}
