package shell

import (
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

var (
	enterNotice = []byte("\nEntering foreground-only mode (& is now ignored)\n")
	exitNotice  = []byte("\nExiting foreground-only mode\n")
)

// setupSignals wires the session's signal policy: SIGINT never terminates
// the session but is forwarded to the foreground child's process group, and
// SIGTSTP toggles foreground-only mode. Children sit in their own process
// groups, so the terminal's stop signal can never stop one.
func (s *Session) setupSignals() {
	signal.Notify(s.signalChan, syscall.SIGINT, syscall.SIGTSTP)
	go s.handleSignals()
}

func (s *Session) teardownSignals() {
	signal.Stop(s.signalChan)
	close(s.signalChan)
}

func (s *Session) handleSignals() {
	for sig := range s.signalChan {
		switch sig {
		case syscall.SIGINT:
			// The interrupt belongs to the foreground child, not the
			// session: pass it to the child's process group and carry on.
			if pid := s.fgPID.Load(); pid != 0 {
				unix.Kill(-int(pid), unix.SIGINT)
			}
		case syscall.SIGTSTP:
			s.toggleForegroundOnly()
		}
	}
}

// toggleForegroundOnly flips the mode flag and raw-writes the fixed notice.
// It runs on the signal goroutine and can fire between any two instructions
// of the main loop, so it performs nothing beyond the atomic flip and a
// single write: no formatting, no allocation, no job-table access.
func (s *Session) toggleForegroundOnly() {
	if s.fgOnly.CompareAndSwap(false, true) {
		unix.Write(s.noticeFD, enterNotice)
	} else {
		s.fgOnly.Store(false)
		unix.Write(s.noticeFD, exitNotice)
	}
}
