package shell

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/sys/unix"
)

// job is one tracked background process. It stays active from spawn until
// its status has been collected exactly once.
type job struct {
	pid    int
	args   []string
	active bool
}

// jobTable registers background jobs keyed by pid. Insertion order is kept
// so completion reports come out in spawn order. Finished entries remain as
// inactive tombstones; there is no cap on live jobs.
type jobTable struct {
	byPID map[int]*job
	order []*job
}

func newJobTable() *jobTable {
	return &jobTable{byPID: make(map[int]*job)}
}

func (t *jobTable) add(pid int, args []string) {
	// A reused pid means the old process is long gone; retire its entry so
	// the table never holds two active jobs with one pid.
	if old, ok := t.byPID[pid]; ok {
		old.active = false
	}
	j := &job{pid: pid, args: args, active: true}
	t.byPID[pid] = j
	t.order = append(t.order, j)
}

func (t *jobTable) activeJobs() []*job {
	var out []*job
	for _, j := range t.order {
		if j.active {
			out = append(out, j)
		}
	}
	return out
}

// poll reaps finished jobs without blocking and reports each outcome exactly
// once. A wait error means the process was already collected elsewhere; the
// job goes inactive silently. Running jobs are left untouched.
func (t *jobTable) poll(w io.Writer) {
	for _, j := range t.order {
		if !j.active {
			continue
		}

		var ws unix.WaitStatus
		pid, err := unix.Wait4(j.pid, &ws, unix.WNOHANG, nil)
		switch {
		case err != nil:
			j.active = false
		case pid == 0:
			// Still running.
		case ws.Signaled():
			j.active = false
			fmt.Fprintf(w, "background pid %d is done: terminated by signal %d\n", j.pid, int(ws.Signal()))
		default:
			j.active = false
			fmt.Fprintf(w, "background pid %d is done: exit value %d\n", j.pid, ws.ExitStatus())
		}
	}
}

// terminateAll asks every active job to exit, waits out the grace period,
// then force-kills and reaps whatever is left. Used by the exit builtin and
// the end-of-input path.
func (t *jobTable) terminateAll(grace time.Duration) {
	any := false
	for _, j := range t.order {
		if j.active {
			unix.Kill(j.pid, unix.SIGTERM)
			any = true
		}
	}
	if !any {
		return
	}

	time.Sleep(grace)

	for _, j := range t.order {
		if !j.active {
			continue
		}
		unix.Kill(j.pid, unix.SIGKILL)
		var ws unix.WaitStatus
		unix.Wait4(j.pid, &ws, 0, nil)
		j.active = false
	}
}
