// Package history keeps a bounded, persistent record of executed lines.
package history

import (
	"bufio"
	"os"
	"sync"
)

const defaultMax = 1000

// History is a bounded list of command lines, optionally backed by a file.
// An empty file path makes it memory-only.
type History struct {
	mu    sync.Mutex
	lines []string
	file  string
	max   int
}

// New loads history from file. A missing file is not an error; the history
// simply starts empty.
func New(file string) (*History, error) {
	h := &History{
		file: file,
		max:  defaultMax,
	}
	if err := h.load(); err != nil {
		return nil, err
	}
	return h, nil
}

// Add records a line and appends it to the backing file.
func (h *History) Add(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lines = append(h.lines, line)
	if len(h.lines) > h.max {
		h.lines = h.lines[len(h.lines)-h.max:]
	}
	h.persist(line)
}

// All returns a copy of the recorded lines, oldest first.
func (h *History) All() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.lines...)
}

func (h *History) load() error {
	if h.file == "" {
		return nil
	}
	f, err := os.Open(h.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		h.lines = append(h.lines, scanner.Text())
	}
	if len(h.lines) > h.max {
		h.lines = h.lines[len(h.lines)-h.max:]
	}
	return scanner.Err()
}

// persist appends one line; a write failure loses persistence, not history.
func (h *History) persist(line string) {
	if h.file == "" {
		return
	}
	f, err := os.OpenFile(h.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(line + "\n")
}
