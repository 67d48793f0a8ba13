package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.cmf"

// HistoryEntry is one submitted line and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// marker prefixes each line of the history file with its mode.
func (e HistoryEntry) marker() string {
	if e.Mode == modeCtrl {
		return ":"
	}

	return ">"
}

func (e HistoryEntry) String() string { return e.marker() + e.Line }

func parseEntry(s string) (HistoryEntry, bool) {
	switch {
	case strings.HasPrefix(s, ":"):
		return HistoryEntry{Line: s[1:], Mode: modeCtrl}, true
	case strings.HasPrefix(s, ">"):
		return HistoryEntry{Line: s[1:], Mode: modeEval}, true
	}

	return HistoryEntry{}, false
}

// History is the persistent list of submitted lines, oldest first. A line
// entered again in the same mode moves to the end.
type History struct {
	mu      sync.RWMutex
	path    string
	entries []HistoryEntry
}

// NewHistory returns an empty history persisted at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with the contents of the history file. A
// missing file is an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer f.Close()

	h.entries = h.entries[:0]

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if e, ok := parseEntry(sc.Text()); ok && strings.TrimSpace(e.Line) != "" {
			h.entries = append(h.entries, e)
		}
	}

	return sc.Err()
}

// Add records line entered in mode and persists the change.
func (h *History) Add(line string, mode inputMode) error {
	e := HistoryEntry{Line: strings.TrimSpace(line), Mode: mode}
	if e.Line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == e {
		return nil
	}

	if i := slices.Index(h.entries, e); i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
		h.entries = append(h.entries, e)

		return h.save()
	}

	h.entries = append(h.entries, e)

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(e.String() + "\n"); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

// save rewrites the history file. Callers hold h.mu.
func (h *History) save() error {
	var b strings.Builder

	for _, e := range h.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}

	return os.WriteFile(h.path, []byte(b.String()), 0o600)
}

// Entry returns the entry at index i, oldest first.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}
