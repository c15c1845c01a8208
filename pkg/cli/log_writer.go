package cli

import (
	"strings"
	"sync"
)

// LogWriter implements io.Writer and keeps the most recent lines for
// display in a live frame. It is safe for concurrent use.
type LogWriter struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
	ch    chan string
}

// NewLogWriter creates a log writer that keeps maxLines lines.
func NewLogWriter(maxLines int) *LogWriter {
	return &LogWriter{
		lines: make([]string, max(maxLines, 1)),
		ch:    make(chan string, 100),
	}
}

// Write splits p on newlines and records each line.
func (w *LogWriter) Write(p []byte) (n int, err error) {
	text := strings.TrimRight(string(p), "\n")
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		w.lines[w.next] = line
		w.next = (w.next + 1) % len(w.lines)
		if w.next == 0 {
			w.full = true
		}
		select {
		case w.ch <- line:
		default:
		}
	}
	return len(p), nil
}

// Lines returns the buffered lines, oldest first.
func (w *LogWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.full {
		return append([]string(nil), w.lines[:w.next]...)
	}
	out := make([]string, 0, len(w.lines))
	out = append(out, w.lines[w.next:]...)
	return append(out, w.lines[:w.next]...)
}

// Channel returns the notification channel for new lines. Lines are
// dropped from the channel, not the buffer, when nobody is reading.
func (w *LogWriter) Channel() <-chan string {
	return w.ch
}
