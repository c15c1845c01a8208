package transcript

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last user fragment before
// the pending utterance is committed.
const DefaultDebounce = 750 * time.Millisecond

// Speaker identifies who said a turn.
type Speaker int

const (
	// User is the interview candidate.
	User Speaker = iota
	// Agent is the remote interviewer model.
	Agent
)

// String returns the label used in rendered transcripts.
func (s Speaker) String() string {
	switch s {
	case User:
		return "User"
	case Agent:
		return "Interviewer"
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Speaker) MarshalText() ([]byte, error) {
	switch s {
	case User:
		return []byte("USER"), nil
	case Agent:
		return []byte("AGENT"), nil
	}
	return []byte("UNKNOWN"), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Speaker) UnmarshalText(b []byte) error {
	switch string(b) {
	case "USER":
		*s = User
	case "AGENT":
		*s = Agent
	default:
		return fmt.Errorf("transcript: unknown speaker %q", b)
	}
	return nil
}

// Entry is one committed turn.
type Entry struct {
	Speaker   Speaker `json:"speaker"`
	Text      string  `json:"text"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds, strictly increasing
}

// String renders the entry as "Speaker: text".
func (e Entry) String() string {
	return e.Speaker.String() + ": " + e.Text
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(a *Assembler) {
		if d > 0 {
			a.window = d
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithCommitHook registers fn to be called with every committed entry, in
// commit order. fn runs after the Assembler's lock is released, so it may
// read Entries or Pending.
func WithCommitHook(fn func(Entry)) Option {
	return func(a *Assembler) { a.onCommit = fn }
}

// Assembler merges fragments into entries. It is safe for concurrent use.
type Assembler struct {
	window   time.Duration
	now      func() time.Time
	onCommit func(Entry)

	mu      sync.Mutex
	entries []Entry
	user    strings.Builder
	agent   strings.Builder
	timer   *time.Timer
	gen     uint64 // invalidates timers that fire after a forced flush
	last    int64
	closed  bool

	notify    []Entry // committed, not yet passed to onCommit
	notifying bool
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		window: DefaultDebounce,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OnUserFragment appends a user fragment and restarts the debounce timer.
// An open agent turn is committed first.
func (a *Assembler) OnUserFragment(text string) {
	a.mu.Lock()
	defer a.unlock()
	if a.closed {
		return
	}
	a.commitAgentLocked()
	a.user.WriteString(text)
	a.armLocked()
}

// OnAgentTurn commits pending user text, then appends text as a complete
// agent entry.
func (a *Assembler) OnAgentTurn(text string) {
	a.mu.Lock()
	defer a.unlock()
	if a.closed {
		return
	}
	a.commitUserLocked()
	a.commitAgentLocked()
	a.commitLocked(Agent, text)
}

// OnAgentFragment commits pending user text, then extends the open agent
// turn. The turn is committed by EndAgentTurn, the next user fragment,
// OnAgentTurn or FlushPending.
func (a *Assembler) OnAgentFragment(text string) {
	a.mu.Lock()
	defer a.unlock()
	if a.closed {
		return
	}
	a.commitUserLocked()
	a.agent.WriteString(text)
}

// EndAgentTurn commits the open agent turn, if any.
func (a *Assembler) EndAgentTurn() {
	a.mu.Lock()
	defer a.unlock()
	if a.closed {
		return
	}
	a.commitAgentLocked()
}

// AddUserTurn commits pending text, then appends text as a complete user
// entry. It is used for text the client sends itself.
func (a *Assembler) AddUserTurn(text string) {
	a.mu.Lock()
	defer a.unlock()
	if a.closed {
		return
	}
	a.commitAgentLocked()
	a.commitUserLocked()
	a.commitLocked(User, text)
}

// FlushPending commits whatever is pending on either side.
func (a *Assembler) FlushPending() {
	a.mu.Lock()
	defer a.unlock()
	a.commitUserLocked()
	a.commitAgentLocked()
}

// Close stops the debounce timer. Pending text is discarded unless
// FlushPending was called first; later fragments are ignored.
func (a *Assembler) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.stopTimerLocked()
	a.user.Reset()
	a.agent.Reset()
}

// Pending returns the uncommitted user text.
func (a *Assembler) Pending() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return normalize(a.user.String())
}

// Entries returns a copy of the committed entries.
func (a *Assembler) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Text renders the committed entries one per line.
func (a *Assembler) Text() string {
	return Format(a.Entries())
}

// Format renders entries as "Speaker: text" lines.
func Format(entries []Entry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

func (a *Assembler) armLocked() {
	a.stopTimerLocked()
	gen := a.gen
	a.timer = time.AfterFunc(a.window, func() {
		a.mu.Lock()
		defer a.unlock()
		if a.closed || gen != a.gen {
			return
		}
		a.commitUserLocked()
	})
}

func (a *Assembler) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
}

func (a *Assembler) commitUserLocked() {
	a.stopTimerLocked()
	text := a.user.String()
	a.user.Reset()
	a.commitLocked(User, text)
}

func (a *Assembler) commitAgentLocked() {
	text := a.agent.String()
	a.agent.Reset()
	a.commitLocked(Agent, text)
}

func (a *Assembler) commitLocked(speaker Speaker, text string) {
	text = normalize(text)
	if text == "" {
		return
	}
	ts := a.now().UnixMilli()
	if ts <= a.last {
		ts = a.last + 1
	}
	a.last = ts
	e := Entry{Speaker: speaker, Text: text, Timestamp: ts}
	a.entries = append(a.entries, e)
	if a.onCommit != nil {
		a.notify = append(a.notify, e)
	}
}

// unlock releases mu, then passes entries committed under it to the commit
// hook. One goroutine runs the hook at a time, in commit order.
func (a *Assembler) unlock() {
	if a.notifying || len(a.notify) == 0 {
		a.mu.Unlock()
		return
	}
	a.notifying = true
	for len(a.notify) > 0 {
		batch := a.notify
		a.notify = nil
		a.mu.Unlock()
		for _, e := range batch {
			a.onCommit(e)
		}
		a.mu.Lock()
	}
	a.notifying = false
	a.mu.Unlock()
}

// normalize collapses whitespace runs so fragments joined with or without
// leading spaces read naturally.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
