package live

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jagtap-suraj/sensai/pkg/audio/pcm"
)

// ErrSessionClosed is returned by Session send methods after Close.
var ErrSessionClosed = errors.New("live: session closed")

// Config describes one streaming session.
type Config struct {
	// Model overrides the backend's default model.
	Model string

	// SystemInstruction primes the model with the interview persona.
	SystemInstruction string

	// Voice selects a prebuilt voice; empty uses the backend default.
	Voice string

	// InputTranscription enables transcription of the user's audio.
	InputTranscription bool

	// OutputTranscription enables transcription of the model's audio.
	OutputTranscription bool
}

// Callbacks receive the inbound side of a session. Nil callbacks are skipped.
type Callbacks struct {
	OnOpen    func(Session)
	OnMessage func(*Message)
	OnError   func(error)
	OnClose   func(CloseInfo)
}

// CloseInfo describes why a session ended.
type CloseInfo struct {
	// Code is the WebSocket close code, 0 when unknown.
	Code int

	// Reason is the close reason reported by the peer, if any.
	Reason string

	// Local is true when Close was called on this side.
	Local bool
}

func (c CloseInfo) String() string {
	switch {
	case c.Local:
		return "closed locally"
	case c.Reason != "":
		return fmt.Sprintf("closed by server (%d): %s", c.Code, c.Reason)
	case c.Code != 0:
		return fmt.Sprintf("closed by server (%d)", c.Code)
	default:
		return "connection lost"
	}
}

// Message is one inbound payload. Any combination of fields may be set.
type Message struct {
	// InputTranscription is a fragment of the user's transcribed speech.
	InputTranscription string

	// OutputTranscription is a fragment of the model's transcribed speech.
	OutputTranscription string

	// Text is direct text output from the model.
	Text string

	// Audio holds decoded PCM16 chunks at the transport's output rate.
	Audio [][]byte

	// TurnComplete marks the end of the model's turn.
	TurnComplete bool

	// Interrupted reports that the user barged in over the model.
	Interrupted bool
}

// Empty reports whether the message carries nothing the caller acts on.
func (m *Message) Empty() bool {
	return m.InputTranscription == "" && m.OutputTranscription == "" &&
		m.Text == "" && len(m.Audio) == 0 && !m.TurnComplete && !m.Interrupted
}

// Session is an open stream.
type Session interface {
	// SendAudio sends one PCM16 frame. It does not wait for a reply.
	SendAudio(frame []byte, mimeType string) error

	// SendText sends a complete user turn.
	SendText(text string) error

	// Close ends the session. It is idempotent and safe to call from a callback.
	Close() error
}

// Transport opens sessions against one backend.
type Transport interface {
	Open(ctx context.Context, cfg *Config, cb Callbacks) (Session, error)

	// InputFormat is the audio format SendAudio expects.
	InputFormat() pcm.Format

	// OutputFormat is the audio format of Message.Audio.
	OutputFormat() pcm.Format
}

// dispatcher delivers callbacks for one session. All methods are called from
// the session's reader goroutine.
type dispatcher struct {
	cb     Callbacks
	closed atomic.Bool
}

func (d *dispatcher) open(s Session) {
	if d.cb.OnOpen != nil {
		d.cb.OnOpen(s)
	}
}

func (d *dispatcher) message(m *Message) {
	if m == nil || m.Empty() || d.closed.Load() {
		return
	}
	if d.cb.OnMessage != nil {
		d.cb.OnMessage(m)
	}
}

func (d *dispatcher) fail(err error) {
	if d.closed.Load() {
		return
	}
	if d.cb.OnError != nil {
		d.cb.OnError(err)
	}
}

func (d *dispatcher) close(info CloseInfo) {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	if d.cb.OnClose != nil {
		d.cb.OnClose(info)
	}
}
