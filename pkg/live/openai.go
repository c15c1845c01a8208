package live

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jagtap-suraj/sensai/pkg/audio/pcm"
)

const (
	// DefaultOpenAIURL is the OpenAI Realtime WebSocket endpoint.
	DefaultOpenAIURL = "wss://api.openai.com/v1/realtime"

	// DefaultOpenAIModel is used when Config.Model is empty.
	DefaultOpenAIModel = "gpt-4o-realtime-preview"

	// DefaultOpenAIVoice is used when Config.Voice is empty.
	DefaultOpenAIVoice = "alloy"
)

// OpenAI is a Transport backed by the OpenAI Realtime API.
type OpenAI struct {
	apiKey string
	url    string
	dialer *websocket.Dialer
}

var _ Transport = (*OpenAI)(nil)

// OpenAIOption configures an OpenAI transport.
type OpenAIOption func(*OpenAI)

// WithOpenAIURL overrides the WebSocket endpoint.
func WithOpenAIURL(u string) OpenAIOption {
	return func(o *OpenAI) {
		if u != "" {
			o.url = u
		}
	}
}

// WithDialer sets the WebSocket dialer.
func WithDialer(d *websocket.Dialer) OpenAIOption {
	return func(o *OpenAI) {
		if d != nil {
			o.dialer = d
		}
	}
}

// NewOpenAI returns an OpenAI Realtime transport.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{
		apiKey: apiKey,
		url:    DefaultOpenAIURL,
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// InputFormat implements Transport.
func (o *OpenAI) InputFormat() pcm.Format { return pcm.L16Mono24K }

// OutputFormat implements Transport.
func (o *OpenAI) OutputFormat() pcm.Format { return pcm.L16Mono24K }

// Open implements Transport. The session is configured with a
// session.update event before the reader goroutine starts.
func (o *OpenAI) Open(ctx context.Context, cfg *Config, cb Callbacks) (Session, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	u, err := url.Parse(o.url)
	if err != nil {
		return nil, fmt.Errorf("live: parse openai url: %w", err)
	}
	q := u.Query()
	q.Set("model", model)
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+o.apiKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := o.dialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("live: connect openai %s: http %d: %w", model, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("live: connect openai %s: %w", model, err)
	}

	s := &openaiSession{conn: conn, d: &dispatcher{cb: cb}}
	if err := s.send(sessionUpdate(cfg)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("live: configure openai session: %w", err)
	}
	go s.readLoop()
	return s, nil
}

func sessionUpdate(cfg *Config) clientEvent {
	voice := cfg.Voice
	if voice == "" {
		voice = DefaultOpenAIVoice
	}
	sess := &sessionConfig{
		Modalities:        []string{"audio", "text"},
		Instructions:      cfg.SystemInstruction,
		Voice:             voice,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		TurnDetection:     &turnDetection{Type: "server_vad"},
	}
	if cfg.InputTranscription {
		sess.InputAudioTranscription = &transcriptionConfig{Model: "whisper-1"}
	}
	return clientEvent{Type: eventSessionUpdate, Session: sess}
}

type openaiSession struct {
	conn *websocket.Conn
	d    *dispatcher

	mu        sync.Mutex
	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func (s *openaiSession) SendAudio(frame []byte, mimeType string) error {
	if s.closing.Load() {
		return ErrSessionClosed
	}
	return s.send(clientEvent{
		Type:  eventInputAudioBufferAppend,
		Audio: base64.StdEncoding.EncodeToString(frame),
	})
}

func (s *openaiSession) SendText(text string) error {
	if s.closing.Load() {
		return ErrSessionClosed
	}
	err := s.send(clientEvent{
		Type: eventConversationItemCreate,
		Item: &conversationItem{
			Type:    "message",
			Role:    "user",
			Content: []contentPart{{Type: "input_text", Text: text}},
		},
	})
	if err != nil {
		return err
	}
	return s.send(clientEvent{Type: eventResponseCreate})
}

func (s *openaiSession) Close() error {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *openaiSession) send(ev clientEvent) error {
	ev.EventID = newEventID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) && ev.Type != eventInputAudioBufferAppend {
		slog.Debug("live: openai send", "type", ev.Type, "event_id", ev.EventID)
	}
	return s.conn.WriteJSON(ev)
}

func (s *openaiSession) readLoop() {
	s.d.open(s)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			info, clean := classifyClose(err, s.closing.Load())
			if !clean {
				s.d.fail(fmt.Errorf("live: openai read: %w", err))
			}
			s.d.close(info)
			return
		}
		var ev serverEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.Warn("live: openai malformed event", "error", err, "len", len(data))
			continue
		}
		s.d.message(convertServerEvent(&ev))
	}
}

// convertServerEvent maps a Realtime server event to a Message. Events the
// interview does not act on return nil.
func convertServerEvent(ev *serverEvent) *Message {
	switch ev.Type {
	case eventInputTranscriptionCompleted:
		return &Message{InputTranscription: ev.Transcript}
	case eventResponseAudioTranscriptDelta:
		return &Message{OutputTranscription: ev.Delta}
	case eventResponseTextDone:
		return &Message{Text: ev.Text}
	case eventResponseAudioDelta:
		audio, err := base64.StdEncoding.DecodeString(ev.Delta)
		if err != nil {
			slog.Warn("live: openai audio delta not base64", "error", err)
			return nil
		}
		return &Message{Audio: [][]byte{audio}}
	case eventResponseDone:
		return &Message{TurnComplete: true}
	case eventSpeechStarted:
		return &Message{Interrupted: true}
	case eventSessionCreated:
		slog.Debug("live: openai session created", "event_id", ev.EventID)
	case eventError:
		if ev.Error != nil {
			slog.Warn("live: openai error event", "type", ev.Error.Type, "code", ev.Error.Code, "message", ev.Error.Message)
		}
	}
	return nil
}

func newEventID() string {
	return "evt_" + uuid.New().String()[:12]
}
