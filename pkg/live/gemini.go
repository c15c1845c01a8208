package live

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jagtap-suraj/sensai/pkg/audio/pcm"
	"google.golang.org/genai"
)

const (
	// DefaultGeminiModel is the Live model used when Config.Model is empty.
	DefaultGeminiModel = "gemini-2.0-flash-live-001"

	// DefaultGeminiVoice is the prebuilt voice used when Config.Voice is empty.
	DefaultGeminiVoice = "Kore"
)

// geminiConn is the subset of *genai.Session used by the adapter.
type geminiConn interface {
	SendRealtimeInput(genai.LiveRealtimeInput) error
	SendClientContent(genai.LiveClientContentInput) error
	Receive() (*genai.LiveServerMessage, error)
	Close() error
}

type geminiDialer func(ctx context.Context, model string, cfg *genai.LiveConnectConfig) (geminiConn, error)

// Gemini is a Transport backed by the Gemini Live API.
type Gemini struct {
	dial geminiDialer
}

var _ Transport = (*Gemini)(nil)

// NewGemini returns a Gemini transport using client.
func NewGemini(client *genai.Client) *Gemini {
	return &Gemini{
		dial: func(ctx context.Context, model string, cfg *genai.LiveConnectConfig) (geminiConn, error) {
			return client.Live.Connect(ctx, model, cfg)
		},
	}
}

// InputFormat implements Transport.
func (g *Gemini) InputFormat() pcm.Format { return pcm.L16Mono16K }

// OutputFormat implements Transport.
func (g *Gemini) OutputFormat() pcm.Format { return pcm.L16Mono24K }

// Open implements Transport. The reader goroutine calls OnOpen before the
// first Receive, so OnOpen may run before Open returns.
func (g *Gemini) Open(ctx context.Context, cfg *Config, cb Callbacks) (Session, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	conn, err := g.dial(ctx, model, geminiConnectConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("live: connect gemini %s: %w", model, err)
	}
	s := &geminiSession{conn: conn, d: &dispatcher{cb: cb}}
	go s.readLoop()
	return s, nil
}

func geminiConnectConfig(cfg *Config) *genai.LiveConnectConfig {
	voice := cfg.Voice
	if voice == "" {
		voice = DefaultGeminiVoice
	}
	lc := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
	if cfg.SystemInstruction != "" {
		lc.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	if cfg.InputTranscription {
		lc.InputAudioTranscription = &genai.AudioTranscriptionConfig{}
	}
	if cfg.OutputTranscription {
		lc.OutputAudioTranscription = &genai.AudioTranscriptionConfig{}
	}
	return lc
}

type geminiSession struct {
	conn geminiConn
	d    *dispatcher

	sendMu    sync.Mutex
	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func (s *geminiSession) SendAudio(frame []byte, mimeType string) error {
	if s.closing.Load() {
		return ErrSessionClosed
	}
	if mimeType == "" {
		mimeType = pcm.L16Mono16K.MIMEType()
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.conn.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: frame, MIMEType: mimeType},
	})
}

func (s *geminiSession) SendText(text string) error {
	if s.closing.Load() {
		return ErrSessionClosed
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.conn.SendClientContent(genai.LiveClientContentInput{
		Turns:        []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		TurnComplete: genai.Ptr(true),
	})
}

func (s *geminiSession) Close() error {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *geminiSession) readLoop() {
	s.d.open(s)
	for {
		msg, err := s.conn.Receive()
		if err != nil {
			info, clean := classifyClose(err, s.closing.Load())
			if !clean {
				s.d.fail(fmt.Errorf("live: gemini receive: %w", err))
			}
			s.d.close(info)
			return
		}
		if msg == nil {
			continue
		}
		if msg.GoAway != nil {
			slog.Warn("live: gemini server going away", "time_left", msg.GoAway.TimeLeft)
		}
		s.d.message(convertServerMessage(msg))
	}
}

// convertServerMessage extracts the payloads the interview acts on from a
// Gemini server message. It returns nil when there are none.
func convertServerMessage(msg *genai.LiveServerMessage) *Message {
	if msg == nil || msg.ServerContent == nil {
		return nil
	}
	sc := msg.ServerContent
	m := &Message{
		TurnComplete: sc.TurnComplete,
		Interrupted:  sc.Interrupted,
	}
	if sc.InputTranscription != nil {
		m.InputTranscription = sc.InputTranscription.Text
	}
	if sc.OutputTranscription != nil {
		m.OutputTranscription = sc.OutputTranscription.Text
	}
	if sc.ModelTurn != nil {
		var text strings.Builder
		for _, part := range sc.ModelTurn.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				if strings.HasPrefix(part.InlineData.MIMEType, "audio/") || part.InlineData.MIMEType == "" {
					m.Audio = append(m.Audio, part.InlineData.Data)
				}
			}
			text.WriteString(part.Text)
		}
		m.Text = text.String()
	}
	if m.Empty() {
		return nil
	}
	return m
}
