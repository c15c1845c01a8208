package live

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type realtimeServer struct {
	*httptest.Server
	received chan clientEvent
	script   []map[string]any
	header   chan http.Header
	query    chan string
}

func newRealtimeServer(t *testing.T, script ...map[string]any) *realtimeServer {
	t.Helper()
	rs := &realtimeServer{
		received: make(chan clientEvent, 64),
		script:   script,
		header:   make(chan http.Header, 1),
		query:    make(chan string, 1),
	}
	upgrader := websocket.Upgrader{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.header <- r.Header.Clone()
		rs.query <- r.URL.Query().Get("model")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var ev clientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		rs.received <- ev
		for _, out := range rs.script {
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		}
		for {
			var ev clientEvent
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			rs.received <- ev
			if ev.Type == eventResponseCreate {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
				return
			}
		}
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *realtimeServer) wsURL() string {
	return "ws" + strings.TrimPrefix(rs.URL, "http")
}

func (rs *realtimeServer) next(t *testing.T) clientEvent {
	t.Helper()
	select {
	case ev := <-rs.received:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no client event received")
		return clientEvent{}
	}
}

func TestOpenAISessionFlow(t *testing.T) {
	audio := []byte{0x01, 0x00, 0xff, 0x7f}
	rs := newRealtimeServer(t,
		map[string]any{"type": eventSessionCreated, "event_id": "evt_1"},
		map[string]any{"type": eventInputTranscriptionCompleted, "transcript": "I know Go"},
		map[string]any{"type": eventResponseAudioTranscriptDelta, "delta": "Great"},
		map[string]any{"type": eventResponseAudioDelta, "delta": base64.StdEncoding.EncodeToString(audio)},
		map[string]any{"type": eventError, "error": map[string]any{"type": "invalid_request_error", "message": "ignored"}},
		map[string]any{"type": eventResponseDone},
	)

	rec := newRecorder()
	tr := NewOpenAI("sk-test", WithOpenAIURL(rs.wsURL()))
	s, err := tr.Open(context.Background(), &Config{
		SystemInstruction:  "interview",
		InputTranscription: true,
	}, rec.callbacks())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	h := <-rs.header
	if got := h.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("Authorization = %q", got)
	}
	if got := <-rs.query; got != DefaultOpenAIModel {
		t.Errorf("model = %q", got)
	}

	update := rs.next(t)
	if update.Type != eventSessionUpdate || update.Session == nil {
		t.Fatalf("first event = %+v", update)
	}
	if update.Session.Instructions != "interview" || update.Session.Voice != DefaultOpenAIVoice {
		t.Errorf("session = %+v", update.Session)
	}
	if update.Session.InputAudioTranscription == nil || update.Session.TurnDetection.Type != "server_vad" {
		t.Errorf("session = %+v", update.Session)
	}
	if !strings.HasPrefix(update.EventID, "evt_") {
		t.Errorf("event id = %q", update.EventID)
	}

	if err := s.SendAudio([]byte{1, 2}, tr.InputFormat().MIMEType()); err != nil {
		t.Fatalf("SendAudio: %v", err)
	}
	if ev := rs.next(t); ev.Type != eventInputAudioBufferAppend || ev.Audio != base64.StdEncoding.EncodeToString([]byte{1, 2}) {
		t.Errorf("append event = %+v", ev)
	}
	if err := s.SendText("Hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if ev := rs.next(t); ev.Type != eventConversationItemCreate || ev.Item.Content[0].Text != "Hello" {
		t.Errorf("item event = %+v", ev)
	}
	if ev := rs.next(t); ev.Type != eventResponseCreate {
		t.Errorf("response event = %+v", ev)
	}

	rec.wait(t)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.events[0] != "open" || rec.events[len(rec.events)-1] != "close" {
		t.Errorf("events = %v", rec.events)
	}
	if len(rec.errs) != 0 {
		t.Errorf("unexpected errors: %v", rec.errs)
	}
	if len(rec.msgs) != 4 {
		t.Fatalf("messages = %d, want 4", len(rec.msgs))
	}
	if rec.msgs[0].InputTranscription != "I know Go" {
		t.Errorf("msg 0 = %+v", rec.msgs[0])
	}
	if rec.msgs[1].OutputTranscription != "Great" {
		t.Errorf("msg 1 = %+v", rec.msgs[1])
	}
	if len(rec.msgs[2].Audio) != 1 || string(rec.msgs[2].Audio[0]) != string(audio) {
		t.Errorf("msg 2 = %+v", rec.msgs[2])
	}
	if !rec.msgs[3].TurnComplete {
		t.Errorf("msg 3 = %+v", rec.msgs[3])
	}
	if c := rec.closes[0]; c.Code != websocket.CloseNormalClosure || c.Reason != "bye" {
		t.Errorf("close = %+v", c)
	}
}

func TestOpenAIDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tr := NewOpenAI("bad", WithOpenAIURL("ws"+strings.TrimPrefix(srv.URL, "http")))
	_, err := tr.Open(context.Background(), nil, Callbacks{})
	if err == nil {
		t.Fatal("Open succeeded")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want http status", err)
	}
}

func TestConvertServerEvent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Message
		wantNil bool
	}{
		{"speech started", `{"type":"input_audio_buffer.speech_started"}`, Message{Interrupted: true}, false},
		{"text done", `{"type":"response.text.done","text":"Hi"}`, Message{Text: "Hi"}, false},
		{"bad audio", `{"type":"response.audio.delta","delta":"***"}`, Message{}, true},
		{"unknown", `{"type":"rate_limits.updated"}`, Message{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev serverEvent
			if err := json.Unmarshal([]byte(tt.raw), &ev); err != nil {
				t.Fatal(err)
			}
			got := convertServerEvent(&ev)
			if tt.wantNil {
				if got != nil {
					t.Errorf("got %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Text != tt.want.Text || got.Interrupted != tt.want.Interrupted {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
