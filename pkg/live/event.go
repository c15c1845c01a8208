package live

// OpenAI Realtime client events.
const (
	eventSessionUpdate          = "session.update"
	eventInputAudioBufferAppend = "input_audio_buffer.append"
	eventConversationItemCreate = "conversation.item.create"
	eventResponseCreate         = "response.create"
)

// OpenAI Realtime server events.
const (
	eventError                        = "error"
	eventSessionCreated               = "session.created"
	eventSpeechStarted                = "input_audio_buffer.speech_started"
	eventInputTranscriptionCompleted  = "conversation.item.input_audio_transcription.completed"
	eventResponseAudioDelta           = "response.audio.delta"
	eventResponseAudioTranscriptDelta = "response.audio_transcript.delta"
	eventResponseTextDone             = "response.text.done"
	eventResponseDone                 = "response.done"
)

type clientEvent struct {
	EventID string            `json:"event_id,omitempty"`
	Type    string            `json:"type"`
	Session *sessionConfig    `json:"session,omitempty"`
	Audio   string            `json:"audio,omitempty"`
	Item    *conversationItem `json:"item,omitempty"`
}

type sessionConfig struct {
	Modalities              []string             `json:"modalities,omitempty"`
	Instructions            string               `json:"instructions,omitempty"`
	Voice                   string               `json:"voice,omitempty"`
	InputAudioFormat        string               `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string               `json:"output_audio_format,omitempty"`
	InputAudioTranscription *transcriptionConfig `json:"input_audio_transcription,omitempty"`
	TurnDetection           *turnDetection       `json:"turn_detection,omitempty"`
}

type transcriptionConfig struct {
	Model string `json:"model"`
}

type turnDetection struct {
	Type string `json:"type"`
}

type conversationItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role,omitempty"`
	Content []contentPart `json:"content,omitempty"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type serverEvent struct {
	Type       string    `json:"type"`
	EventID    string    `json:"event_id,omitempty"`
	Transcript string    `json:"transcript,omitempty"`
	Delta      string    `json:"delta,omitempty"`
	Text       string    `json:"text,omitempty"`
	Error      *apiError `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
