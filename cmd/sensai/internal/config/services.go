package config

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jagtap-suraj/sensai/pkg/archive"
)

// Service file names.
const (
	ServiceGemini  = "gemini"
	ServiceOpenAI  = "openai"
	ServiceSession = "session"
	ServiceStore   = "store"
	ServiceArchive = "archive"
)

// Services lists every known service, in display order.
var Services = []string{ServiceGemini, ServiceOpenAI, ServiceSession, ServiceStore, ServiceArchive}

// Environment fallbacks for API keys.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Provider names accepted by Session.Transport and Session.Feedback.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Gemini configures the Gemini API.
type Gemini struct {
	APIKey        string `yaml:"api_key,omitempty"`
	LiveModel     string `yaml:"live_model,omitempty"`
	FeedbackModel string `yaml:"feedback_model,omitempty"`
	ResumeModel   string `yaml:"resume_model,omitempty"`
	Voice         string `yaml:"voice,omitempty"`
}

// OpenAI configures the OpenAI API.
type OpenAI struct {
	APIKey        string `yaml:"api_key,omitempty"`
	BaseURL       string `yaml:"base_url,omitempty"`
	RealtimeURL   string `yaml:"realtime_url,omitempty"`
	RealtimeModel string `yaml:"realtime_model,omitempty"`
	FeedbackModel string `yaml:"feedback_model,omitempty"`
	Voice         string `yaml:"voice,omitempty"`
}

// Session configures live interviews.
type Session struct {
	// Transport and Feedback name a provider: gemini (default) or openai.
	Transport string `yaml:"transport,omitempty"`
	Feedback  string `yaml:"feedback,omitempty"`

	OpeningLine string `yaml:"opening_line,omitempty"`

	// Debounce and FinalizeTimeout are Go durations such as 750ms or 2m.
	Debounce        string `yaml:"debounce,omitempty"`
	FinalizeTimeout string `yaml:"finalize_timeout,omitempty"`

	FrameSize    int  `yaml:"frame_size,omitempty"`
	InputDevice  *int `yaml:"input_device,omitempty"`
	OutputDevice *int `yaml:"output_device,omitempty"`
}

// Store configures the interview record store.
type Store struct {
	Dir string `yaml:"dir,omitempty"`
}

// Archive configures where finished interviews are archived. An empty
// Kind disables archiving.
type Archive struct {
	// Kind is local or s3.
	Kind string            `yaml:"kind,omitempty"`
	Dir  string            `yaml:"dir,omitempty"`
	S3   *archive.S3Config `yaml:"s3,omitempty"`
}

// LoadGemini loads gemini.yaml, falling back to $GEMINI_API_KEY.
func LoadGemini(contextDir string) (*Gemini, error) {
	g, err := LoadOptional[Gemini](contextDir, ServiceGemini)
	if err != nil {
		return nil, err
	}
	g.APIKey = cmp.Or(g.APIKey, os.Getenv(EnvGeminiAPIKey))
	return g, nil
}

// LoadOpenAI loads openai.yaml, falling back to $OPENAI_API_KEY.
func LoadOpenAI(contextDir string) (*OpenAI, error) {
	o, err := LoadOptional[OpenAI](contextDir, ServiceOpenAI)
	if err != nil {
		return nil, err
	}
	o.APIKey = cmp.Or(o.APIKey, os.Getenv(EnvOpenAIAPIKey))
	return o, nil
}

// LoadSession loads session.yaml and validates it.
func LoadSession(contextDir string) (*Session, error) {
	s, err := LoadOptional[Session](contextDir, ServiceSession)
	if err != nil {
		return nil, err
	}
	s.Transport = cmp.Or(s.Transport, ProviderGemini)
	s.Feedback = cmp.Or(s.Feedback, ProviderGemini)
	for _, p := range []string{s.Transport, s.Feedback} {
		if p != ProviderGemini && p != ProviderOpenAI {
			return nil, fmt.Errorf("session: unknown provider %q (want gemini or openai)", p)
		}
	}
	if _, err := s.DebounceDuration(); err != nil {
		return nil, err
	}
	if _, err := s.FinalizeTimeoutDuration(); err != nil {
		return nil, err
	}
	return s, nil
}

// DebounceDuration parses Debounce; zero means the default.
func (s *Session) DebounceDuration() (time.Duration, error) {
	return parseDuration("debounce", s.Debounce)
}

// FinalizeTimeoutDuration parses FinalizeTimeout; zero means the default.
func (s *Session) FinalizeTimeoutDuration() (time.Duration, error) {
	return parseDuration("finalize_timeout", s.FinalizeTimeout)
}

// Device returns the configured device index, or -1 for the default.
func Device(idx *int) int {
	if idx == nil {
		return -1
	}
	return *idx
}

func parseDuration(field, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("session: invalid %s %q", field, v)
	}
	return d, nil
}

// LoadStore loads store.yaml. The record directory defaults to
// "{contextDir}/records".
func LoadStore(contextDir string) (*Store, error) {
	s, err := LoadOptional[Store](contextDir, ServiceStore)
	if err != nil {
		return nil, err
	}
	s.Dir = cmp.Or(s.Dir, filepath.Join(contextDir, "records"))
	return s, nil
}

// LoadArchive loads archive.yaml.
func LoadArchive(contextDir string) (*Archive, error) {
	a, err := LoadOptional[Archive](contextDir, ServiceArchive)
	if err != nil {
		return nil, err
	}
	switch a.Kind {
	case "":
	case "local":
		a.Dir = cmp.Or(a.Dir, filepath.Join(contextDir, "archive"))
	case "s3":
		if a.S3 == nil || a.S3.Bucket == "" {
			return nil, fmt.Errorf("archive: s3.bucket is required")
		}
	default:
		return nil, fmt.Errorf("archive: unknown kind %q (want local or s3)", a.Kind)
	}
	return a, nil
}
