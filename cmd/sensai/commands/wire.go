package commands

import (
	"cmp"
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/jagtap-suraj/sensai/cmd/sensai/internal/config"
	"github.com/jagtap-suraj/sensai/pkg/archive"
	"github.com/jagtap-suraj/sensai/pkg/feedback"
	"github.com/jagtap-suraj/sensai/pkg/live"
	"github.com/jagtap-suraj/sensai/pkg/records"
)

// Test overrides.
var (
	testStore     records.Store
	testGenerator feedback.Generator
	testTransport live.Transport
	testArchive   archive.FileStore
)

// env holds the service configuration of the resolved context.
type env struct {
	dir     string
	session *config.Session
	gemini  *config.Gemini
	openai  *config.OpenAI

	client *genai.Client
}

func loadEnv() (*env, error) {
	dir, err := contextDir()
	if err != nil {
		return nil, err
	}
	e := &env{dir: dir}
	if e.session, err = config.LoadSession(dir); err != nil {
		return nil, err
	}
	if e.gemini, err = config.LoadGemini(dir); err != nil {
		return nil, err
	}
	if e.openai, err = config.LoadOpenAI(dir); err != nil {
		return nil, err
	}
	return e, nil
}

// geminiClient returns a shared client, or nil without error when no API
// key is configured and optional is set.
func (e *env) geminiClient(ctx context.Context, optional bool) (*genai.Client, error) {
	if e.client != nil {
		return e.client, nil
	}
	if e.gemini.APIKey == "" {
		if optional {
			return nil, nil
		}
		return nil, fmt.Errorf("gemini api key not configured; run 'sensai config set <context> gemini api_key <key>' or set %s", config.EnvGeminiAPIKey)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	e.client = client
	return client, nil
}

func (e *env) requireOpenAIKey() error {
	if e.openai.APIKey == "" {
		return fmt.Errorf("openai api key not configured; run 'sensai config set <context> openai api_key <key>' or set %s", config.EnvOpenAIAPIKey)
	}
	return nil
}

func (e *env) openStore() (records.Store, error) {
	if testStore != nil {
		return testStore, nil
	}
	sc, err := config.LoadStore(e.dir)
	if err != nil {
		return nil, err
	}
	return records.NewBadger(records.BadgerOptions{Dir: sc.Dir})
}

// records opens the record service. The feedback generator is only built
// when withFeedback is set.
func (e *env) records(ctx context.Context, withFeedback bool) (*records.Service, func() error, error) {
	store, err := e.openStore()
	if err != nil {
		return nil, nil, err
	}
	var gen feedback.Generator
	if withFeedback {
		if gen, err = e.generator(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
	}
	return records.NewService(store, gen), store.Close, nil
}

func (e *env) generator(ctx context.Context) (feedback.Generator, error) {
	if testGenerator != nil {
		return testGenerator, nil
	}
	switch e.session.Feedback {
	case config.ProviderOpenAI:
		if err := e.requireOpenAIKey(); err != nil {
			return nil, err
		}
		return feedback.NewOpenAI(e.openai.APIKey, e.openai.BaseURL, e.openai.FeedbackModel), nil
	default:
		client, err := e.geminiClient(ctx, false)
		if err != nil {
			return nil, err
		}
		return feedback.NewGemini(client, e.gemini.FeedbackModel), nil
	}
}

// transport returns the live transport with its model and voice.
func (e *env) transport(ctx context.Context) (live.Transport, string, string, error) {
	if testTransport != nil {
		return testTransport, "test-model", "test-voice", nil
	}
	switch e.session.Transport {
	case config.ProviderOpenAI:
		if err := e.requireOpenAIKey(); err != nil {
			return nil, "", "", err
		}
		t := live.NewOpenAI(e.openai.APIKey, live.WithOpenAIURL(e.openai.RealtimeURL))
		return t, cmp.Or(e.openai.RealtimeModel, live.DefaultOpenAIModel), cmp.Or(e.openai.Voice, live.DefaultOpenAIVoice), nil
	default:
		client, err := e.geminiClient(ctx, false)
		if err != nil {
			return nil, "", "", err
		}
		return live.NewGemini(client), cmp.Or(e.gemini.LiveModel, live.DefaultGeminiModel), cmp.Or(e.gemini.Voice, live.DefaultGeminiVoice), nil
	}
}

// archiver returns nil when archiving is disabled.
func (e *env) archiver() (*archive.Archiver, error) {
	if testArchive != nil {
		return archive.New(testArchive), nil
	}
	ac, err := config.LoadArchive(e.dir)
	if err != nil {
		return nil, err
	}
	switch ac.Kind {
	case "local":
		store, err := archive.NewLocal(ac.Dir)
		if err != nil {
			return nil, err
		}
		return archive.New(store), nil
	case "s3":
		return archive.New(archive.NewS3(archive.NewS3Client(*ac.S3), ac.S3.Bucket, ac.S3.Prefix)), nil
	}
	return nil, nil
}
