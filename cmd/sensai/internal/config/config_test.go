package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestContextLifecycle(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}

	if names, _ := cfg.ListContexts(); len(names) != 0 {
		t.Fatalf("contexts = %v, want none", names)
	}
	if _, err := cfg.ResolveContext(""); err == nil {
		t.Fatal("ResolveContext with no current context succeeded")
	}

	for _, name := range []string{"dev", "prod"} {
		if err := cfg.AddContext(name); err != nil {
			t.Fatal(err)
		}
	}
	if err := cfg.AddContext("dev"); err == nil {
		t.Error("duplicate AddContext succeeded")
	}
	if err := cfg.UseContext("dev"); err != nil {
		t.Fatal(err)
	}

	reloaded, _ := LoadFrom(dir)
	if reloaded.CurrentContext != "dev" {
		t.Errorf("current = %q after reload, want dev", reloaded.CurrentContext)
	}
	got, err := reloaded.ResolveContext("")
	if err != nil || got != reloaded.ContextDir("dev") {
		t.Errorf("ResolveContext = %q, %v", got, err)
	}

	names, _ := cfg.ListContexts()
	if !slices.Equal(names, []string{"dev", "prod"}) {
		t.Errorf("contexts = %v", names)
	}

	if err := cfg.DeleteContext("dev"); err != nil {
		t.Fatal(err)
	}
	if cfg.CurrentContext != "" {
		t.Errorf("current = %q after deleting it", cfg.CurrentContext)
	}
	if err := cfg.UseContext("dev"); err == nil {
		t.Error("UseContext on deleted context succeeded")
	}
}

func TestValidateContextName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"dev", true},
		{"my-context_1", true},
		{"", false},
		{"../escape", false},
		{`a\b`, false},
		{".hidden", false},
	}
	for _, tt := range tests {
		if err := ValidateContextName(tt.name); (err == nil) != tt.ok {
			t.Errorf("ValidateContextName(%q) = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
}

func TestServiceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := &Gemini{APIKey: "key", LiveModel: "live"}
	if err := SaveService(dir, ServiceGemini, in); err != nil {
		t.Fatal(err)
	}
	out, err := LoadService[Gemini](dir, ServiceGemini)
	if err != nil {
		t.Fatal(err)
	}
	if *out != *in {
		t.Errorf("got %+v, want %+v", out, in)
	}
	services, _ := ListServices(dir)
	if !slices.Equal(services, []string{"gemini"}) {
		t.Errorf("services = %v", services)
	}
	if _, err := LoadService[Gemini](dir, "missing"); err == nil {
		t.Error("LoadService on missing file succeeded")
	}
}

func TestAPIKeyEnvFallback(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvGeminiAPIKey, "from-env")
	t.Setenv(EnvOpenAIAPIKey, "openai-env")

	g, err := LoadGemini(dir)
	if err != nil {
		t.Fatal(err)
	}
	if g.APIKey != "from-env" {
		t.Errorf("gemini key = %q", g.APIKey)
	}

	SaveService(dir, ServiceOpenAI, &OpenAI{APIKey: "from-file"})
	o, err := LoadOpenAI(dir)
	if err != nil {
		t.Fatal(err)
	}
	if o.APIKey != "from-file" {
		t.Errorf("openai key = %q, file should win over env", o.APIKey)
	}
}

func TestLoadSession(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, s *Session)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, s *Session) {
				if s.Transport != "gemini" || s.Feedback != "gemini" {
					t.Errorf("providers = %q/%q", s.Transport, s.Feedback)
				}
				if Device(s.InputDevice) != -1 {
					t.Errorf("input device = %d", Device(s.InputDevice))
				}
			},
		},
		{
			name: "explicit",
			yaml: "transport: openai\ndebounce: 500ms\ninput_device: 0\n",
			check: func(t *testing.T, s *Session) {
				if s.Transport != "openai" {
					t.Errorf("transport = %q", s.Transport)
				}
				if d, _ := s.DebounceDuration(); d.Milliseconds() != 500 {
					t.Errorf("debounce = %v", d)
				}
				if Device(s.InputDevice) != 0 {
					t.Errorf("input device = %d, want 0", Device(s.InputDevice))
				}
			},
		},
		{name: "bad provider", yaml: "transport: azure\n", wantErr: "unknown provider"},
		{name: "bad duration", yaml: "finalize_timeout: soon\n", wantErr: "finalize_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.yaml != "" {
				os.WriteFile(filepath.Join(dir, "session.yaml"), []byte(tt.yaml), 0o600)
			}
			s, err := LoadSession(dir)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, s)
		})
	}
}

func TestLoadStoreAndArchive(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Dir != filepath.Join(dir, "records") {
		t.Errorf("store dir = %q", s.Dir)
	}

	a, err := LoadArchive(dir)
	if err != nil || a.Kind != "" {
		t.Fatalf("archive = %+v, %v; want disabled", a, err)
	}

	os.WriteFile(filepath.Join(dir, "archive.yaml"), []byte("kind: local\n"), 0o600)
	a, err = LoadArchive(dir)
	if err != nil {
		t.Fatal(err)
	}
	if a.Dir != filepath.Join(dir, "archive") {
		t.Errorf("archive dir = %q", a.Dir)
	}

	os.WriteFile(filepath.Join(dir, "archive.yaml"), []byte("kind: s3\n"), 0o600)
	if _, err := LoadArchive(dir); err == nil {
		t.Error("s3 without bucket accepted")
	}

	os.WriteFile(filepath.Join(dir, "archive.yaml"), []byte("kind: s3\ns3:\n  bucket: interviews\n  region: eu-west-1\n"), 0o600)
	a, err = LoadArchive(dir)
	if err != nil {
		t.Fatal(err)
	}
	if a.S3.Bucket != "interviews" || a.S3.Region != "eu-west-1" {
		t.Errorf("s3 = %+v", a.S3)
	}
}
