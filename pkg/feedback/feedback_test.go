package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

const reportJSON = `{
	"strengths": ["Clear structure", "Concrete metrics", "Calm delivery"],
	"improvements": ["Shorter intros", "Name trade-offs", "Ask questions"],
	"next_steps": ["Practice STAR answers"],
	"summary": "A solid showing with room to tighten answers."
}`

func TestParseReport(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
		summary string
	}{
		{"valid", reportJSON, nil, "A solid showing with room to tighten answers."},
		{"trailing comma repaired", `{"summary": "ok", "strengths": ["a",],}`, nil, "ok"},
		{"empty text", "   ", ErrEmptyReport, ""},
		{"empty object", `{}`, ErrEmptyReport, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseReport(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseReport: %v", err)
			}
			if r.Summary != tt.summary {
				t.Errorf("summary = %q", r.Summary)
			}
		})
	}
}

func TestReportMarkdown(t *testing.T) {
	r := &Report{
		Strengths:    []string{"Clear"},
		Improvements: []string{"Shorter"},
		NextSteps:    []string{"Practice"},
		Summary:      "Good.",
	}
	want := "Good.\n\n## Strengths\n\n- Clear\n\n## Areas for Improvement\n\n- Shorter\n\n## Next Steps\n\n- Practice\n"
	if got := r.Markdown(); got != want {
		t.Errorf("Markdown() =\n%s\nwant\n%s", got, want)
	}
}

func TestUserPrompt(t *testing.T) {
	p := userPrompt(Request{UserName: "Ada", Role: "SRE", JobLevel: "SENIOR_LEVEL", Transcript: "User: hi"})
	for _, want := range []string{"Candidate: Ada", "Target role: SRE", "Job level: senior level", "User: hi"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "Interview type") {
		t.Error("empty field rendered")
	}
	if !strings.Contains(userPrompt(Request{}), "did not speak") {
		t.Error("empty transcript not called out")
	}
}

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = cfg
	return f.resp, f.err
}

func textResponse(text string, reason genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		FinishReason: reason,
		Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
	}}}
}

func TestGeminiGenerate(t *testing.T) {
	fm := &fakeModels{resp: textResponse(reportJSON, genai.FinishReasonStop)}
	g := newGemini(fm, "")
	r, err := g.Generate(context.Background(), Request{Transcript: "User: hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(r.Strengths) != 3 || len(r.NextSteps) != 1 {
		t.Errorf("report = %+v", r)
	}
	if fm.model != DefaultGeminiModel {
		t.Errorf("model = %q", fm.model)
	}
	if fm.config.ResponseMIMEType != "application/json" {
		t.Errorf("mime = %q", fm.config.ResponseMIMEType)
	}
	s := fm.config.ResponseSchema
	if s == nil || s.Type != genai.TypeObject || s.Properties["strengths"] == nil {
		t.Fatalf("schema = %+v", s)
	}
	if s.Properties["strengths"].Type != genai.TypeArray || s.Properties["summary"].Type != genai.TypeString {
		t.Errorf("property types = %v, %v", s.Properties["strengths"].Type, s.Properties["summary"].Type)
	}
}

func TestGeminiGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		fm   *fakeModels
	}{
		{"api error", &fakeModels{err: errors.New("quota")}},
		{"no candidates", &fakeModels{resp: &genai.GenerateContentResponse{}}},
		{"safety stop", &fakeModels{resp: textResponse(reportJSON, genai.FinishReasonSafety)}},
		{"empty text", &fakeModels{resp: textResponse("", genai.FinishReasonStop)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newGemini(tt.fm, "m").Generate(context.Background(), Request{}); err == nil {
				t.Error("Generate succeeded")
			}
		})
	}
}

func chatServer(t *testing.T, content, finish string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			json.Unmarshal(body, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": finish,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
					"refusal": "",
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGenerate(t *testing.T) {
	var body map[string]any
	srv := chatServer(t, reportJSON, "stop", &body)
	g := NewOpenAI("sk-test", srv.URL, "", option.WithMaxRetries(0))

	r, err := g.Generate(context.Background(), Request{Role: "SRE", Transcript: "User: hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if r.Summary == "" || len(r.Improvements) != 3 {
		t.Errorf("report = %+v", r)
	}
	if body["model"] != DefaultOpenAIModel {
		t.Errorf("model = %v", body["model"])
	}
	rf, _ := body["response_format"].(map[string]any)
	if rf["type"] != "json_schema" {
		t.Fatalf("response_format = %v", body["response_format"])
	}
	js, _ := rf["json_schema"].(map[string]any)
	schema, _ := js["schema"].(map[string]any)
	if js["strict"] != true || schema["additionalProperties"] != false {
		t.Errorf("json_schema = %v", js)
	}
	req, _ := schema["required"].([]any)
	if len(req) != 4 {
		t.Errorf("required = %v", schema["required"])
	}
}

func TestOpenAIGenerateTruncated(t *testing.T) {
	srv := chatServer(t, `{"summary": "cut`, "length", nil)
	g := NewOpenAI("sk-test", srv.URL, "gpt-test", option.WithMaxRetries(0))
	if _, err := g.Generate(context.Background(), Request{}); err == nil {
		t.Error("Generate succeeded on truncated output")
	}
}
