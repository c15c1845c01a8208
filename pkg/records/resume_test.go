package records

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type fakeResumeModels struct {
	text     string
	err      error
	contents []*genai.Content
}

func (f *fakeResumeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.contents = contents
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
	}}}, nil
}

func TestExtractPlainTextSkipsModel(t *testing.T) {
	fm := &fakeResumeModels{err: errors.New("must not be called")}
	x := &ResumeExtractor{models: fm, model: "m"}

	path := filepath.Join(t.TempDir(), "resume.txt")
	body := "Ada Lovelace\nExperience: 10 years building analytical engines and compilers."
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := x.ExtractFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if got != body {
		t.Errorf("text = %q", got)
	}
	if fm.contents != nil {
		t.Error("model called for plain text")
	}
}

func TestExtractPDF(t *testing.T) {
	fm := &fakeResumeModels{text: strings.Repeat("Experience ", 10)}
	x := &ResumeExtractor{models: fm, model: "m"}

	got, err := x.Extract(context.Background(), "cv.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.HasPrefix(got, "Experience") {
		t.Errorf("text = %q", got)
	}
	parts := fm.contents[0].Parts
	if len(parts) != 2 || !strings.Contains(parts[0].Text, "OCR") {
		t.Fatalf("parts = %+v", parts)
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "application/pdf" {
		t.Errorf("inline data = %+v", parts[1].InlineData)
	}
}

func TestExtractTooShort(t *testing.T) {
	x := &ResumeExtractor{models: &fakeResumeModels{text: "n/a"}, model: "m"}
	if _, err := x.Extract(context.Background(), "cv.docx", []byte("PK")); !errors.Is(err, ErrResumeTooShort) {
		t.Errorf("err = %v, want ErrResumeTooShort", err)
	}
}

func TestExtractWithoutClient(t *testing.T) {
	x := NewResumeExtractor(nil, "")
	body := strings.Repeat("Senior engineer with distributed systems experience. ", 2)
	got, err := x.Extract(context.Background(), "resume.md", []byte(body))
	if err != nil {
		t.Fatalf("plain text without client: %v", err)
	}
	if got == "" {
		t.Error("empty text")
	}
	if _, err := x.Extract(context.Background(), "resume.pdf", []byte("%PDF")); err == nil {
		t.Error("pdf without client succeeded")
	}
}
