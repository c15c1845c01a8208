package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"
)

// DefaultResumeModel is the model used for resume extraction.
const DefaultResumeModel = "gemini-2.0-flash"

// MinResumeLen is the shortest extraction accepted as a resume.
const MinResumeLen = 50

// ErrResumeTooShort is returned when extraction yields too little text.
var ErrResumeTooShort = errors.New("records: extracted resume text is too short")

const resumePrompt = "Extract all text from this resume. Format it with clear sections (for example Education, Experience, Skills). Include every detail such as dates, job titles, companies and responsibilities."

type resumeModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ResumeExtractor turns an uploaded resume into plain text.
type ResumeExtractor struct {
	models resumeModels
	model  string
}

// NewResumeExtractor returns an extractor backed by Gemini. With a nil
// client only plain text resumes can be extracted.
func NewResumeExtractor(client *genai.Client, model string) *ResumeExtractor {
	if model == "" {
		model = DefaultResumeModel
	}
	x := &ResumeExtractor{model: model}
	if client != nil {
		x.models = client.Models
	}
	return x
}

// ExtractFile reads path and extracts its text.
func (x *ResumeExtractor) ExtractFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("records: read resume: %w", err)
	}
	return x.Extract(ctx, filepath.Base(path), data)
}

// Extract returns the text of a resume file. Plain text is used as is; PDF
// and Word documents are sent to the model.
func (x *ResumeExtractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	mimeType := resumeMIMEType(name)
	slog.Debug("records: extracting resume", "name", name, "mime", mimeType, "size", len(data))

	var text string
	if mimeType == "text/plain" {
		text = string(data)
	} else {
		if x.models == nil {
			return "", fmt.Errorf("records: %s resumes need a Gemini API key", mimeType)
		}
		prompt := resumePrompt
		switch mimeType {
		case "application/pdf":
			prompt += " This is a PDF file, so use OCR to extract all text accurately."
		case "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/msword":
			prompt += " This is a Word document."
		}
		contents := []*genai.Content{{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromText(prompt),
				genai.NewPartFromBytes(data, mimeType),
			},
		}}
		resp, err := x.models.GenerateContent(ctx, x.model, contents, nil)
		if err != nil {
			if e, ok := err.(*apierror.APIError); ok {
				err = e.Unwrap()
			}
			return "", fmt.Errorf("records: extract resume %s: %w", name, err)
		}
		text = resp.Text()
	}

	text = strings.TrimSpace(text)
	if len(text) < MinResumeLen {
		return "", fmt.Errorf("%w (%d characters from %s)", ErrResumeTooShort, len(text), name)
	}
	return text, nil
}

func resumeMIMEType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".txt", ".md", ".text":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
