package feedback

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrEmptyReport is returned when the model produced no usable feedback.
var ErrEmptyReport = errors.New("feedback: empty report")

// Request describes the interview to review.
type Request struct {
	InterviewID   string
	UserName      string
	Role          string
	JobLevel      string
	InterviewType string
	Transcript    string
}

// Report is the structured feedback returned by a Generator.
type Report struct {
	Strengths    []string `json:"strengths" jsonschema:"three things the candidate did well"`
	Improvements []string `json:"improvements" jsonschema:"three areas for improvement"`
	NextSteps    []string `json:"next_steps" jsonschema:"one or two concrete next steps"`
	Summary      string   `json:"summary" jsonschema:"one sentence overall assessment"`
}

// Empty reports whether r carries no feedback at all.
func (r *Report) Empty() bool {
	return r == nil || (len(r.Strengths) == 0 && len(r.Improvements) == 0 &&
		len(r.NextSteps) == 0 && strings.TrimSpace(r.Summary) == "")
}

// Markdown renders the report for display and archiving.
func (r *Report) Markdown() string {
	var sb strings.Builder
	if s := strings.TrimSpace(r.Summary); s != "" {
		sb.WriteString(s)
		sb.WriteString("\n\n")
	}
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("## ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
		for _, it := range items {
			sb.WriteString("- ")
			sb.WriteString(strings.TrimSpace(it))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	section("Strengths", r.Strengths)
	section("Areas for Improvement", r.Improvements)
	section("Next Steps", r.NextSteps)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// Generator produces a Report for a finished interview.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Report, error)
}

var reportSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.For[Report](&jsonschema.ForOptions{})
})
