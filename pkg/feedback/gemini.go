package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the text model used for feedback.
const DefaultGeminiModel = "gemini-2.0-flash"

// geminiModels is the subset of *genai.Models used here.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ Generator = (*Gemini)(nil)

// Gemini generates feedback with a Gemini text model.
type Gemini struct {
	models geminiModels
	model  string
}

// NewGemini returns a Gemini generator. An empty model uses
// DefaultGeminiModel.
func NewGemini(client *genai.Client, model string) *Gemini {
	return newGemini(client.Models, model)
}

func newGemini(models geminiModels, model string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{models: models, model: model}
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, req Request) (*Report, error) {
	schema, err := reportSchema()
	if err != nil {
		return nil, fmt.Errorf("feedback: report schema: %w", err)
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiConvSchema(schema),
	}
	contents := []*genai.Content{genai.NewContentFromText(userPrompt(req), genai.RoleUser)}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		if e, ok := err.(*apierror.APIError); ok {
			err = e.Unwrap()
		}
		return nil, fmt.Errorf("feedback: gemini %s: %w", g.model, err)
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("feedback: gemini returned no candidates")
	}
	c := resp.Candidates[0]
	if c.FinishReason != genai.FinishReasonStop && c.FinishReason != genai.FinishReasonUnspecified {
		return nil, fmt.Errorf("feedback: gemini unexpected finish reason: %s", c.FinishReason)
	}
	if c.Content == nil {
		return nil, ErrEmptyReport
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return parseReport(sb.String())
}

func geminiConvSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}
	gs := genai.Schema{
		Format:      schema.Format,
		Description: schema.Description,
		Items:       geminiConvSchema(schema.Items),
		Required:    schema.Required,
	}
	for _, v := range schema.Enum {
		gs.Enum = append(gs.Enum, fmt.Sprintf("%v", v))
	}
	if n := len(schema.Properties); n > 0 {
		gs.Properties = make(map[string]*genai.Schema, n)
		for k, prop := range schema.Properties {
			gs.Properties[k] = geminiConvSchema(prop)
		}
	}
	typ := schema.Type
	if typ == "" {
		for _, t := range schema.Types {
			if t != "null" {
				typ = t
				break
			}
		}
	}
	switch typ {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return &gs
}
