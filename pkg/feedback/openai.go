package feedback

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

// DefaultOpenAIModel is the chat model used for feedback.
const DefaultOpenAIModel = "gpt-4o-mini"

const oaiFinishReasonStop = "stop"

var _ Generator = (*OpenAI)(nil)

// OpenAI generates feedback with an OpenAI chat model.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI returns an OpenAI generator. baseURL may be empty.
func NewOpenAI(apiKey, baseURL, model string, opts ...option.RequestOption) *OpenAI {
	ro := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		ro = append(ro, option.WithBaseURL(baseURL))
	}
	ro = append(ro, opts...)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClient(ro...), model: model}
}

// Generate implements Generator.
func (g *OpenAI) Generate(ctx context.Context, req Request) (*Report, error) {
	schema, err := reportSchema()
	if err != nil {
		return nil, fmt.Errorf("feedback: report schema: %w", err)
	}
	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(req)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "interview_feedback",
					Description: param.NewOpt("Structured coaching feedback for a mock interview"),
					Schema:      strictSchema(schema.CloneSchemas()),
					Strict:      param.NewOpt(true),
				},
			},
		},
	}
	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("feedback: openai %s: %w", g.model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("feedback: openai returned no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("feedback: blocked: %s", choice.Message.Refusal)
	}
	if choice.FinishReason != oaiFinishReasonStop {
		return nil, fmt.Errorf("feedback: want stop, got unexpected finish reason: %s", choice.FinishReason)
	}
	return parseReport(choice.Message.Content)
}

// strictSchema applies the structured output rules: objects forbid
// additional properties and list every property as required.
func strictSchema(m *jsonschema.Schema) *jsonschema.Schema {
	if m == nil {
		return nil
	}
	typ := m.Type
	if typ == "" {
		for _, t := range m.Types {
			if t != "null" {
				typ = t
				break
			}
		}
	}
	switch typ {
	case "array":
		m.Items = strictSchema(m.Items)
	case "object":
		m.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
		for k, v := range m.Properties {
			m.Properties[k] = strictSchema(v)
		}
		m.Required = slices.Sorted(maps.Keys(m.Properties))
	}
	return m
}
