package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const openAIMaxOutputTokens int64 = 4096

// OpenAIGenerator calls OpenAI's Responses API with a strict JSON schema
// text format.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator. Client retries are disabled: a failed
// call is reported to the user, who decides whether to resubmit.
func NewOpenAIGenerator(apiKey string, model string, opts ...option.RequestOption) *OpenAIGenerator {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("prompt is empty")
	}

	resp, err := g.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           g.model,
		MaxOutputTokens: openai.Int(openAIMaxOutputTokens),
		Temperature:     openai.Float(req.Temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(req.Prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	if resp.Status == "incomplete" {
		return "", fmt.Errorf(
			"response is incomplete (reason = %s)",
			resp.IncompleteDetails.Reason,
		)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
	}

	return text, nil
}
