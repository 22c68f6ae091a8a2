package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

//nolint:gochecknoglobals // Compiled once, safe for concurrent use.
var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// OllamaGenerator asks a local ollama server for a reply constrained by the
// schema passed in the format field.
type OllamaGenerator struct {
	client *ollama.Client
	model  string
}

// NewOllamaGenerator connects using OLLAMA_HOST, like the ollama CLI does.
func NewOllamaGenerator(model string) (*OllamaGenerator, error) {
	client, err := ollama.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return NewOllamaGeneratorWithClient(client, model), nil
}

func NewOllamaGeneratorWithClient(client *ollama.Client, model string) *OllamaGenerator {
	return &OllamaGenerator{
		client: client,
		model:  model,
	}
}

func (g *OllamaGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("prompt is empty")
	}

	format, err := json.Marshal(req.Schema)
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}

	stream := false
	var response strings.Builder

	err = g.client.Generate(ctx, &ollama.GenerateRequest{
		Model:  g.model,
		Prompt: req.Prompt,
		Format: format,
		Stream: &stream,
		Options: map[string]any{
			"temperature": req.Temperature,
		},
	}, func(res ollama.GenerateResponse) error {
		response.WriteString(res.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	text := strings.TrimSpace(thinkBlockRe.ReplaceAllString(response.String(), ""))
	if text == "" {
		return "", errors.New("output text is missing")
	}

	return text, nil
}
