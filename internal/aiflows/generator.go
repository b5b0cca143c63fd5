// Package aiflows wraps the hosted text-generation service behind typed
// prompt flows: listing descriptions, market analyses, and the public-site
// chat assistant.
package aiflows

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"terraflow_backend/platform/apperr"
)

// Generator produces structured output from a prompt. out must be a pointer;
// the model's JSON response is unmarshalled into it.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema, out any) error
}

// GenAIGenerator implements Generator using the hosted Gemini API with
// schema-constrained JSON responses.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator dials the hosted generation service.
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAIGenerator{client: client, model: model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return apperr.Generation("text generation failed", err)
	}

	text := resp.Text()
	if text == "" {
		return apperr.Generation("text generation returned no content", nil)
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return apperr.Generation("text generation returned unparseable output", err)
	}
	return nil
}
