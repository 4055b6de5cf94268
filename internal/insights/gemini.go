package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"educare/platform/apperr"

	"google.golang.org/genai"
)

const systemInstruction = `You support parents and early-childhood professionals.
Given a child's quiz results, write a short, encouraging assessment in plain language.
Do not diagnose. Respond with JSON matching the schema.`

// GeminiGenerator asks a Gemini model for advice.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator for the Gemini API.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

var adviceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":     {Type: genai.TypeString},
		"strengths":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"suggestions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"summary", "strengths", "suggestions"},
}

// Generate sends prompt and decodes the structured answer.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (Advice, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.4),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    adviceSchema,
	})
	if err != nil {
		return Advice{}, apperr.Wrap(apperr.KindBadGateway, "insight generation failed", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Advice{}, apperr.BadGateway("insight generation returned no content")
	}

	var advice Advice
	if err := json.Unmarshal([]byte(text), &advice); err != nil {
		return Advice{}, apperr.Wrap(apperr.KindBadGateway, "insight generation returned invalid JSON", err)
	}
	return advice, nil
}
