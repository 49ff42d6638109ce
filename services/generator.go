package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator produces a completion for a fully rendered prompt. Single turn,
// no conversation history.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// temperature is fixed for every chat turn; low enough to keep answers
// grounded in the retrieved manual text.
const temperature float32 = 0.3

type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Generator backed by the Gemini API.
func NewGeminiGenerator(client *genai.Client, model string) Generator {
	return &geminiGenerator{client: client, model: model}
}

// Complete sends the prompt as a single user turn and returns the model's
// raw text output.
func (g *geminiGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return responseText.String(), nil
}
