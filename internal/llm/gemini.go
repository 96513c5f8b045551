package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider talks to the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	apiKey string
}

// NewGeminiProvider creates a Gemini provider. The client is only dialed when
// an API key is present; without one the provider reports unconfigured.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	p := &GeminiProvider{model: model, apiKey: apiKey}
	if apiKey == "" {
		return p, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	p.client = client
	return p, nil
}

// IsConfigured checks if the API key is set.
func (g *GeminiProvider) IsConfigured() bool {
	return g.apiKey != "" && g.client != nil
}

// Generate sends a prompt and returns the completion text.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(int32(maxTokens))
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	if txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}
	return "", fmt.Errorf("unexpected response part type")
}
