package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIProvider talks to the OpenAI chat completion API, or any
// OpenAI-compatible endpoint (Groq) when a base URL is given.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	apiKey  string
	baseURL string
}

// NewOpenAIProvider creates an OpenAI-compatible provider. An empty baseURL
// means the real OpenAI API.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// IsConfigured checks if the API key is set.
func (o *OpenAIProvider) IsConfigured() bool {
	return o.apiKey != ""
}

// Generate sends a prompt and returns the completion text.
func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
