package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

// ClaudeProvider talks to the Anthropic messages API.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
	apiKey string
}

// NewClaudeProvider creates an Anthropic provider.
func NewClaudeProvider(apiKey, model string) *ClaudeProvider {
	return &ClaudeProvider{
		client: anthropic.NewClient(apiKey),
		model:  model,
		apiKey: apiKey,
	}
}

// IsConfigured checks if the API key is set.
func (c *ClaudeProvider) IsConfigured() bool {
	return c.apiKey != ""
}

// Generate sends a prompt and returns the completion text.
func (c *ClaudeProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("create messages: %w", err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", fmt.Errorf("no content in response")
	}
	return *resp.Content[0].Text, nil
}
