// Package llm wraps the chat completion providers used for entity
// extraction. All providers implement the same Provider interface so the
// extraction code never knows which vendor it is talking to.
package llm

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

// Provider is the interface for LLM providers.
type Provider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	IsConfigured() bool
}

// CreateProvider creates an LLM provider based on configuration. The API key
// is read from apiKeyEnv when set, otherwise from the provider's conventional
// environment variable. baseURL overrides the endpoint of the
// OpenAI-compatible providers; claude and gemini ignore it.
func CreateProvider(ctx context.Context, provider, model, apiKeyEnv, baseURL string) (Provider, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAIProvider(apiKey(apiKeyEnv, "OPENAI_API_KEY"), model, baseURL), nil
	case "groq":
		// Groq exposes an OpenAI-compatible API.
		if baseURL == "" {
			baseURL = groqBaseURL
		}
		return NewOpenAIProvider(apiKey(apiKeyEnv, "GROQ_API_KEY"), model, baseURL), nil
	case "claude", "anthropic":
		return NewClaudeProvider(apiKey(apiKeyEnv, "ANTHROPIC_API_KEY"), model), nil
	case "gemini":
		return NewGeminiProvider(ctx, apiKey(apiKeyEnv, "GEMINI_API_KEY"), model)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

func apiKey(env, fallbackEnv string) string {
	if env == "" {
		env = fallbackEnv
	}
	return os.Getenv(env)
}

// RequireProvider creates a provider and verifies its API key is present.
func RequireProvider(ctx context.Context, provider, model, apiKeyEnv, baseURL string) (Provider, error) {
	p, err := CreateProvider(ctx, provider, model, apiKeyEnv, baseURL)
	if err != nil {
		return nil, err
	}
	if !p.IsConfigured() {
		return nil, fmt.Errorf("provider %s is not configured (missing API key)", provider)
	}
	log.Printf("Using %s with model: %s", provider, model)
	return p, nil
}
