package llm

import (
	"context"
	"testing"
)

func TestParseJSONResponsePlain(t *testing.T) {
	result := ParseJSONResponse(`{"entities": [{"name": "Jeff Bezos"}]}`)
	if result == nil {
		t.Fatal("expected parsed result")
	}
	if _, ok := result["entities"]; !ok {
		t.Error("expected entities key")
	}
}

func TestParseJSONResponseFenced(t *testing.T) {
	text := "```json\n{\"entities\": []}\n```"
	result := ParseJSONResponse(text)
	if result == nil {
		t.Fatal("expected parsed result from fenced block")
	}
}

func TestParseJSONResponseInvalid(t *testing.T) {
	if result := ParseJSONResponse("not json at all"); result != nil {
		t.Errorf("expected nil for invalid JSON, got %v", result)
	}
	if result := ParseJSONResponse(""); result != nil {
		t.Errorf("expected nil for empty input, got %v", result)
	}
}

func TestCreateProviderUnsupported(t *testing.T) {
	if _, err := CreateProvider(context.Background(), "mistral", "some-model", "", ""); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestCreateProviderCustomKeyEnv(t *testing.T) {
	t.Setenv("FOUNDERS_TEST_LLM_KEY", "sk-test")
	t.Setenv("OPENAI_API_KEY", "")

	p, err := CreateProvider(context.Background(), "openai", "gpt-4o-mini", "FOUNDERS_TEST_LLM_KEY", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsConfigured() {
		t.Error("expected provider configured from custom env name")
	}

	p, err = CreateProvider(context.Background(), "openai", "gpt-4o-mini", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsConfigured() {
		t.Error("expected default env name used when none configured")
	}
}

func TestCreateProviderBaseURLOverride(t *testing.T) {
	// A custom gateway URL must not be clobbered by the groq default.
	p, err := CreateProvider(context.Background(), "groq", "llama-3.3-70b", "", "https://gateway.internal/v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	op, ok := p.(*OpenAIProvider)
	if !ok {
		t.Fatalf("expected OpenAI-compatible provider, got %T", p)
	}
	if op.baseURL != "https://gateway.internal/v1" {
		t.Errorf("expected configured base URL kept, got %q", op.baseURL)
	}

	p, err = CreateProvider(context.Background(), "groq", "llama-3.3-70b", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op := p.(*OpenAIProvider); op.baseURL != groqBaseURL {
		t.Errorf("expected groq default base URL, got %q", op.baseURL)
	}
}

func TestOpenAIProviderUnconfigured(t *testing.T) {
	p := NewOpenAIProvider("", "gpt-4o-mini", "")
	if p.IsConfigured() {
		t.Error("expected unconfigured without API key")
	}
}

func TestClaudeProviderUnconfigured(t *testing.T) {
	p := NewClaudeProvider("", "claude-sonnet-4-20250514")
	if p.IsConfigured() {
		t.Error("expected unconfigured without API key")
	}
}

func TestGeminiProviderUnconfigured(t *testing.T) {
	p, err := NewGeminiProvider(context.Background(), "", "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsConfigured() {
		t.Error("expected unconfigured without API key")
	}
}
