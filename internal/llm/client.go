package llm

import (
	"context"
	"fmt"
)

// Message roles for gateway requests and persisted conversation entries.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged entry in an ordered conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the uniform call interface over the provider backends.
type Client interface {
	// Invoke resolves the model identifier to a provider, issues one
	// chat-style completion request, and returns the raw response text.
	// There is no streaming, no retry, and no timeout enforced here; a
	// hang or error propagates synchronously to the caller.
	Invoke(ctx context.Context, model string, messages []Message) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// ProviderError indicates an LLM backend call failed (network, auth, or a
// malformed response). It propagates unmodified through pipeline stages.
type ProviderError struct {
	Provider Provider
	Model    string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider %s (model %s): %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Gateway implements Client over the configured provider backends.
type Gateway struct {
	openai    *openAIProvider
	anthropic *anthropicProvider
	gemini    *geminiProvider
}

// NewGateway creates a gateway from configuration. Backends with missing
// credentials are constructed anyway; invoking them yields a ProviderError.
func NewGateway(ctx context.Context, cfg *Config) (*Gateway, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	gemini, err := newGeminiProvider(ctx, cfg.GeminiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini backend: %w", err)
	}

	return &Gateway{
		openai:    newOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL),
		anthropic: newAnthropicProvider(cfg.AnthropicKey, cfg.AnthropicBaseURL),
		gemini:    gemini,
	}, nil
}

// Invoke dispatches one completion request to the provider selected by the
// model identifier prefix.
func (g *Gateway) Invoke(ctx context.Context, model string, messages []Message) (string, error) {
	provider, resolved := ResolveModel(model)

	var text string
	var err error
	switch provider {
	case ProviderAnthropic:
		text, err = g.anthropic.complete(ctx, resolved, messages)
	case ProviderGemini:
		text, err = g.gemini.complete(ctx, resolved, messages)
	default:
		text, err = g.openai.complete(ctx, resolved, messages)
	}
	if err != nil {
		return "", &ProviderError{Provider: provider, Model: resolved, Err: err}
	}
	return text, nil
}

// Close releases resources held by the provider backends.
func (g *Gateway) Close() error {
	if g.gemini != nil {
		return g.gemini.close()
	}
	return nil
}
