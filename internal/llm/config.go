// Package llm provides a uniform gateway over multiple LLM providers with
// prefix-based model resolution.
package llm

import "strings"

// Provider represents an LLM provider backend
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI is the OpenAI provider (gpt-* models)
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic provider (claude-* models)
	ProviderAnthropic Provider = "anthropic"
	// ProviderGemini is the Google Gemini provider (gemini-* models)
	ProviderGemini Provider = "gemini"
)

// DefaultModel is the model used when no identifier is given or the
// identifier matches no known provider family.
const DefaultModel = "gpt-4"

// Temperature is the fixed sampling temperature for every gateway call.
const Temperature = 0.7

// Config holds API credentials for the provider backends. A provider with an
// empty key is still resolvable; invoking it fails with a ProviderError.
type Config struct {
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	// OpenAIBaseURL overrides the OpenAI API endpoint (used in tests).
	OpenAIBaseURL string
	// AnthropicBaseURL overrides the Anthropic API endpoint (used in tests).
	AnthropicBaseURL string
}

// ResolveModel maps a model identifier to a provider and concrete model name.
// Resolution is a pure function of the identifier: gpt-* selects OpenAI,
// claude-* selects Anthropic, gemini-* selects Gemini. Anything else,
// including the empty string, silently falls back to OpenAI's default model.
// An unrecognized identifier is never an error; callers supplying a typo'd
// model name get the default rather than a rejection.
func ResolveModel(identifier string) (Provider, string) {
	switch {
	case strings.HasPrefix(identifier, "gpt"):
		return ProviderOpenAI, identifier
	case strings.HasPrefix(identifier, "claude"):
		return ProviderAnthropic, identifier
	case strings.HasPrefix(identifier, "gemini"):
		return ProviderGemini, identifier
	default:
		return ProviderOpenAI, DefaultModel
	}
}
