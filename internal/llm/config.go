package llm

import (
	"errors"
	"fmt"
	"time"
)

// Provider names accepted by NewProvider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// ErrNoProvider is returned when no provider is configured and no API key
// could be found to pick one.
var ErrNoProvider = errors.New("no LLM provider configured")

// Config holds all LLM provider configuration.
type Config struct {
	// Provider is one of the Provider* constants. Empty means pick one
	// from whichever API key is present (see Discover).
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single request including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig also covers OpenAI-compatible endpoints through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns defaults with no provider selected.
func DefaultConfig() Config {
	return Config{
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// Discover selects a provider when none is set, probing API keys in the
// order Gemini, OpenAI, Anthropic, OpenRouter. It reports whether a
// provider is selected afterwards.
func (c *Config) Discover() bool {
	if c.Provider != "" {
		return true
	}
	switch {
	case c.Gemini.APIKey != "":
		c.Provider = ProviderGemini
	case c.OpenAI.APIKey != "":
		c.Provider = ProviderOpenAI
	case c.Anthropic.APIKey != "":
		c.Provider = ProviderAnthropic
	case c.OpenRouter.APIKey != "":
		c.Provider = ProviderOpenRouter
	default:
		return false
	}
	return true
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case ProviderAnthropic:
		key = c.Anthropic.APIKey
	case ProviderOpenAI:
		key = c.OpenAI.APIKey
	case ProviderGemini:
		key = c.Gemini.APIKey
	case ProviderOpenRouter:
		key = c.OpenRouter.APIKey
	case ProviderMock:
		return nil
	case "":
		return ErrNoProvider
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("llm.%s.api_key is required for the %s provider", c.Provider, c.Provider)
	}
	return nil
}
