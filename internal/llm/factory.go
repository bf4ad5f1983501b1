package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/store"
)

// NewProvider builds the configured provider. Calls pass through retry,
// then event recording, then the provider SDK, so every attempt is logged.
// A nil repo skips recording. The mock provider synthesizes schema-valid
// output.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, log *zap.Logger) (Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = &MockProvider{Synthesize: true}
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	log.Debug("llm provider ready", zap.String("provider", base.Name()), zap.String("model", base.ModelID()))
	if repo != nil {
		base = WithRecording(base, repo, log)
	}
	return WithRetry(base, cfg.Retry, log), nil
}
