package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/metrics"
	"github.com/abhisek/edugenie/internal/store"
)

// Deps are the optional collaborators threaded into the middleware chain.
type Deps struct {
	Events  store.EventRepo
	Cache   store.CacheRepo
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// NewProvider creates a Provider from configuration and wraps it with the
// middleware chain: caller → logging → cache → retry → rate limit → base.
// Offline mode returns the bare OfflineProvider.
func NewProvider(ctx context.Context, cfg Config, deps Deps) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.IsOffline() {
		return NewOfflineProvider(), nil
	}

	base, err := newBaseProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return Wrap(base, cfg, deps), nil
}

// Wrap applies the middleware chain to an already constructed provider.
func Wrap(base Provider, cfg Config, deps Deps) Provider {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("provider", cfg.Provider))

	p := WithRateLimit(base, cfg.RateLimit)
	p = WithRetry(p, cfg.Retry, logger)
	p = WithCache(p, deps.Cache, cfg.CacheTTL, logger)
	return WithLogging(p, cfg.Provider, deps.Events, deps.Metrics, logger)
}

func newBaseProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		return NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderBedrock:
		return NewBedrockProvider(ctx, cfg.Bedrock)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
