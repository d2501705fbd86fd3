package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderBedrock    = "bedrock"
	ProviderOffline    = "offline"
	ProviderMock       = "mock" // alias for offline
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use. "offline" (or "mock")
	// runs without a model; every call degrades to the unavailable sentinel.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Bedrock    BedrockConfig
	Retry      RetryConfig
	RateLimit  RateLimitConfig

	// CacheTTL enables the response cache when positive.
	CacheTTL time.Duration

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 30s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// BedrockConfig holds AWS Bedrock configuration. Credentials come from the
// default AWS chain (env, shared config, instance role).
type BedrockConfig struct {
	Region  string // Default: "us-east-1"
	ModelID string // Default: "amazon.nova-lite-v1:0"
	Profile string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// RateLimitConfig bounds outgoing request rate. Zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderOffline,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Bedrock: BedrockConfig{
			Region:  "us-east-1",
			ModelID: "amazon.nova-lite-v1:0",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{
			RPS:   2,
			Burst: 4,
		},
		CacheTTL: 24 * time.Hour,
		Timeout:  30 * time.Second,
	}
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter → Bedrock) and returns a Config
// for the first provider found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}
	if m := os.Getenv("BEDROCK_MODEL_ID"); m != "" {
		cfg.Provider = ProviderBedrock
		cfg.Bedrock.ModelID = m
		if r := os.Getenv("AWS_REGION"); r != "" {
			cfg.Bedrock.Region = r
		}
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has what it needs to start.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("EDUGENIE_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("EDUGENIE_OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("EDUGENIE_GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("EDUGENIE_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case ProviderBedrock:
		if c.Bedrock.ModelID == "" {
			return fmt.Errorf("EDUGENIE_BEDROCK_MODEL_ID is required for the bedrock provider")
		}
	case ProviderOffline, ProviderMock, "":
		// No credentials needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// IsOffline reports whether the config selects mock mode.
func (c Config) IsOffline() bool {
	return c.Provider == "" || c.Provider == ProviderOffline || c.Provider == ProviderMock
}
