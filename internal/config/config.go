// Package config loads application settings from an optional YAML file,
// EDUGENIE_* environment variables and in-code defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/edugenie/internal/llm"
	"github.com/abhisek/edugenie/internal/logging"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/store"
)

// ProviderAuto picks the first provider with credentials, or offline.
const ProviderAuto = "auto"

type Config struct {
	LLM    LLMConfig      `mapstructure:"llm"`
	Store  StoreConfig    `mapstructure:"store"`
	Quiz   QuizConfig     `mapstructure:"quiz"`
	Log    logging.Config `mapstructure:"log"`
	Server ServerConfig   `mapstructure:"server"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	Anthropic  KeyModel `mapstructure:"anthropic"`
	OpenAI     KeyModel `mapstructure:"openai"`
	Gemini     KeyModel `mapstructure:"gemini"`
	OpenRouter KeyModel `mapstructure:"openrouter"`
	Bedrock    struct {
		Region  string `mapstructure:"region"`
		ModelID string `mapstructure:"model_id"`
		Profile string `mapstructure:"profile"`
	} `mapstructure:"bedrock"`

	Retry struct {
		MaxAttempts int           `mapstructure:"max_attempts"`
		InitialWait time.Duration `mapstructure:"initial_wait"`
		MaxWait     time.Duration `mapstructure:"max_wait"`
		Multiplier  float64       `mapstructure:"multiplier"`
	} `mapstructure:"retry"`

	RateLimit struct {
		RPS   float64 `mapstructure:"rps"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`
}

// KeyModel is the credential and model pair shared by API-key providers.
type KeyModel struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"` // empty means the default SQLite file
}

type QuizConfig struct {
	User        string  `mapstructure:"user"`
	Questions   int     `mapstructure:"questions"`
	Window      int     `mapstructure:"window"`
	RaiseAbove  float64 `mapstructure:"raise_above"`
	LowerBelow  float64 `mapstructure:"lower_below"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`

	TokensPerQuestion int `mapstructure:"tokens_per_question"`
	MaxTokensCap      int `mapstructure:"max_tokens_cap"`
}

type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

// envAliases binds config keys to extra environment variables beyond the
// automatic EDUGENIE_<SECTION>_<KEY> names.
var envAliases = map[string][]string{
	"llm.anthropic.api_key":  {"EDUGENIE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
	"llm.openai.api_key":     {"EDUGENIE_OPENAI_API_KEY", "OPENAI_API_KEY"},
	"llm.gemini.api_key":     {"EDUGENIE_GEMINI_API_KEY", "GEMINI_API_KEY"},
	"llm.openrouter.api_key": {"EDUGENIE_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
	"llm.bedrock.model_id":   {"EDUGENIE_BEDROCK_MODEL_ID", "BEDROCK_MODEL_ID"},
	"llm.bedrock.region":     {"EDUGENIE_BEDROCK_REGION", "AWS_REGION"},
	"llm.bedrock.profile":    {"EDUGENIE_BEDROCK_PROFILE", "AWS_PROFILE"},
	"llm.provider":           {"EDUGENIE_LLM_PROVIDER", "LLM_PROVIDER"},
	"store.dsn":              {"EDUGENIE_STORE_DSN", "EDUGENIE_DB"},
}

// Load reads configuration. path may name a YAML file explicitly; when
// empty, edugenie.yaml is looked up in the user config directory and the
// working directory, and a missing file is not an error.
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("EDUGENIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("edugenie")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "edugenie"))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("llm.provider", ProviderAuto)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.cache_ttl", d.CacheTTL)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.bedrock.region", d.Bedrock.Region)
	v.SetDefault("llm.bedrock.model_id", d.Bedrock.ModelID)
	v.SetDefault("llm.bedrock.profile", "")
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.rate_limit.rps", d.RateLimit.RPS)
	v.SetDefault("llm.rate_limit.burst", d.RateLimit.Burst)

	v.SetDefault("store.driver", string(store.DriverSQLite))
	v.SetDefault("store.dsn", "")

	v.SetDefault("quiz.user", defaultUser())
	v.SetDefault("quiz.questions", 5)
	v.SetDefault("quiz.window", 5)
	v.SetDefault("quiz.raise_above", 0.85)
	v.SetDefault("quiz.lower_below", 0.5)
	v.SetDefault("quiz.max_tokens", 800)
	v.SetDefault("quiz.tokens_per_question", 180)
	v.SetDefault("quiz.max_tokens_cap", 4096)
	v.SetDefault("quiz.temperature", 0.7)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.console", true)
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.session_ttl", 30*time.Minute)
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "student"
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if _, err := store.ParseDriver(c.Store.Driver); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Quiz.Questions < 1 || c.Quiz.Questions > quizgen.MaxQuestions {
		return fmt.Errorf("quiz.questions must be between 1 and %d, got %d", quizgen.MaxQuestions, c.Quiz.Questions)
	}
	if c.Quiz.Window < 1 {
		return fmt.Errorf("quiz.window must be at least 1, got %d", c.Quiz.Window)
	}
	if c.Quiz.LowerBelow > c.Quiz.RaiseAbove {
		return fmt.Errorf("quiz.lower_below (%.2f) must not exceed quiz.raise_above (%.2f)", c.Quiz.LowerBelow, c.Quiz.RaiseAbove)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	return c.LLMConfig().Validate()
}

// LLMConfig converts the llm section into an llm.Config, resolving the
// "auto" provider.
func (c *Config) LLMConfig() llm.Config {
	s := c.LLM
	cfg := llm.Config{
		Provider:   s.Provider,
		Anthropic:  llm.AnthropicConfig{APIKey: s.Anthropic.APIKey, Model: s.Anthropic.Model, BaseURL: s.Anthropic.BaseURL},
		OpenAI:     llm.OpenAIConfig{APIKey: s.OpenAI.APIKey, Model: s.OpenAI.Model, BaseURL: s.OpenAI.BaseURL},
		Gemini:     llm.GeminiConfig{APIKey: s.Gemini.APIKey, Model: s.Gemini.Model},
		OpenRouter: llm.OpenRouterConfig{APIKey: s.OpenRouter.APIKey, Model: s.OpenRouter.Model, BaseURL: s.OpenRouter.BaseURL},
		Bedrock:    llm.BedrockConfig{Region: s.Bedrock.Region, ModelID: s.Bedrock.ModelID, Profile: s.Bedrock.Profile},
		Retry: llm.RetryConfig{
			MaxAttempts: s.Retry.MaxAttempts,
			InitialWait: s.Retry.InitialWait,
			MaxWait:     s.Retry.MaxWait,
			Multiplier:  s.Retry.Multiplier,
		},
		RateLimit: llm.RateLimitConfig{RPS: s.RateLimit.RPS, Burst: s.RateLimit.Burst},
		CacheTTL:  s.CacheTTL,
		Timeout:   s.Timeout,
	}
	if cfg.Provider == ProviderAuto || cfg.Provider == "" {
		cfg.Provider = detectProvider(cfg)
	}
	return cfg
}

// detectProvider follows llm.DiscoverConfig's priority order over the
// loaded keys. Bedrock is only picked when a model id was given through the
// environment, since its default model id is always present.
func detectProvider(cfg llm.Config) string {
	switch {
	case cfg.Gemini.APIKey != "":
		return llm.ProviderGemini
	case cfg.OpenAI.APIKey != "":
		return llm.ProviderOpenAI
	case cfg.Anthropic.APIKey != "":
		return llm.ProviderAnthropic
	case cfg.OpenRouter.APIKey != "":
		return llm.ProviderOpenRouter
	}
	if discovered, ok := llm.DiscoverConfig(); ok && discovered.Provider == llm.ProviderBedrock {
		return llm.ProviderBedrock
	}
	return llm.ProviderOffline
}

// StoreDriver returns the parsed store driver. Validate has already
// rejected unknown names.
func (c *Config) StoreDriver() store.Driver {
	d, _ := store.ParseDriver(c.Store.Driver)
	return d
}
