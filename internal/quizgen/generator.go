package quizgen

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/metrics"
)

// Generator produces the questions of one quiz.
type Generator interface {
	// Generate returns exactly in.N questions. The error is reserved for
	// invalid input; model trouble degrades to placeholder questions.
	Generate(ctx context.Context, in GenerateInput) (ParseOutcome, error)
}

// Config holds tunables for the LLM generator.
type Config struct {
	// The token budget of a quiz request grows with the question count:
	// a fixed overhead plus TokensPerQuestion each, never below MaxTokens
	// and never above MaxTokensCap.
	MaxTokens         int
	TokensPerQuestion int
	MaxTokensCap      int

	Temperature       float64
	MaxPriorQuestions int
	Validators        []Validator
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         800,
		TokensPerQuestion: 180,
		MaxTokensCap:      4096,
		Temperature:       0.7,
		MaxPriorQuestions: 20,
		Validators:        []Validator{&StructuralValidator{}, &DedupValidator{}},
	}
}

// LLMGenerator generates quizzes through the model gateway.
type LLMGenerator struct {
	gw      *gateway.Gateway
	config  Config
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewLLMGenerator creates a generator. m and logger may be nil.
func NewLLMGenerator(gw *gateway.Gateway, cfg Config, m *metrics.Metrics, logger *zap.Logger) *LLMGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMGenerator{gw: gw, config: cfg, metrics: m, logger: logger}
}

func (g *LLMGenerator) Generate(ctx context.Context, in GenerateInput) (ParseOutcome, error) {
	if err := in.validate(); err != nil {
		return ParseOutcome{}, err
	}

	raw := g.gw.Generate(ctx, BuildQuizPrompt(in, g.config))
	out := ParseQuiz(raw, in.Topic, in.N)

	if out.Kind == OutcomeValid {
		out.Questions = g.filter(out.Questions, in)
		if len(out.Questions) == 0 {
			out = fallback(in.Topic, in.N, ReasonNoValid, "all questions rejected by validators")
		}
	}

	if out.Kind == OutcomeFallback {
		g.metrics.QuizFallback(string(out.Reason))
		g.logger.Warn("using placeholder quiz",
			zap.String("topic", in.Topic),
			zap.String("reason", string(out.Reason)),
			zap.String("detail", out.Detail))
		return out, nil
	}

	if len(out.Questions) > in.N {
		out.Questions = out.Questions[:in.N]
	}
	for i := len(out.Questions); i < in.N; i++ {
		out.Questions = append(out.Questions, placeholder(in.Topic, i+1))
		out.Padded++
	}
	if out.Padded > 0 {
		g.logger.Info("padded short quiz with placeholders",
			zap.String("topic", in.Topic),
			zap.Int("padded", out.Padded))
	}
	return out, nil
}

// filter runs the validator chain and drops repeats within the batch.
func (g *LLMGenerator) filter(questions []Question, in GenerateInput) []Question {
	kept := questions[:0]
	seen := make(map[string]bool, len(questions))
	for i := range questions {
		q := &questions[i]
		key := strings.ToLower(q.Prompt)
		if seen[key] {
			continue
		}
		if verr := g.validate(q, in); verr != nil {
			g.logger.Debug("dropped generated question", zap.String("question", q.Prompt), zap.Error(verr))
			continue
		}
		seen[key] = true
		kept = append(kept, *q)
	}
	return kept
}

func (g *LLMGenerator) validate(q *Question, in GenerateInput) *ValidationError {
	for _, v := range g.config.Validators {
		if err := v.Validate(q, in); err != nil {
			return err
		}
	}
	return nil
}
