// Package gateway is the single entry point for model calls. It turns
// every provider failure into sentinel text so quiz, grading and tutor
// code never handle provider errors directly.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/llm"
)

// Sentinel prefixes marking degraded output.
const (
	UnavailablePrefix = "[UNAVAILABLE] "
	ErrorPrefix       = "[ERROR] "
)

// unavailableEcho is how many runes of the prompt the unavailable sentinel
// repeats.
const unavailableEcho = 200

// Prompt is one model call.
type Prompt struct {
	System string

	// Text is sent as a single user message when Messages is empty.
	Text string

	// Messages carries a multi-turn conversation and takes precedence
	// over Text.
	Messages []llm.Message

	// Purpose labels the request in the LLM event log.
	Purpose string

	// Schema requests structured JSON output; nil means free text.
	Schema *llm.Schema

	MaxTokens int

	// Temperature overrides the gateway default when set, zero included.
	Temperature *float64
}

// Float returns a pointer to v, for Prompt.Temperature.
func Float(v float64) *float64 {
	return &v
}

// lastUserText returns the text the unavailable sentinel echoes.
func (p Prompt) lastUserText() string {
	for i := len(p.Messages) - 1; i >= 0; i-- {
		if p.Messages[i].Role == llm.RoleUser {
			return p.Messages[i].Content
		}
	}
	return p.Text
}

// Options configures a Gateway.
type Options struct {
	// Timeout bounds each call including retries. Default 30s.
	Timeout time.Duration

	// MaxTokens applies when a Prompt leaves it zero; Temperature when a
	// Prompt leaves it nil.
	MaxTokens   int
	Temperature float64

	Logger *zap.Logger
}

// Gateway wraps an llm.Provider with the never-fail contract.
type Gateway struct {
	provider llm.Provider
	opts     Options
	logger   *zap.Logger
}

// New creates a Gateway. A nil provider puts the gateway in mock mode.
func New(provider llm.Provider, opts Options) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 800
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{provider: provider, opts: opts, logger: logger}
}

// Offline reports whether no model backend is configured.
func (g *Gateway) Offline() bool {
	if g.provider == nil {
		return true
	}
	_, ok := g.provider.(*llm.OfflineProvider)
	return ok
}

// ModelID names the backing model, or "offline".
func (g *Gateway) ModelID() string {
	if g.provider == nil {
		return llm.ProviderOffline
	}
	return g.provider.ModelID()
}

// Generate runs one prompt and returns the model text, or a sentinel
// string when the call could not be served. It never returns an error.
func (g *Gateway) Generate(ctx context.Context, p Prompt) string {
	if g.Offline() {
		return Unavailable(p.lastUserText())
	}

	req := llm.Request{
		System:      p.System,
		Messages:    p.Messages,
		Schema:      p.Schema,
		MaxTokens:   p.MaxTokens,
		Temperature: g.opts.Temperature,
	}
	if len(req.Messages) == 0 {
		req.Messages = []llm.Message{{Role: llm.RoleUser, Content: p.Text}}
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = g.opts.MaxTokens
	}
	if p.Temperature != nil {
		req.Temperature = *p.Temperature
	}

	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()
	if p.Purpose != "" {
		callCtx = llm.WithPurpose(callCtx, p.Purpose)
	}

	resp, err := g.provider.Generate(callCtx, req)
	if err != nil {
		return g.degrade(ctx, callCtx, p, err)
	}
	return resp.Text()
}

// Chat sends a multi-turn conversation.
func (g *Gateway) Chat(ctx context.Context, system string, history []llm.Message, purpose string) string {
	return g.Generate(ctx, Prompt{
		System:   system,
		Messages: history,
		Purpose:  purpose,
	})
}

func (g *Gateway) degrade(parent, callCtx context.Context, p Prompt, err error) string {
	var out string
	switch {
	case errors.Is(err, llm.ErrOffline):
		out = Unavailable(p.lastUserText())
	case parent.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded):
		out = ErrorPrefix + fmt.Sprintf("timeout after %s", g.opts.Timeout)
	default:
		out = ErrorPrefix + err.Error()
	}
	g.logger.Warn("model call degraded",
		zap.String("purpose", p.Purpose),
		zap.String("model", g.ModelID()),
		zap.Error(err))
	return out
}

// Unavailable builds the mock-mode sentinel for a prompt.
func Unavailable(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > unavailableEcho {
		runes = runes[:unavailableEcho]
	}
	return UnavailablePrefix + string(runes)
}

// IsSentinel reports whether s marks degraded output.
func IsSentinel(s string) bool {
	return strings.HasPrefix(s, UnavailablePrefix) || strings.HasPrefix(s, ErrorPrefix)
}

// IsUnavailable reports whether s is the mock-mode sentinel.
func IsUnavailable(s string) bool {
	return strings.HasPrefix(s, UnavailablePrefix)
}
