package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/metrics"
	"github.com/abhisek/edugenie/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an
// event, counts it in metrics and logs failures.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// WithLogging wraps a Provider with event logging. repo and m may be nil.
func WithLogging(p Provider, provider string, repo store.EventRepo, m *metrics.Metrics, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{
		inner:     p,
		provider:  provider,
		eventRepo: repo,
		metrics:   m,
		logger:    logger,
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start)
	cached := resp != nil && resp.Cached
	l.metrics.ObserveLLM(l.provider, err, cached, latency)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		Cached:      cached,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		l.logger.Warn("llm request failed",
			zap.String("provider", l.provider),
			zap.String("purpose", purpose),
			zap.Duration("latency", latency),
			zap.Error(err))
	} else {
		l.logger.Debug("llm request",
			zap.String("provider", l.provider),
			zap.String("model", data.Model),
			zap.String("purpose", purpose),
			zap.Bool("cached", cached),
			zap.Int("input_tokens", data.InputTokens),
			zap.Int("output_tokens", data.OutputTokens),
			zap.Duration("latency", latency))
	}

	if l.eventRepo == nil {
		return resp, err
	}
	// Don't fail the request if the event can't be stored.
	if logErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		l.logger.Warn("failed to log LLM request event", zap.Error(logErr))
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
