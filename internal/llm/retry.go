package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// retryPolicy says how a failed attempt may be repeated.
type retryPolicy int

const (
	// noRetry fails the request immediately.
	noRetry retryPolicy = iota
	// retryOnce allows a single extra attempt per request.
	retryOnce
	// retryBackoff retries with exponential backoff until attempts run out.
	retryBackoff
)

// classifyRetry maps a provider error to its retry policy.
func classifyRetry(err error) retryPolicy {
	var (
		maxTok  *ErrMaxTokensExceeded
		blocked *ErrContentBlocked
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return noRetry
	case errors.Is(err, ErrOffline):
		return noRetry
	case errors.As(err, &maxTok), errors.As(err, &blocked):
		// Same prompt, same outcome.
		return noRetry
	case errors.As(err, &invalid):
		return retryOnce
	default:
		// Rate limits, unavailable providers and network errors.
		return retryBackoff
	}
}

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger *zap.Logger
}

// WithRetry wraps a Provider with retry logic. At least one attempt is
// always made.
func WithRetry(p Provider, cfg RetryConfig, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	return &RetryProvider{inner: p, config: cfg, logger: logger}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	usedOnce := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch classifyRetry(err) {
		case noRetry:
			return nil, err
		case retryOnce:
			if usedOnce {
				return nil, err
			}
			usedOnce = true
		}
		if attempt >= r.config.MaxAttempts {
			return nil, err
		}

		wait := r.backoff(attempt-1, err)
		r.logger.Debug("retrying llm request",
			zap.String("purpose", PurposeFrom(ctx)),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff is InitialWait * Multiplier^attempt capped at MaxWait with ±20%
// jitter. A rate limit's RetryAfter takes precedence.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.config.MaxWait))
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(math.Max(wait, 0))
}
