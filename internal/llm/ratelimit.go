package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitProvider is a decorator that spaces outgoing requests with a
// token bucket shared by every caller of the provider.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps a Provider with a limiter. A non-positive RPS returns
// p unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	if cfg.RPS <= 0 {
		return p
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimitProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), burst),
	}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}
