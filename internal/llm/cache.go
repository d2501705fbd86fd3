package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/store"
)

// CacheProvider is a decorator that serves repeated identical requests from
// the response cache. Cache failures are logged and bypassed.
type CacheProvider struct {
	inner  Provider
	cache  store.CacheRepo
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// WithCache wraps a Provider with a response cache. A nil cache or a
// non-positive ttl returns p unchanged.
func WithCache(p Provider, cache store.CacheRepo, ttl time.Duration, logger *zap.Logger) Provider {
	if cache == nil || ttl <= 0 {
		return p
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheProvider{inner: p, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

func (c *CacheProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	key := CacheKey(c.inner.ModelID(), req)

	value, storedAt, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("response cache read failed", zap.String("key", key), zap.Error(err))
	case ok && c.now().Sub(storedAt) < c.ttl:
		return &Response{
			Content:    json.RawMessage(value),
			Model:      c.inner.ModelID(),
			StopReason: StopEnd,
			Cached:     true,
		}, nil
	}

	resp, err := c.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StopReason == StopEnd {
		if err := c.cache.Set(ctx, key, string(resp.Content), c.now()); err != nil {
			c.logger.Warn("response cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, nil
}

func (c *CacheProvider) ModelID() string {
	return c.inner.ModelID()
}

// CacheKey hashes everything that influences a model's answer.
func CacheKey(model string, req Request) string {
	type keyed struct {
		Model       string    `json:"model"`
		System      string    `json:"system"`
		Messages    []Message `json:"messages"`
		Schema      string    `json:"schema,omitempty"`
		MaxTokens   int       `json:"max_tokens"`
		Temperature float64   `json:"temperature"`
	}
	k := keyed{
		Model:       model,
		System:      req.System,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.Schema != nil {
		k.Schema = req.Schema.Name
	}
	b, _ := json.Marshal(k)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
