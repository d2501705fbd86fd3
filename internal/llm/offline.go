package llm

import "context"

// OfflineProvider is used when no model backend is configured. Every call
// fails with ErrOffline so the gateway can degrade to its unavailable text.
type OfflineProvider struct{}

// NewOfflineProvider returns the offline provider.
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

func (OfflineProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, ErrOffline
}

func (OfflineProvider) ModelID() string {
	return ProviderOffline
}
