package config

import (
	"context"
	"fmt"
)

// SecretProvider resolves a configuration secret by key. Implementations
// back onto env vars, mounted files, or Kubernetes secret mounts.
type SecretProvider interface {
	// GetSecret returns the value for key, or empty when the source has
	// no entry for it.
	GetSecret(ctx context.Context, key string) (string, error)

	// Name identifies the provider in logs.
	Name() string

	// IsAvailable reports whether the backing source is usable here.
	IsAvailable(ctx context.Context) bool
}

// ChainProvider tries a list of providers in order and returns the first
// non-empty value. An empty value from one source is not a hit, the chain
// keeps going.
type ChainProvider struct {
	providers []SecretProvider
}

// NewChainProvider builds a chain. Order matters, put the most specific
// source first.
func NewChainProvider(providers ...SecretProvider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// GetSecret walks the chain until a provider yields a non-empty value.
func (c *ChainProvider) GetSecret(ctx context.Context, key string) (string, error) {
	var lastErr error

	for _, p := range c.providers {
		if !p.IsAvailable(ctx) {
			continue
		}
		value, err := p.GetSecret(ctx, key)
		if err == nil && value != "" {
			return value, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("all providers failed, last error: %w", lastErr)
	}
	return "", fmt.Errorf("no available provider found for key: %s", key)
}

// Name implements SecretProvider.
func (c *ChainProvider) Name() string {
	return "chain"
}

// IsAvailable reports whether any provider in the chain is usable.
func (c *ChainProvider) IsAvailable(ctx context.Context) bool {
	for _, p := range c.providers {
		if p.IsAvailable(ctx) {
			return true
		}
	}
	return false
}
