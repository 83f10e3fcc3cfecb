package config

import (
	"context"
	"os"
)

// EnvProvider reads secrets straight from the process environment. It is
// the terminal fallback in the default chain.
type EnvProvider struct{}

// NewEnvProvider creates an environment variable provider.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// GetSecret returns the env var value, empty if unset.
func (e *EnvProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return os.Getenv(key), nil
}

// Name implements SecretProvider.
func (e *EnvProvider) Name() string {
	return "env"
}

// IsAvailable is always true, the environment is always there.
func (e *EnvProvider) IsAvailable(ctx context.Context) bool {
	return true
}
