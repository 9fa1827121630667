// Package reply holds what the reply provider adapters share.
package reply

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/bnema/agent-chat-cli/internal/ports"
)

var ErrMissingAPIKey = errors.New("api key is not configured")

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// ResolveAPIKey reads the provider key from the secret store, falling back to
// the given environment variable.
func ResolveAPIKey(ctx context.Context, secrets ports.SecretStore, provider domain.Provider, envVar string, lookup LookupEnvFunc) (string, error) {
	if secrets != nil {
		key, err := secrets.Get(ctx, provider.SecretKey())
		switch {
		case err == nil && strings.TrimSpace(key) != "":
			return strings.TrimSpace(key), nil
		case err != nil && !errors.Is(err, domain.ErrSecretNotFound):
			return "", fmt.Errorf("read %s api key: %w", provider, err)
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if key, ok := lookup(envVar); ok && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), nil
	}

	return "", fmt.Errorf("%s: %w (run `ac auth set --provider %s` or export %s)", provider, ErrMissingAPIKey, provider, envVar)
}
