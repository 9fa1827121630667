package domain

import "fmt"

type Provider string

const (
	ProviderRemote    Provider = "remote"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

func ParseProvider(raw string) (Provider, error) {
	switch p := Provider(raw); p {
	case ProviderRemote, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q", raw)
	}
}

// SecretKey names the credential a provider reads from the secret store.
// The remote backend authenticates with a bearer token; the others with an API key.
func (p Provider) SecretKey() string {
	if p == ProviderRemote {
		return "agent-chat/remote/token"
	}
	return fmt.Sprintf("agent-chat/%s/api_key", p)
}
