package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bnema/agent-chat-cli/internal/adapters/reply"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/bnema/agent-chat-cli/internal/ports"
)

const (
	DefaultModel = anthropic.ModelClaude3_7SonnetLatest
	APIKeyEnv    = "ANTHROPIC_API_KEY"
	maxTokens    = 1000
)

// Client answers as the agent persona through the Anthropic Messages API.
type Client struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Secrets    ports.SecretStore
	LookupEnv  reply.LookupEnvFunc
}

var _ ports.ReplyClient = Client{}

func (c Client) Ask(ctx context.Context, req domain.ReplyRequest) (string, error) {
	apiKey, err := reply.ResolveAPIKey(ctx, c.Secrets, domain.ProviderAnthropic, APIKeyEnv, c.LookupEnv)
	if err != nil {
		return "", err
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	}
	client := anthropic.NewClient(opts...)

	model := anthropic.Model(c.Model)
	if model == "" {
		model = DefaultModel
	}

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(domain.PersonaPrompt(req.Agent, req.Question))),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("anthropic message: %w", &domain.ReplyStatusError{StatusCode: apiErr.StatusCode})
		}
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	return b.String(), nil
}
