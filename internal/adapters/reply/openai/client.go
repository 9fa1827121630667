package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/agent-chat-cli/internal/adapters/reply"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/bnema/agent-chat-cli/internal/ports"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel = openai.GPT4
	APIKeyEnv    = "OPENAI_API_KEY"
	maxTokens    = 1000
)

// Client answers as the agent persona through the OpenAI chat completions API.
type Client struct {
	// BaseURL overrides the API endpoint, e.g. for OpenAI-compatible gateways.
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Secrets    ports.SecretStore
	LookupEnv  reply.LookupEnvFunc
}

var _ ports.ReplyClient = Client{}

func (c Client) Ask(ctx context.Context, req domain.ReplyRequest) (string, error) {
	apiKey, err := reply.ResolveAPIKey(ctx, c.Secrets, domain.ProviderOpenAI, APIKeyEnv, c.LookupEnv)
	if err != nil {
		return "", err
	}

	config := openai.DefaultConfig(apiKey)
	if c.BaseURL != "" {
		config.BaseURL = strings.TrimRight(c.BaseURL, "/")
	}
	if c.HTTPClient != nil {
		config.HTTPClient = c.HTTPClient
	}
	client := openai.NewClientWithConfig(config)

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: domain.PersonaPrompt(req.Agent, req.Question),
			},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return fmt.Errorf("openai completion: %w", &domain.ReplyStatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message})
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return fmt.Errorf("openai completion: %w", &domain.ReplyStatusError{StatusCode: reqErr.HTTPStatusCode})
	}

	return fmt.Errorf("openai completion: %w", err)
}
