package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/bnema/agent-chat-cli/internal/ports"
)

const (
	askPath          = "/ask_agent"
	maxResponseBytes = 1 << 20
)

// Client asks a remote agent service for replies over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Secrets, when set, supplies an optional bearer token.
	Secrets ports.SecretStore
}

var _ ports.ReplyClient = Client{}

type askRequest struct {
	AgentID  string `json:"agent_id"`
	Question string `json:"question"`
}

type askResponse struct {
	Answer *string `json:"answer"`
}

func (c Client) Ask(ctx context.Context, req domain.ReplyRequest) (string, error) {
	endpoint, err := buildAPIURL(c.BaseURL, askPath)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(askRequest{AgentID: string(req.Agent.ID), Question: req.Question})
	if err != nil {
		return "", fmt.Errorf("encode ask request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create ask request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	token, err := c.token(ctx)
	if err != nil {
		return "", err
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ask agent: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return "", &domain.ReplyStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var payload askResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode ask response: %w", err)
	}
	if payload.Answer == nil {
		return "", errors.New("decode ask response: missing answer")
	}

	return *payload.Answer, nil
}

func (c Client) token(ctx context.Context) (string, error) {
	if c.Secrets == nil {
		return "", nil
	}

	token, err := c.Secrets.Get(ctx, domain.ProviderRemote.SecretKey())
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read remote token: %w", err)
	}

	return strings.TrimSpace(token), nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("reply base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse reply base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("reply base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("reply base url host is required")
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + path
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}
