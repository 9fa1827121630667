package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAgent = domain.Agent{ID: "a-1", Name: "Ada", Role: "Helper", Goal: "Assist", Backstory: "Built engines"}

func fixedEnv(key string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if name == APIKeyEnv {
			return key, true
		}
		return "", false
	}
}

func TestClientAskSendsPersonaPrompt(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4", body.Model)
		assert.Equal(t, 1000, body.MaxTokens)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)
		assert.Equal(t, domain.PersonaPrompt(testAgent, "Hello"), body.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Hi there"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(server.Close)

	client := Client{BaseURL: server.URL + "/v1", HTTPClient: server.Client(), LookupEnv: fixedEnv("sk-test")}
	answer, err := client.Ask(context.Background(), domain.ReplyRequest{Agent: testAgent, Question: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", answer)
}

func TestClientAskMapsAPIErrorsToStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	t.Cleanup(server.Close)

	client := Client{BaseURL: server.URL + "/v1", HTTPClient: server.Client(), LookupEnv: fixedEnv("sk-test")}
	_, err := client.Ask(context.Background(), domain.ReplyRequest{Agent: testAgent, Question: "Hello"})

	var statusErr *domain.ReplyStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestClientAskRequiresAPIKey(t *testing.T) {
	t.Parallel()

	client := Client{LookupEnv: func(string) (string, bool) { return "", false }}
	_, err := client.Ask(context.Background(), domain.ReplyRequest{Agent: testAgent, Question: "Hello"})
	require.ErrorContains(t, err, "api key is not configured")
	assert.NotErrorIs(t, err, domain.ErrReplyStatus)
}
