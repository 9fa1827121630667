package anthropic

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

var testAgent = domain.Agent{ID: "a-1", Name: "Ada", Role: "Helper", Goal: "Assist"}

func testEnv(name string) (string, bool) {
	if name == APIKeyEnv {
		return "sk-ant-test", true
	}
	return "", false
}

func TestClientAskSendsPersonaPrompt(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body.Model)
		assert.Equal(t, 1000, body.MaxTokens)
		require.Len(t, body.Messages, 1)
		require.Len(t, body.Messages[0].Content, 1)
		assert.Equal(t, domain.PersonaPrompt(testAgent, "Hello"), body.Messages[0].Content[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"Hi "},{"type":"text","text":"there"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":2}}`))
	}))
	t.Cleanup(server.Close)

	client := Client{BaseURL: server.URL, Model: "claude-test", HTTPClient: server.Client(), LookupEnv: testEnv}
	answer, err := client.Ask(context.Background(), domain.ReplyRequest{Agent: testAgent, Question: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", answer)
}

func TestClientAskMapsAPIErrorsToStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	t.Cleanup(server.Close)

	client := Client{BaseURL: server.URL, HTTPClient: server.Client(), LookupEnv: testEnv}
	_, err := client.Ask(context.Background(), domain.ReplyRequest{Agent: testAgent, Question: "Hello"})

	var statusErr *domain.ReplyStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}
