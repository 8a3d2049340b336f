package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentflow/config"
)

type capturedRequest struct {
	Model    string `json:"model"`
	System   []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role string `json:"role"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("X-Api-Key"))
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

const okResponse = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-20250514",
	"content": [{"type": "text", "text": "NA cluster healthy"}, {"type": "text", "text": "no restarts"}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 10, "output_tokens": 5}
}`

func newClient(server *httptest.Server) *Client {
	return NewClient(
		config.AnthropicConfig{APIKey: "sk-test", Model: "claude-sonnet-4-20250514"},
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	).(*Client)
}

func TestRunAgent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var req capturedRequest
		client := newClient(newTestServer(t, http.StatusOK, okResponse, &req))

		out, err := client.RunAgent(context.Background(), "na-responder", "check the cluster")
		require.NoError(t, err)
		assert.Equal(t, "NA cluster healthy\nno restarts", out)
		assert.Equal(t, "claude-sonnet-4-20250514", req.Model)
		require.Len(t, req.System, 1)
		assert.Contains(t, req.System[0].Text, "na-responder")
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
	})

	t.Run("Error_APIFailure", func(t *testing.T) {
		client := newClient(newTestServer(t, http.StatusBadRequest, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`, nil))

		_, err := client.RunAgent(context.Background(), "na-responder", "check")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "agent na-responder")
	})
}

func TestComplete(t *testing.T) {
	t.Run("Success_ModelOverride", func(t *testing.T) {
		var req capturedRequest
		client := newClient(newTestServer(t, http.StatusOK, okResponse, &req))

		_, err := client.Complete(context.Background(), "claude-3-5-haiku-latest", "summarize")
		require.NoError(t, err)
		assert.Equal(t, "claude-3-5-haiku-latest", req.Model)
		assert.Empty(t, req.System)
	})

	t.Run("Error_NoText", func(t *testing.T) {
		client := newClient(newTestServer(t, http.StatusOK, `{"id":"msg_2","type":"message","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":0}}`, nil))

		_, err := client.Complete(context.Background(), "", "summarize")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "returned no text")
	})
}
