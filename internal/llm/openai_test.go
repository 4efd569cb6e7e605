package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := ConfigFor(ProviderOpenAI)
	config.BaseURL = server.URL
	client, err := NewOpenAIClient(config, "test-key")
	require.NoError(t, err)
	return client
}

func TestOpenAIClient_Generate(t *testing.T) {
	var got chatRequest
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "INSTRUCTION: a INPUT: b OUTPUT: c"}},
			},
		})
	})

	reply, err := client.Generate(context.Background(), Request{System: "be a chef", User: "make a pair"})
	require.NoError(t, err)
	assert.Equal(t, "INSTRUCTION: a INPUT: b OUTPUT: c", reply)

	assert.Equal(t, DefaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, Message{Role: "system", Content: "be a chef"}, got.Messages[0])
	assert.Equal(t, Message{Role: "user", Content: "make a pair"}, got.Messages[1])
	assert.Nil(t, got.ResponseFormat)
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	var got chatRequest
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "```json\n{\"instruction\": \"x\"}\n```"}},
			},
		})
	})

	reply, err := client.GenerateJSON(context.Background(), Request{User: "json please"})
	require.NoError(t, err)
	assert.Equal(t, `{"instruction": "x"}`, reply)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 1, "no system message when System is empty")
}

func TestOpenAIClient_APIError(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	})

	_, err := client.Generate(context.Background(), Request{User: "hi"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rate limited")
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := client.Generate(context.Background(), Request{User: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAIClient_Model(t *testing.T) {
	client, err := NewOpenAIClient(ConfigFor(ProviderOpenAI).WithModel("gpt-4o-mini"), "k")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", client.Model())
	assert.NoError(t, client.Close())
}
