package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewBackend_MissingKey(t *testing.T) {
	for _, provider := range []string{"", ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		t.Run(provider, func(t *testing.T) {
			_, err := NewBackend(context.Background(), Config{Provider: provider, APIKey: "  "})
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err), "got %T", err)
		})
	}
}

func TestNewBackend_UnknownProviderWithoutKey(t *testing.T) {
	_, err := NewBackend(context.Background(), Config{Provider: "llama"})
	require.Error(t, err)

	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "completion.provider", ce.Setting)
	assert.Contains(t, err.Error(), "unknown completion provider: llama")
	assert.NotContains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestNewBackend_UnknownProvider(t *testing.T) {
	_, err := NewBackend(context.Background(), Config{Provider: "llama", APIKey: "key"})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "llama")
}

func TestNewBackend_Defaults(t *testing.T) {
	backend, err := NewBackend(context.Background(), Config{Provider: "OpenAI", APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, backend.Name())
	assert.Equal(t, "gpt-4o-mini", backend.Model())

	ob := backend.(*openAIBackend)
	assert.InDelta(t, DefaultTemperature, ob.temperature, 1e-6)
}

func TestAPIKeyEnvVars(t *testing.T) {
	assert.Equal(t, []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}, APIKeyEnvVars(ProviderGemini))
	assert.Equal(t, []string{"OPENAI_API_KEY"}, APIKeyEnvVars(ProviderOpenAI))
	assert.Equal(t, []string{"ANTHROPIC_API_KEY"}, APIKeyEnvVars(ProviderAnthropic))
}

func TestOpenAIBackend_Complete(t *testing.T) {
	var req map[string]any
	server := captureServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1,
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "### Translation\nثابت قدم"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
	}`, &req)

	backend, err := NewBackend(context.Background(), Config{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  server.URL + "/v1",
	})
	require.NoError(t, err)

	result, err := backend.Complete(context.Background(), "translate: steadfast")
	require.NoError(t, err)
	assert.Equal(t, "### Translation\nثابت قدم", result.Text)
	assert.Equal(t, ProviderOpenAI, result.Metadata[MetadataKeyProvider])
	assert.Equal(t, "gpt-4o-mini", result.Metadata[MetadataKeyModel])
	assert.Equal(t, "12", result.Metadata[MetadataKeyInputTokens])
	assert.Equal(t, "5", result.Metadata[MetadataKeyOutputTokens])
	assert.Equal(t, "17", result.Metadata[MetadataKeyTotalTokens])
	assert.Equal(t, "stop", result.Metadata[MetadataKeyFinishReason])
	assert.NotEmpty(t, result.Metadata[MetadataKeyLatencyMs])

	assert.Equal(t, "gpt-4o-mini", req["model"])
	assert.InDelta(t, 0.7, req["temperature"], 1e-6)
	assert.NotContains(t, req, "response_format")
	messages, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "translate: steadfast", messages[0].(map[string]any)["content"])
}

func TestOpenAIBackend_JSONMode(t *testing.T) {
	var req map[string]any
	server := captureServer(t, http.StatusOK, `{
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"translation\":\"x\"}"}, "finish_reason": "stop"}]
	}`, &req)

	backend, err := NewBackend(context.Background(), Config{
		Provider:       ProviderOpenAI,
		APIKey:         "test-key",
		BaseURL:        server.URL + "/v1",
		ResponseSchema: map[string]any{"type": "object"},
	})
	require.NoError(t, err)

	_, err = backend.Complete(context.Background(), "p")
	require.NoError(t, err)

	format, ok := req["response_format"].(map[string]any)
	require.True(t, ok, "response_format missing from request")
	assert.Equal(t, "json_object", format["type"])
}

func TestOpenAIBackend_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error": {"message": "boom", "type": "server_error"}}`},
		{"no choices", http.StatusOK, `{"choices": []}`},
		{"blank content", http.StatusOK, `{"choices": [{"index": 0, "message": {"role": "assistant", "content": "  "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := captureServer(t, tt.status, tt.body, nil)
			backend, err := NewBackend(context.Background(), Config{
				Provider: ProviderOpenAI,
				APIKey:   "test-key",
				BaseURL:  server.URL + "/v1",
			})
			require.NoError(t, err)

			_, err = backend.Complete(context.Background(), "p")
			require.Error(t, err)
			assert.True(t, IsUpstreamError(err), "got %T", err)
		})
	}
}

func TestAnthropicBackend_Complete(t *testing.T) {
	var req map[string]any
	server := captureServer(t, http.StatusOK, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "### Translation\n"}, {"type": "text", "text": "ثابت قدم"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 8, "output_tokens": 4}
	}`, &req)

	backend, err := NewBackend(context.Background(), Config{
		Provider: ProviderAnthropic,
		APIKey:   "test-key",
		BaseURL:  server.URL,
	})
	require.NoError(t, err)

	result, err := backend.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "### Translation\nثابت قدم", result.Text)
	assert.Equal(t, "8", result.Metadata[MetadataKeyInputTokens])
	assert.Equal(t, "4", result.Metadata[MetadataKeyOutputTokens])
	assert.Equal(t, "12", result.Metadata[MetadataKeyTotalTokens])
	assert.Equal(t, "end_turn", result.Metadata[MetadataKeyFinishReason])

	assert.Equal(t, "claude-3-5-haiku-latest", req["model"])
	assert.InDelta(t, 0.7, req["temperature"], 1e-6)
}

func TestAnthropicBackend_ServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type": "error", "error": {"type": "api_error", "message": "boom"}}`)
	}))
	defer server.Close()

	backend, err := NewBackend(context.Background(), Config{
		Provider: ProviderAnthropic,
		APIKey:   "test-key",
		BaseURL:  server.URL,
	})
	require.NoError(t, err)

	_, err = backend.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, IsUpstreamError(err))
	assert.Equal(t, 1, calls, "failed calls must not be retried")
}

func TestGeminiBackend_Complete(t *testing.T) {
	var (
		req  map[string]any
		path string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"translation\": \"ثابت قدم\"}"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5}
		}`)
	}))
	defer server.Close()

	backend, err := NewBackend(context.Background(), Config{
		Provider:       ProviderGemini,
		APIKey:         "test-key",
		BaseURL:        server.URL,
		ResponseSchema: map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", backend.Model())

	result, err := backend.Complete(context.Background(), "steadfast")
	require.NoError(t, err)
	assert.Equal(t, `{"translation": "ثابت قدم"}`, result.Text)
	assert.Equal(t, "5", result.Metadata[MetadataKeyTotalTokens])
	assert.Equal(t, "STOP", result.Metadata[MetadataKeyFinishReason])

	assert.True(t, strings.Contains(path, "gemini-2.5-flash:generateContent"), "unexpected path %s", path)
	genCfg, ok := req["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing")
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
}
