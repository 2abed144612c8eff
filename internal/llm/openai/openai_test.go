package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractqa/internal/domain"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, reply string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Not found in the contract"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`, &got)

	g, err := NewGenerator(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", g.Model())

	out, err := g.Generate(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "Not found in the contract", out)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "prompt text", got.Messages[0].Content)
	assert.Less(t, got.Temperature, 1e-6)
}

func TestGenerateNoChoices(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, `{"id":"1","object":"chat.completion","choices":[]}`, &got)

	g, err := NewGenerator(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o"})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrBackend)
}

func TestGenerateBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	g, err := NewGenerator(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrBackend)
}
