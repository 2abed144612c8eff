package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractqa/internal/domain"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// fakeAPI answers /embeddings with vectors whose first component encodes the
// input length, returned in reverse order to exercise index sorting.
func fakeAPI(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(len(req.Input[i])), 1, 0},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   data,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{APIKey: "  "})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEmbedDocumentsBatchesAndKeepsOrder(t *testing.T) {
	var calls atomic.Int32
	srv := fakeAPI(t, &calls)

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "custom", Dimension: 8, BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 8, c.Dimension())

	vecs, err := c.EmbedDocuments(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	for i, v := range vecs {
		assert.Equal(t, float32(i+1), v[0])
	}
	assert.Equal(t, int32(3), calls.Load())
	// the API reported 3-dimensional vectors
	assert.Equal(t, 3, c.Dimension())
}

func TestEmbedQuery(t *testing.T) {
	var calls atomic.Int32
	srv := fakeAPI(t, &calls)

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())
	assert.Equal(t, 1536, c.Dimension())

	v, err := c.EmbedQuery(context.Background(), "termination")
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 1, 0}, v)
}

func TestEmbedBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.EmbedQuery(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackend)
}

func TestEmbedRetriesRateLimit(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.5]}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	v, err := c.EmbedQuery(context.Background(), "retry me")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, v)
	assert.Equal(t, int32(2), attempts.Load())
}
