package openai

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"contractqa/internal/domain"
)

const (
	defaultModel     = "text-embedding-3-small"
	defaultBatchSize = 64
	defaultTimeout   = 30 * time.Second
)

var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Client is an OpenAI embeddings client implementing domain.Embedder.
type Client struct {
	client     *openai.Client
	model      string
	dimension  atomic.Int64
	batchSize  int
	maxRetries int
	logger     *zap.Logger
}

// Config configures the OpenAI embeddings client.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for a compatible proxy.
	BaseURL   string
	Model     string
	Dimension int
	BatchSize int
	Timeout   time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, domain.E(domain.ErrConfiguration, "embedding", eris.New("missing OpenAI API key"))
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	dim := cfg.Dimension
	if known, ok := modelDimensions[cfg.Model]; ok {
		dim = known
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		batchSize:  cfg.BatchSize,
		maxRetries: 3,
		logger:     zap.L().With(zap.String("component", "embedding"), zap.String("model", cfg.Model)),
	}
	c.dimension.Store(int64(dim))
	return c, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimension() int { return int(c.dimension.Load()) }

// EmbedQuery returns the embedding vector for a single query.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedDocuments embeds texts in batches, preserving input order.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		vecs, err := c.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
		c.logger.Debug("embedded batch", zap.Int("done", end), zap.Int("total", len(texts)))
	}
	return out, nil
}

func (c *Client) embed(ctx context.Context, batch []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input: batch,
		Model: openai.EmbeddingModel(c.model),
	}

	var (
		resp openai.EmbeddingResponse
		err  error
	)
	for attempt := 0; ; attempt++ {
		resp, err = c.client.CreateEmbeddings(ctx, req)
		if err == nil || attempt >= c.maxRetries || !retryable(err) {
			break
		}
		c.logger.Warn("embedding request failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, domain.E(domain.ErrBackend, "embedding", ctx.Err())
		case <-time.After(retryDelay(attempt)):
		}
	}
	if err != nil {
		return nil, domain.E(domain.ErrBackend, "embedding", eris.Wrap(err, "create embeddings"))
	}
	if len(resp.Data) != len(batch) {
		return nil, domain.E(domain.ErrBackend, "embedding",
			eris.Errorf("expected %d embeddings, got %d", len(batch), len(resp.Data)))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	vecs := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vecs[i] = d.Embedding
	}
	if n := int64(len(vecs[0])); n > 0 && c.dimension.Swap(n) != n {
		c.logger.Info("adopting dimension reported by API", zap.Int64("dimension", n))
	}
	return vecs, nil
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
