package embedding

import (
	"time"

	"go.uber.org/zap"

	"contractqa/internal/config"
	"contractqa/internal/domain"
	"contractqa/internal/embedding/openai"
	"contractqa/internal/embedding/zero"
)

// New picks the embedding backend once: the OpenAI client when an API key is
// configured, the deterministic zero-vector stub otherwise.
func New(cfg *config.AppConfig) (domain.Embedder, error) {
	if !cfg.HasCredential() {
		zap.L().Info("no API key configured, using zero-vector embeddings",
			zap.Int("dimension", cfg.Embedder.Dimension))
		return zero.NewEmbedder(cfg.Embedder.Dimension), nil
	}
	return openai.NewClient(openai.Config{
		APIKey:    cfg.OpenAI.APIKey,
		BaseURL:   cfg.OpenAI.BaseURL,
		Model:     cfg.Embedder.Model,
		Dimension: cfg.Embedder.Dimension,
		BatchSize: cfg.Embedder.BatchSize,
		Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
	})
}
