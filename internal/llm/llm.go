// Package llm selects the text generation backend.
package llm

import (
	"time"

	"go.uber.org/zap"

	"contractqa/internal/config"
	"contractqa/internal/domain"
	"contractqa/internal/llm/openai"
)

// New returns the configured generator, or nil without error when no API key
// is set. Callers treat a nil generator as unconfigured.
func New(cfg *config.AppConfig) (domain.Generator, error) {
	if !cfg.HasCredential() {
		zap.L().Info("no API key configured, answer generation disabled")
		return nil, nil
	}
	gen, err := openai.NewGenerator(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return gen, nil
}
