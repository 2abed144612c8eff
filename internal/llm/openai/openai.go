package openai

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"contractqa/internal/domain"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Config configures the chat completion client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Generator sends a single-message chat completion and returns the reply.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewGenerator(cfg Config) (*Generator, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, domain.E(domain.ErrConfiguration, "llm", eris.New("missing OpenAI API key"))
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: zap.L().With(zap.String("component", "llm"), zap.String("model", cfg.Model)),
	}, nil
}

func (g *Generator) Model() string { return g.model }

// Generate runs the prompt at (effectively) zero temperature.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// a literal 0 is dropped by omitempty and the API default (1) applies
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", domain.E(domain.ErrBackend, "llm", eris.Wrap(err, "chat completion"))
	}
	if len(resp.Choices) == 0 {
		return "", domain.E(domain.ErrBackend, "llm", eris.New("completion returned no choices"))
	}
	g.logger.Debug("completion done",
		zap.Duration("took", time.Since(start)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return resp.Choices[0].Message.Content, nil
}
