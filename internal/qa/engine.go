// Package qa answers questions over an indexed contract and extracts its
// key entities with the configured generator.
package qa

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"contractqa/internal/domain"
	"contractqa/internal/lexical"
	"contractqa/internal/prompts"
	"contractqa/internal/vectorstore"
)

// FeedbackFinder looks up past ratings related to a question.
type FeedbackFinder interface {
	FindForQuestion(q string) []domain.FeedbackEntry
}

// Answer is a generated reply and the passages it was grounded on.
type Answer struct {
	Text    string
	Sources []domain.Source
	// FeedbackUsed is set when past ratings shaped the prompt.
	FeedbackUsed bool
}

// Engine runs retrieval-augmented answering.
type Engine struct {
	embedder   domain.Embedder
	generator  domain.Generator
	feedback   FeedbackFinder
	maxSources int
	logger     *zap.Logger
}

// NewEngine wires the engine. generator may be nil, in which case Answer
// fails with ErrConfiguration and only Retrieve is usable.
func NewEngine(embedder domain.Embedder, generator domain.Generator, feedback FeedbackFinder, maxSources int) *Engine {
	if maxSources <= 0 {
		maxSources = vectorstore.DefaultMaxSources
	}
	return &Engine{
		embedder:   embedder,
		generator:  generator,
		feedback:   feedback,
		maxSources: maxSources,
		logger:     zap.L().With(zap.String("component", "qa")),
	}
}

// Answer retrieves context for question from idx and asks the generator,
// steering the prompt with matching feedback. The model's reply is returned
// verbatim.
func (e *Engine) Answer(ctx context.Context, idx *vectorstore.Index, question string) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, domain.E(domain.ErrInvalidInput, "qa", eris.New("question cannot be empty"))
	}
	if e.generator == nil {
		return Answer{}, domain.E(domain.ErrConfiguration, "qa", eris.New("an API key is required for question answering"))
	}
	if idx == nil {
		return Answer{}, domain.E(domain.ErrInvalidInput, "qa", eris.New("no contract has been indexed"))
	}

	var related []domain.FeedbackEntry
	if e.feedback != nil {
		related = e.feedback.FindForQuestion(question)
	}
	template := prompts.Compose(prompts.QATemplate, related)

	results, err := e.Retrieve(ctx, idx, question)
	if err != nil {
		return Answer{}, err
	}

	prompt := prompts.Render(template, map[string]string{
		"context": formatContext(results),
		"input":   question,
	})

	start := time.Now()
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, err
	}
	e.logger.Info("answered question",
		zap.Int("sources", len(results)),
		zap.Int("feedback", len(related)),
		zap.Duration("took", time.Since(start)))

	sources := make([]domain.Source, len(results))
	for i, r := range results {
		sources[i] = domain.Source{Content: r.Chunk.Text, Page: r.Chunk.Page}
	}
	return Answer{Text: text, Sources: sources, FeedbackUsed: len(related) > 0}, nil
}

// Retrieve returns the chunks most similar to question. When the vectors
// carry no signal (every score is zero) the index is ranked by word overlap
// instead.
func (e *Engine) Retrieve(ctx context.Context, idx *vectorstore.Index, question string) ([]domain.SearchResult, error) {
	if idx == nil {
		return nil, domain.E(domain.ErrInvalidInput, "qa", eris.New("no contract has been indexed"))
	}
	vec, err := e.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}
	results := idx.Search(vec, e.maxSources)
	if allZero(results) {
		return lexicalRank(idx, question, len(results)), nil
	}
	return results, nil
}

func allZero(results []domain.SearchResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if r.Score > 1e-9 {
			return false
		}
	}
	return true
}

func lexicalRank(idx *vectorstore.Index, question string, k int) []domain.SearchResult {
	q := lexical.TokenSet(question)
	chunks := idx.Chunks()
	scored := make([]domain.SearchResult, len(chunks))
	for i, c := range chunks {
		scored[i] = domain.SearchResult{Chunk: c, Score: float32(lexical.Ochiai(q, c.Text))}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored[:k]
}

func formatContext(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Page %d]\n%s", r.Chunk.Page, r.Chunk.Text)
	}
	return strings.Join(parts, "\n\n")
}
