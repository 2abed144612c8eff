package qa

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractqa/internal/chunker"
	"contractqa/internal/config"
	"contractqa/internal/domain"
	"contractqa/internal/embedding/zero"
	"contractqa/internal/feedback"
	"contractqa/internal/prompts"
	"contractqa/internal/vectorstore"
)

// fakeGenerator records prompts and replies with a fixed text.
type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Model() string { return "fake" }

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func buildIndex(t *testing.T, pages []domain.Page) *vectorstore.Index {
	t.Helper()
	chunks, err := chunker.NewRecursiveChunker(800, 150).Chunk(pages)
	require.NoError(t, err)
	idx, err := vectorstore.Build(context.Background(), chunks, zero.NewEmbedder(16), 3)
	require.NoError(t, err)
	return idx
}

func contractPages() []domain.Page {
	return []domain.Page{
		{Number: 1, Text: "The effective date of this Agreement is 2024-01-15 between Acme Corp and Globex LLC."},
		{Number: 2, Text: "Either party may terminate with ninety days written notice."},
		{Number: 3, Text: "Delaware law governs."},
		{Number: 4, Text: "Fees are payable within thirty days of invoice."},
	}
}

func newStore(t *testing.T) *feedback.Store {
	t.Helper()
	return feedback.NewStore(filepath.Join(t.TempDir(), "feedback.jsonl"), config.MatchContains)
}

func TestAnswerEndToEnd(t *testing.T) {
	idx := buildIndex(t, contractPages())
	gen := &fakeGenerator{reply: "The effective date is 2024-01-15 (page 1)."}
	engine := NewEngine(zero.NewEmbedder(16), gen, newStore(t), 3)

	ans, err := engine.Answer(context.Background(), idx, "What is the effective date?")
	require.NoError(t, err)

	assert.Equal(t, "The effective date is 2024-01-15 (page 1).", ans.Text)
	assert.False(t, ans.FeedbackUsed)
	require.NotEmpty(t, ans.Sources)
	assert.LessOrEqual(t, len(ans.Sources), 3)
	assert.Equal(t, 1, ans.Sources[0].Page)
	assert.Contains(t, ans.Sources[0].Content, "2024-01-15")

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "[Page 1]\nThe effective date of this Agreement is 2024-01-15")
	assert.Contains(t, prompt, "Question: What is the effective date?")
	assert.NotContains(t, prompt, "{context}")
	assert.NotContains(t, prompt, "Learning from Previous Interactions")
}

func TestAnswerUsesFeedback(t *testing.T) {
	idx := buildIndex(t, contractPages())
	store := newStore(t)
	_, err := store.Append(feedback.Input{
		Question: "What is the effective date of the agreement?",
		Answer:   "It starts in January.",
		Rating:   domain.RatingDown,
		Comment:  "Give the exact date",
	})
	require.NoError(t, err)

	gen := &fakeGenerator{reply: "2024-01-15"}
	engine := NewEngine(zero.NewEmbedder(16), gen, store, 3)

	ans, err := engine.Answer(context.Background(), idx, "What is the effective date")
	require.NoError(t, err)
	assert.True(t, ans.FeedbackUsed)
	assert.Contains(t, gen.prompts[0], "Issue: Give the exact date")
}

func TestAnswerReturnsSentinelVerbatim(t *testing.T) {
	idx := buildIndex(t, contractPages())
	gen := &fakeGenerator{reply: prompts.NotFound}
	engine := NewEngine(zero.NewEmbedder(16), gen, nil, 3)

	ans, err := engine.Answer(context.Background(), idx, "Who is the CEO?")
	require.NoError(t, err)
	assert.Equal(t, prompts.NotFound, ans.Text)
	assert.NotEmpty(t, ans.Sources)
}

func TestAnswerValidation(t *testing.T) {
	idx := buildIndex(t, contractPages())
	ctx := context.Background()

	engine := NewEngine(zero.NewEmbedder(16), &fakeGenerator{}, nil, 3)
	_, err := engine.Answer(ctx, idx, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = engine.Answer(ctx, nil, "What is the fee?")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	unconfigured := NewEngine(zero.NewEmbedder(16), nil, nil, 3)
	_, err = unconfigured.Answer(ctx, idx, "What is the fee?")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestAnswerBackendError(t *testing.T) {
	idx := buildIndex(t, contractPages())
	backendErr := domain.E(domain.ErrBackend, "llm", errors.New("timeout"))
	engine := NewEngine(zero.NewEmbedder(16), &fakeGenerator{err: backendErr}, nil, 3)

	_, err := engine.Answer(context.Background(), idx, "What is the fee?")
	assert.ErrorIs(t, err, domain.ErrBackend)
}

func TestRetrieveFallsBackToWordOverlap(t *testing.T) {
	idx := buildIndex(t, contractPages())
	engine := NewEngine(zero.NewEmbedder(16), nil, nil, 2)

	results, err := engine.Retrieve(context.Background(), idx, "governing laws Delaware")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].Chunk.Page)
	assert.Greater(t, results[0].Score, float32(0))
}

func TestFormatContext(t *testing.T) {
	out := formatContext([]domain.SearchResult{
		{Chunk: domain.Chunk{Text: "alpha", Page: 2}},
		{Chunk: domain.Chunk{Text: "beta", Page: 5}},
	})
	assert.Equal(t, "[Page 2]\nalpha\n\n[Page 5]\nbeta", out)
	assert.Equal(t, 1, strings.Count(out, "\n\n"))
}
