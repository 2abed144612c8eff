package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"contractqa/internal/domain"
)

func TestComposeWithoutFeedbackIsIdentity(t *testing.T) {
	assert.Equal(t, QATemplate, Compose(QATemplate, nil))
	assert.Equal(t, QATemplate, Compose(QATemplate, []domain.FeedbackEntry{}))
}

func TestComposeAddsGuidanceBeforeAnswer(t *testing.T) {
	entries := []domain.FeedbackEntry{
		{Question: "Who are the parties?", Answer: "Acme and Globex (page 1)", Rating: domain.RatingUp},
		{Question: "Who are the parties?", Answer: "Unclear", Rating: domain.RatingDown, Comment: "Missed page 2"},
	}
	out := Compose(QATemplate, entries)

	assert.Greater(t, len(out), len(QATemplate))
	assert.Contains(t, out, "{context}")
	assert.Contains(t, out, "{input}")
	assert.True(t, strings.HasSuffix(out, "\nAnswer:"))
	assert.Contains(t, out, "## Learning from Previous Interactions:")
	assert.Contains(t, out, "1. Question: Who are the parties?\n   Answer: Acme and Globex (page 1)...\n")
	assert.Contains(t, out, "   Previous answer: Unclear...\n   Issue: Missed page 2\n")

	guidance := strings.Index(out, "## Learning")
	assert.Less(t, strings.Index(out, "Question: {input}"), guidance)
	assert.Less(t, guidance, strings.LastIndex(out, "\nAnswer:"))
}

func TestComposeBoundsExamples(t *testing.T) {
	var entries []domain.FeedbackEntry
	for _, q := range []string{"q1", "q2", "q3"} {
		entries = append(entries,
			domain.FeedbackEntry{Question: "up-" + q, Answer: "a", Rating: domain.RatingUp},
			domain.FeedbackEntry{Question: "down-" + q, Answer: "a", Rating: domain.RatingDown},
		)
	}
	out := Compose(QATemplate, entries)

	assert.Contains(t, out, "up-q1")
	assert.Contains(t, out, "up-q2")
	assert.NotContains(t, out, "up-q3")
	assert.Contains(t, out, "down-q2")
	assert.NotContains(t, out, "down-q3")
}

func TestComposeOnlyNegative(t *testing.T) {
	out := Compose(QATemplate, []domain.FeedbackEntry{{Question: "q", Answer: "a", Rating: domain.RatingDown}})
	assert.NotContains(t, out, "Examples of helpful answers")
	assert.Contains(t, out, "Examples to avoid")
	assert.NotContains(t, out, "Issue:")
}

func TestComposeTruncatesPreviewByRunes(t *testing.T) {
	long := strings.Repeat("é", AnswerPreviewLength+50)
	out := Compose(QATemplate, []domain.FeedbackEntry{{Question: "q", Answer: long, Rating: domain.RatingUp}})
	assert.Contains(t, out, "   Answer: "+strings.Repeat("é", AnswerPreviewLength)+"...\n")
	assert.NotContains(t, out, strings.Repeat("é", AnswerPreviewLength+1))
}

func TestComposeWithoutMarkerAppends(t *testing.T) {
	base := "Summarise {context}"
	out := Compose(base, []domain.FeedbackEntry{{Question: "q", Answer: "a", Rating: domain.RatingUp}})
	assert.True(t, strings.HasPrefix(out, base+"\n\n## Learning from Previous Interactions:\n"))
}

func TestRender(t *testing.T) {
	out := Render(QATemplate, map[string]string{
		"context": "[Page 1]\nThe fee is {input}.",
		"input":   "What is the fee?",
	})
	assert.Contains(t, out, "[Page 1]\nThe fee is {input}.")
	assert.Contains(t, out, "Question: What is the fee?")
	assert.NotContains(t, out, "{context}")
}
