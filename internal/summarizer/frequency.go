// Package summarizer builds a short extractive overview of a document.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"contractqa/internal/domain"
	"contractqa/internal/lexical"
)

const (
	defaultSentences = 3
	// fallbackRunes bounds the overview of text without sentence punctuation.
	fallbackRunes = 300
)

var sentenceRe = regexp.MustCompile(`[^.!?\n]+(?:[.!?]+|\n|$)`)

// Frequency ranks sentences by the normalised frequency of their content
// words and returns the best ones in document order.
type Frequency struct {
	stopwords map[string]struct{}
}

func NewFrequency() *Frequency {
	return &Frequency{stopwords: defaultStopwords()}
}

// SummarizePages summarises the readable text of pages.
func (s *Frequency) SummarizePages(pages []domain.Page, maxSentences int) string {
	var b strings.Builder
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return s.Summarize(b.String(), maxSentences)
}

// Summarize picks up to maxSentences sentences from text.
func (s *Frequency) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = defaultSentences
	}
	var sentences []string
	for _, m := range sentenceRe.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if len(lexical.Tokens(m)) >= 3 {
			sentences = append(sentences, m)
		}
	}
	if len(sentences) == 0 {
		r := []rune(strings.TrimSpace(text))
		if len(r) > fallbackRunes {
			r = r[:fallbackRunes]
		}
		return string(r)
	}

	freq := map[string]float64{}
	maxF := 0.0
	for _, sent := range sentences {
		for _, tok := range lexical.Tokens(sent) {
			if _, stop := s.stopwords[tok]; stop {
				continue
			}
			freq[tok]++
			maxF = math.Max(maxF, freq[tok])
		}
	}

	if maxF == 0 {
		maxF = 1
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := lexical.Tokens(sent)
		sum := 0.0
		for _, tok := range toks {
			sum += freq[tok] / maxF
		}
		// damp long sentences
		scores[i] = scored{i, sum / math.Sqrt(float64(len(toks)))}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	n := min(maxSentences, len(scores))
	selected := make([]int, n)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, n)
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "should", "now",
		"shall", "may", "any", "all", "each", "other", "its", "their", "herein", "hereto", "hereof", "thereof", "hereunder", "whereas", "party", "parties", "agreement",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
