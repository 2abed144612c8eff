// Package prompts holds the instruction templates sent to the model and
// conditions the answering template on rated past answers.
package prompts

import (
	"fmt"
	"strings"

	"contractqa/internal/domain"
)

// QATemplate expects {context} and {input}.
const QATemplate = `You are a legal contract assistant. Your task is to answer questions about a contract based solely on the provided context.

Context from the contract:
{context}

Question: {input}

Instructions:
1. Answer the question using ONLY the information provided in the context above.
2. Do not use any knowledge outside of the provided context.
3. Do not make up or infer information that is not explicitly stated in the context.
4. If the answer to the question cannot be found in the provided context, respond with exactly: "` + NotFound + `"
5. When referencing information from the contract, include the page number(s) from the source documents in your answer (e.g., "According to page 3..." or "As stated on pages 5-6...").

Answer:`

// EntityTemplate expects {contract_text}.
const EntityTemplate = `You are a legal contract analysis assistant. Extract key entities from the following contract text.

Contract text:
{contract_text}

Extract the following entities and return them as a JSON object with these exact keys:
- parties: List of party names (e.g., ["Company A", "Company B"])
- effective_date: The date when the contract becomes effective (format: YYYY-MM-DD or null if not found)
- termination_date: The date when the contract terminates or expires (format: YYYY-MM-DD or null if not found)
- payment_terms: Payment terms, amounts, and schedules (string or null if not found)
- ip_owner: Who owns the intellectual property (string or null if not found)
- governing_law: Which jurisdiction's law governs the contract (string or null if not found)

Instructions:
1. Extract information ONLY from the provided contract text.
2. Do not make up or infer information that is not explicitly stated.
3. If an entity is not found, use null for that field.
4. Return ONLY valid JSON, no additional text or explanation.
5. Dates should be in YYYY-MM-DD format if found, otherwise null.

Return the JSON object:`

// NotFound is the reply the model is told to give when the context has no answer.
const NotFound = "Not found in the contract"

const (
	// MaxFeedbackExamples bounds exemplars per rating.
	MaxFeedbackExamples = 2
	// AnswerPreviewLength is the number of runes of a past answer shown.
	AnswerPreviewLength = 200

	answerMarker = "\nAnswer:"
)

// Compose returns base with a guidance block built from entries spliced in
// front of the final answer marker. Entries are taken in the order given,
// at most MaxFeedbackExamples per rating. With no entries base is
// returned unchanged. If base has no answer marker the block is appended.
func Compose(base string, entries []domain.FeedbackEntry) string {
	if len(entries) == 0 {
		return base
	}

	var positive, negative []domain.FeedbackEntry
	for _, e := range entries {
		switch {
		case e.Rating == domain.RatingUp && len(positive) < MaxFeedbackExamples:
			positive = append(positive, e)
		case e.Rating == domain.RatingDown && len(negative) < MaxFeedbackExamples:
			negative = append(negative, e)
		}
	}

	var b strings.Builder
	b.WriteString("\n\n## Learning from Previous Interactions:\n")
	if len(positive) > 0 {
		b.WriteString("\n**Examples of helpful answers:**\n")
		for i, e := range positive {
			fmt.Fprintf(&b, "%d. Question: %s\n", i+1, e.Question)
			fmt.Fprintf(&b, "   Answer: %s...\n", preview(e.Answer))
		}
		b.WriteString("\nThese answers were rated as helpful. Use similar style and completeness.\n")
	}
	if len(negative) > 0 {
		b.WriteString("\n**Examples to avoid (these were rated as not helpful):**\n")
		for i, e := range negative {
			fmt.Fprintf(&b, "%d. Question: %s\n", i+1, e.Question)
			fmt.Fprintf(&b, "   Previous answer: %s...\n", preview(e.Answer))
			if e.Comment != "" {
				fmt.Fprintf(&b, "   Issue: %s\n", e.Comment)
			}
		}
		b.WriteString("\nAvoid these issues. Provide more complete and accurate answers.\n")
	}
	guidance := b.String()

	at := strings.LastIndex(base, answerMarker)
	if at < 0 {
		return base + guidance
	}
	return base[:at] + guidance + base[at:]
}

// Render replaces each {name} placeholder with vars[name] in one pass, so
// substituted values are never expanded again.
func Render(template string, vars map[string]string) string {
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > AnswerPreviewLength {
		r = r[:AnswerPreviewLength]
	}
	return string(r)
}
