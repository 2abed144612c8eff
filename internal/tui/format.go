package tui

import (
	"strings"
	"time"

	"contractqa/internal/domain"
)

const (
	SourcePreviewLength = 500
	AnswerPreviewLength = 150
	timestampDisplay    = "2006-01-02 15:04:05"
)

// QuickQuestions are offered for cycling into the question input.
var QuickQuestions = []string{
	"Who are the parties?",
	"What is the termination clause?",
	"What is the effective date of the contract?",
	"Who owns the intellectual property?",
	"Which law governs the contract?",
	"Who is Ostap?",
}

// EntityRow is one labelled entity value.
type EntityRow struct {
	Label string
	Value string
}

// EntityRows renders entities in display order; absent values read "Not found".
func EntityRows(e domain.Entities) []EntityRow {
	str := func(p *string) string {
		if p == nil || strings.TrimSpace(*p) == "" {
			return "Not found"
		}
		return *p
	}
	parties := "Not found"
	if e.Parties != nil && len(*e.Parties) > 0 {
		parties = strings.Join(*e.Parties, ", ")
	}
	return []EntityRow{
		{"👥 Parties", parties},
		{"📅 Effective Date", str(e.EffectiveDate)},
		{"📅 Termination Date", str(e.TerminationDate)},
		{"💰 Payment Terms", str(e.PaymentTerms)},
		{"🔐 IP Owner", str(e.IPOwner)},
		{"⚖️ Governing Law", str(e.GoverningLaw)},
	}
}

// FormatTimestamp shows a stored RFC 3339 timestamp in its own offset.
// Unparseable values are cut to their first 19 characters.
func FormatTimestamp(ts string) string {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.Format(timestampDisplay)
	}
	if len(ts) > 19 {
		return ts[:19]
	}
	return ts
}

// Preview cuts s to n runes, marking the cut with "...".
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// RatingIcon is the thumb shown for a rating.
func RatingIcon(r domain.Rating) string {
	if r == domain.RatingUp {
		return "👍"
	}
	return "👎"
}
