// Package lexical provides word-level matching used when vectors carry no
// signal and for strict question matching.
package lexical

import (
	"math"
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// Tokens returns the lower-cased words of s in order.
func Tokens(s string) []string {
	return wordRe.FindAllString(strings.ToLower(s), -1)
}

// TokenSet returns the distinct lower-cased words of s.
func TokenSet(s string) map[string]struct{} {
	tokens := Tokens(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// SameTokens reports whether a and b contain exactly the same words.
func SameTokens(a, b string) bool {
	as, bs := TokenSet(a), TokenSet(b)
	if len(as) != len(bs) {
		return false
	}
	for t := range as {
		if _, ok := bs[t]; !ok {
			return false
		}
	}
	return true
}

// Ochiai scores the word overlap of query set q with text as
// |A∩B| / sqrt(|A||B|), in [0, 1].
func Ochiai(q map[string]struct{}, text string) float64 {
	seen := TokenSet(text)
	if len(q) == 0 || len(seen) == 0 {
		return 0
	}
	inter := 0
	for t := range seen {
		if _, ok := q[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(q))*float64(len(seen)))
}
