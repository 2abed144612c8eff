package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"who", "are", "the", "parties"}, Tokens("Who are the PARTIES?"))
	assert.Equal(t, []string{"licensor's", "fee", "2024"}, Tokens("Licensor's fee: 2024"))
	assert.Empty(t, Tokens("  ?! "))
}

func TestSameTokens(t *testing.T) {
	assert.True(t, SameTokens("Who are the parties?", "the parties, who are"))
	assert.False(t, SameTokens("Who are the parties?", "Who are the parties involved?"))
	assert.True(t, SameTokens("", "..."))
}

func TestOchiai(t *testing.T) {
	q := TokenSet("termination notice")
	assert.InDelta(t, 1.0, Ochiai(q, "Termination NOTICE"), 1e-9)
	assert.InDelta(t, 0.5, Ochiai(q, "termination clause"), 1e-9)
	assert.Equal(t, 0.0, Ochiai(q, "payment schedule"))
	assert.Equal(t, 0.0, Ochiai(map[string]struct{}{}, "anything"))
}
