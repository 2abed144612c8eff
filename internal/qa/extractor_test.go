package qa

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractqa/internal/domain"
)

func TestExtractParsesFencedJSON(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + `{
  "parties": ["Acme Corp", "Globex LLC"],
  "effective_date": "2024-01-15",
  "termination_date": null,
  "payment_terms": "Net 30",
  "governing_law": "Delaware"
}` + "\n```"}

	ents, err := NewExtractor(gen).Extract(context.Background(), "This Agreement is made between Acme Corp and Globex LLC.")
	require.NoError(t, err)

	require.NotNil(t, ents.Parties)
	assert.Equal(t, []string{"Acme Corp", "Globex LLC"}, *ents.Parties)
	require.NotNil(t, ents.EffectiveDate)
	assert.Equal(t, "2024-01-15", *ents.EffectiveDate)
	assert.Nil(t, ents.TerminationDate)
	assert.Nil(t, ents.IPOwner, "missing keys come back nil")

	assert.Contains(t, gen.prompts[0], "Acme Corp and Globex LLC.")
	assert.NotContains(t, gen.prompts[0], "{contract_text}")

	data, err := json.Marshal(ents)
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(data, &keys))
	assert.Len(t, keys, 6)
	assert.Contains(t, keys, "ip_owner")
	assert.Nil(t, keys["ip_owner"])
}

func TestExtractAcceptsSinglePartyString(t *testing.T) {
	gen := &fakeGenerator{reply: `{"parties": "Acme Corp", "effective_date": null, "termination_date": null, "payment_terms": null, "ip_owner": null, "governing_law": null}`}

	ents, err := NewExtractor(gen).Extract(context.Background(), "contract")
	require.NoError(t, err)
	require.NotNil(t, ents.Parties)
	assert.Equal(t, []string{"Acme Corp"}, *ents.Parties)
}

func TestExtractInvalidJSON(t *testing.T) {
	reply := "Sorry, I cannot help with that. " + strings.Repeat("x", 400)
	gen := &fakeGenerator{reply: reply}

	_, err := NewExtractor(gen).Extract(context.Background(), "contract")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "Sorry, I cannot help with that.")
	assert.NotContains(t, err.Error(), strings.Repeat("x", 200))
}

func TestExtractValidation(t *testing.T) {
	_, err := NewExtractor(&fakeGenerator{}).Extract(context.Background(), " \n ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewExtractor(nil).Extract(context.Background(), "contract")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`  {"a":1}  `))
}
