package qa

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"contractqa/internal/domain"
	"contractqa/internal/prompts"
)

const responsePreview = 200

// Extractor pulls the fixed entity schema out of contract text.
type Extractor struct {
	generator domain.Generator
	logger    *zap.Logger
}

func NewExtractor(generator domain.Generator) *Extractor {
	return &Extractor{
		generator: generator,
		logger:    zap.L().With(zap.String("component", "extractor")),
	}
}

// Extract asks the generator for the entity JSON and normalises it. Keys the
// model leaves out come back nil.
func (x *Extractor) Extract(ctx context.Context, text string) (domain.Entities, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Entities{}, domain.E(domain.ErrInvalidInput, "extract", eris.New("contract text cannot be empty"))
	}
	if x.generator == nil {
		return domain.Entities{}, domain.E(domain.ErrConfiguration, "extract", eris.New("an API key is required for entity extraction"))
	}

	prompt := prompts.Render(prompts.EntityTemplate, map[string]string{"contract_text": text})
	reply, err := x.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.Entities{}, err
	}
	entities, err := parseEntities(reply)
	if err != nil {
		return domain.Entities{}, err
	}
	x.logger.Debug("entities extracted")
	return entities, nil
}

func parseEntities(reply string) (domain.Entities, error) {
	body := stripFences(reply)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return domain.Entities{}, domain.E(domain.ErrParse, "extract",
			eris.Wrapf(err, "model reply is not JSON: %s", truncate(body, responsePreview)))
	}

	return domain.Entities{
		Parties:         stringList(raw["parties"]),
		EffectiveDate:   stringValue(raw["effective_date"]),
		TerminationDate: stringValue(raw["termination_date"]),
		PaymentTerms:    stringValue(raw["payment_terms"]),
		IPOwner:         stringValue(raw["ip_owner"]),
		GoverningLaw:    stringValue(raw["governing_law"]),
	}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// stringValue accepts a JSON string, null, or any other scalar (kept as its
// JSON text).
func stringValue(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	return &s
}

// stringList accepts a list of strings or a single string.
func stringList(raw json.RawMessage) *[]string {
	if isNull(raw) {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return &list
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		list = []string{one}
		return &list
	}
	var mixed []any
	if err := json.Unmarshal(raw, &mixed); err == nil {
		list = make([]string, 0, len(mixed))
		for _, v := range mixed {
			if str, ok := v.(string); ok {
				list = append(list, str)
				continue
			}
			b, _ := json.Marshal(v)
			list = append(list, string(b))
		}
		return &list
	}
	list = []string{string(raw)}
	return &list
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
