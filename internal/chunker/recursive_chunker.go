package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"contractqa/internal/domain"
)

var errEmptyPages = eris.New("cannot chunk an empty list of pages")

// DefaultSeparators is the split priority: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveChunker splits page text into overlapping windows of at most size
// characters, preferring to break on the coarsest separator that fits.
type RecursiveChunker struct {
	size       int
	overlap    int
	separators []string
}

func NewRecursiveChunker(size, overlap int) *RecursiveChunker {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &RecursiveChunker{size: size, overlap: overlap, separators: DefaultSeparators}
}

// Chunk splits every page independently; chunks inherit the page number and
// any page error marker. Empty pages contribute nothing.
func (c *RecursiveChunker) Chunk(pages []domain.Page) ([]domain.Chunk, error) {
	if len(pages) == 0 {
		return nil, domain.E(domain.ErrInvalidInput, "chunker", errEmptyPages)
	}
	var chunks []domain.Chunk
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		for _, text := range c.split(p.Text, c.separators) {
			chunks = append(chunks, domain.Chunk{Text: text, Page: p.Number, SourceError: p.Err})
		}
	}
	return chunks, nil
}

func (c *RecursiveChunker) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, sep)
	}

	var out, fitting []string
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if runeLen(piece) < c.size {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			out = append(out, c.merge(fitting, sep)...)
			fitting = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, c.split(piece, rest)...)
		}
	}
	if len(fitting) > 0 {
		out = append(out, c.merge(fitting, sep)...)
	}
	return out
}

// merge packs pieces into windows, carrying up to overlap characters of the
// previous window into the next one.
func (c *RecursiveChunker) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var (
		windows []string
		current []string
		total   int
	)
	joinedLen := func(n int) int {
		if len(current) > 0 {
			return total + n + sepLen
		}
		return total + n
	}
	for _, p := range pieces {
		n := runeLen(p)
		if joinedLen(n) > c.size && len(current) > 0 {
			if w := strings.TrimSpace(strings.Join(current, sep)); w != "" {
				windows = append(windows, w)
			}
			for total > c.overlap || (total > 0 && joinedLen(n) > c.size) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}
	if w := strings.TrimSpace(strings.Join(current, sep)); w != "" {
		windows = append(windows, w)
	}
	return windows
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
