// Package vectorstore holds the embedded chunks of one document and answers
// nearest-neighbour queries over them by exact cosine similarity.
package vectorstore

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"contractqa/internal/domain"
)

// DefaultMaxSources caps search results when no limit is configured.
const DefaultMaxSources = 3

// Index is an immutable set of chunks and their vectors.
type Index struct {
	chunks     []domain.Chunk
	vectors    [][]float32
	norms      []float64
	dimension  int
	model      string
	maxSources int
}

// Build embeds every chunk with a single EmbedDocuments call.
func Build(ctx context.Context, chunks []domain.Chunk, embedder domain.Embedder, maxSources int) (*Index, error) {
	if len(chunks) == 0 {
		return nil, domain.E(domain.ErrInvalidInput, "vectorstore", eris.New("no chunks to index"))
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, domain.E(domain.ErrBackend, "vectorstore",
			eris.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks)))
	}
	return newIndex(append([]domain.Chunk(nil), chunks...), vectors, embedder.Name(), maxSources)
}

func newIndex(chunks []domain.Chunk, vectors [][]float32, model string, maxSources int) (*Index, error) {
	dim := len(vectors[0])
	if dim == 0 {
		return nil, domain.E(domain.ErrBackend, "vectorstore", eris.New("empty embedding vector"))
	}
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, domain.E(domain.ErrBackend, "vectorstore",
				eris.Errorf("vector %d has dimension %d, want %d", i, len(v), dim))
		}
		norms[i] = norm(v)
	}
	if maxSources <= 0 {
		maxSources = DefaultMaxSources
	}
	return &Index{
		chunks:     chunks,
		vectors:    vectors,
		norms:      norms,
		dimension:  dim,
		model:      model,
		maxSources: maxSources,
	}, nil
}

// Search returns up to min(k, maxSources, Len()) chunks ordered by descending
// cosine similarity; ties keep index order. k <= 0 means maxSources.
// A query of the wrong dimension matches nothing.
func (idx *Index) Search(query []float32, k int) []domain.SearchResult {
	if len(query) != idx.dimension {
		return nil
	}
	if k <= 0 || k > idx.maxSources {
		k = idx.maxSources
	}
	k = min(k, len(idx.chunks))

	qnorm := norm(query)
	scores := make([]float32, len(idx.vectors))
	for i, v := range idx.vectors {
		scores[i] = cosine(v, idx.norms[i], query, qnorm)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	results := make([]domain.SearchResult, 0, k)
	for _, j := range order[:k] {
		results = append(results, domain.SearchResult{Chunk: idx.chunks[j], Score: scores[j]})
	}
	return results
}

// Len is the number of indexed chunks.
func (idx *Index) Len() int { return len(idx.chunks) }

func (idx *Index) Dimension() int { return idx.dimension }

// Model names the embedder that produced the vectors.
func (idx *Index) Model() string { return idx.model }

func (idx *Index) MaxSources() int { return idx.maxSources }

// Chunks returns a copy of the indexed chunks in index order.
func (idx *Index) Chunks() []domain.Chunk {
	return append([]domain.Chunk(nil), idx.chunks...)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine is zero when either vector is all zeros.
func cosine(a []float32, anorm float64, b []float32, bnorm float64) float32 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (anorm * bnorm))
}
