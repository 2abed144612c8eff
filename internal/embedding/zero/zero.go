// Package zero provides an embedder that maps every text to the zero vector.
// It keeps the pipeline runnable offline and makes tests reproducible; it does
// not carry any semantic signal.
package zero

import "context"

const DefaultDimension = 1536

// Embedder returns all-zero vectors of a fixed dimension.
type Embedder struct {
	dimension int
}

func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

func (e *Embedder) Name() string { return "zero" }

func (e *Embedder) Dimension() int { return e.dimension }

func (e *Embedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dimension)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, e.dimension), nil
}
