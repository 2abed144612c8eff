package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// All vectors produced by one instance share Dimension().
type Embedder interface {
	Name() string
	Dimension() int
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a completion for a fully rendered prompt.
type Generator interface {
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chunker splits ordered pages into retrieval windows.
type Chunker interface {
	Chunk(pages []Page) ([]Chunk, error)
}

// DocumentLoader extracts ordered page texts from a document on disk.
// A single unreadable page must not fail the whole load.
type DocumentLoader interface {
	Load(ctx context.Context, path string) ([]Page, error)
}
