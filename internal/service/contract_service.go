// Package service orchestrates ingestion, answering and feedback for one
// contract at a time.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"contractqa/internal/chunker"
	"contractqa/internal/config"
	"contractqa/internal/domain"
	"contractqa/internal/embedding"
	"contractqa/internal/feedback"
	"contractqa/internal/llm"
	"contractqa/internal/pdf"
	"contractqa/internal/qa"
	"contractqa/internal/summarizer"
	"contractqa/internal/vectorstore"
)

// Deps are the collaborators of a ContractService. Generator may be nil.
type Deps struct {
	Loader     domain.DocumentLoader
	Chunker    domain.Chunker
	Embedder   domain.Embedder
	Generator  domain.Generator
	Feedback   *feedback.Store
	Summarizer *summarizer.Frequency
}

// Options tune a ContractService.
type Options struct {
	IndexPath        string
	MaxSources       int
	HistoryLimit     int
	SummarySentences int
}

// IngestResult describes a freshly indexed contract.
type IngestResult struct {
	Path     string
	Pages    int
	Chunks   int
	Overview string
	// Entities is nil when extraction was skipped or failed; EntitiesErr
	// says why.
	Entities    *domain.Entities
	EntitiesErr error
}

type ContractService struct {
	deps      Deps
	opts      Options
	engine    *qa.Engine
	extractor *qa.Extractor
	session   *Session
	logger    *zap.Logger
}

func NewContractService(deps Deps, opts Options) *ContractService {
	if opts.MaxSources <= 0 {
		opts.MaxSources = vectorstore.DefaultMaxSources
	}
	if deps.Summarizer == nil {
		deps.Summarizer = summarizer.NewFrequency()
	}
	var finder qa.FeedbackFinder
	if deps.Feedback != nil {
		finder = deps.Feedback
	}
	return &ContractService{
		deps:      deps,
		opts:      opts,
		engine:    qa.NewEngine(deps.Embedder, deps.Generator, finder, opts.MaxSources),
		extractor: qa.NewExtractor(deps.Generator),
		session:   &Session{},
		logger:    zap.L().With(zap.String("component", "service")),
	}
}

// FromConfig wires the production collaborators described by cfg.
func FromConfig(cfg *config.AppConfig) (*ContractService, error) {
	emb, err := embedding.New(cfg)
	if err != nil {
		return nil, err
	}
	gen, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewContractService(Deps{
		Loader:     pdf.NewLoader(),
		Chunker:    chunker.NewRecursiveChunker(cfg.Chunker.Size, cfg.Chunker.Overlap),
		Embedder:   emb,
		Generator:  gen,
		Feedback:   feedback.NewStore(cfg.Feedback.Path, cfg.Feedback.MatchMode),
		Summarizer: summarizer.NewFrequency(),
	}, Options{
		IndexPath:        cfg.VectorStore.Path,
		MaxSources:       cfg.VectorStore.MaxSources,
		HistoryLimit:     cfg.Feedback.HistoryLimit,
		SummarySentences: cfg.Summarizer.MaxSentences,
	}), nil
}

// Session exposes the current index holder.
func (s *ContractService) Session() *Session { return s.session }

// CanGenerate reports whether a generation backend is configured.
func (s *ContractService) CanGenerate() bool { return s.deps.Generator != nil }

// Ingest indexes the PDF at path and makes it the current contract. Feedback
// about the previous contract is discarded first.
func (s *ContractService) Ingest(ctx context.Context, path string) (IngestResult, error) {
	start := time.Now()
	s.clearFeedbackQuietly()

	pages, err := s.deps.Loader.Load(ctx, path)
	if err != nil {
		return IngestResult{}, err
	}
	if len(pages) == 0 {
		return IngestResult{}, domain.E(domain.ErrInvalidInput, "ingest", eris.Errorf("no text could be extracted from %s", path))
	}

	res := IngestResult{Path: path, Pages: len(pages)}
	res.Entities, res.EntitiesErr = s.extractQuietly(ctx, pdf.FullText(pages))
	if ctx.Err() != nil {
		return IngestResult{}, ctx.Err()
	}

	chunks, err := s.deps.Chunker.Chunk(pages)
	if err != nil {
		return IngestResult{}, err
	}
	idx, err := vectorstore.Build(ctx, chunks, s.deps.Embedder, s.opts.MaxSources)
	if err != nil {
		return IngestResult{}, err
	}
	if s.opts.IndexPath != "" {
		if err := idx.Save(s.opts.IndexPath); err != nil {
			return IngestResult{}, err
		}
	}
	s.session.Replace(idx)

	res.Chunks = idx.Len()
	res.Overview = s.deps.Summarizer.SummarizePages(pages, s.opts.SummarySentences)
	s.logger.Info("contract ingested",
		zap.String("path", path),
		zap.Int("pages", res.Pages),
		zap.Int("chunks", res.Chunks),
		zap.Bool("entities", res.Entities != nil),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

// Extract runs entity extraction over the PDF at path without indexing it.
func (s *ContractService) Extract(ctx context.Context, path string) (domain.Entities, error) {
	pages, err := s.deps.Loader.Load(ctx, path)
	if err != nil {
		return domain.Entities{}, err
	}
	return s.extractor.Extract(ctx, pdf.FullText(pages))
}

// LoadIndex restores the persisted index, if any, into the session.
func (s *ContractService) LoadIndex() error {
	return s.session.Load(s.opts.IndexPath, s.opts.MaxSources)
}

// Ask answers question against the current contract.
func (s *ContractService) Ask(ctx context.Context, question string) (qa.Answer, error) {
	ans, err := s.engine.Answer(ctx, s.session.Current(), question)
	if err != nil {
		return qa.Answer{}, err
	}
	if len(ans.Sources) > s.opts.MaxSources {
		ans.Sources = ans.Sources[:s.opts.MaxSources]
	}
	return ans, nil
}

// Search retrieves the passages most relevant to question without generating.
func (s *ContractService) Search(ctx context.Context, question string) ([]domain.SearchResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.E(domain.ErrInvalidInput, "search", eris.New("question cannot be empty"))
	}
	return s.engine.Retrieve(ctx, s.session.Current(), question)
}

// RecordFeedback stores a rating for an answer.
func (s *ContractService) RecordFeedback(question, answer string, rating domain.Rating, comment string, sources []domain.Source) (domain.FeedbackEntry, error) {
	return s.deps.Feedback.Append(feedback.Input{
		Question: question,
		Answer:   answer,
		Rating:   rating,
		Comment:  comment,
		Sources:  sources,
	})
}

// History returns the most recent feedback, newest first.
func (s *ContractService) History(limit int) []domain.FeedbackEntry {
	if limit <= 0 {
		limit = s.opts.HistoryLimit
	}
	return s.deps.Feedback.Recent(limit)
}

func (s *ContractService) Stats() domain.Stats { return s.deps.Feedback.Stats() }

func (s *ContractService) ClearFeedback() error { return s.deps.Feedback.Clear() }

func (s *ContractService) clearFeedbackQuietly() {
	if err := s.deps.Feedback.Clear(); err != nil {
		s.logger.Warn("could not clear feedback before ingest", zap.Error(err))
	}
}

// extractQuietly turns extraction failures into a nil result. Only context
// cancellation is left for the caller to act on.
func (s *ContractService) extractQuietly(ctx context.Context, text string) (*domain.Entities, error) {
	ents, err := s.extractor.Extract(ctx, text)
	if err == nil {
		return &ents, nil
	}
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		s.logger.Info("entity extraction skipped", zap.Error(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	default:
		s.logger.Warn("entity extraction failed", zap.Error(err))
	}
	return nil, err
}
