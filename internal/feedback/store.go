// Package feedback persists rated answers as JSON lines and finds past
// ratings that relate to a new question.
package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"contractqa/internal/config"
	"contractqa/internal/domain"
	"contractqa/internal/lexical"
)

// timestampLayout is RFC 3339 in UTC with a fixed-width fraction, so that
// string order equals chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Input is a rating to record.
type Input struct {
	Question string
	Answer   string
	Rating   domain.Rating
	Comment  string
	Sources  []domain.Source
}

// Store is an append-only feedback log backed by a JSONL file.
type Store struct {
	mu        sync.Mutex
	path      string
	matchMode string
	now       func() time.Time
	logger    *zap.Logger
}

// NewStore opens a store over path. matchMode is config.MatchContains or
// config.MatchTokens; anything else falls back to contains.
func NewStore(path, matchMode string) *Store {
	if matchMode != config.MatchTokens {
		matchMode = config.MatchContains
	}
	return &Store{
		path:      path,
		matchMode: matchMode,
		now:       time.Now,
		logger:    zap.L().With(zap.String("component", "feedback"), zap.String("path", path)),
	}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Append validates in, stamps it and writes it as one durable line.
func (s *Store) Append(in Input) (domain.FeedbackEntry, error) {
	if !in.Rating.Valid() {
		return domain.FeedbackEntry{}, domain.E(domain.ErrInvalidInput, "feedback",
			eris.Errorf("rating must be %q or %q, got %q", domain.RatingUp, domain.RatingDown, in.Rating))
	}
	if strings.TrimSpace(in.Question) == "" || strings.TrimSpace(in.Answer) == "" {
		return domain.FeedbackEntry{}, domain.E(domain.ErrInvalidInput, "feedback", eris.New("question and answer are required"))
	}

	entry := domain.FeedbackEntry{
		Timestamp: s.now().UTC().Format(timestampLayout),
		Question:  in.Question,
		Answer:    in.Answer,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
	for _, src := range in.Sources {
		entry.Sources = append(entry.Sources, domain.FeedbackSource{Page: src.Page})
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return domain.FeedbackEntry{}, domain.E(domain.ErrStorage, "feedback", eris.Wrap(err, "marshal entry"))
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.appendLine(line); err != nil {
		return domain.FeedbackEntry{}, domain.E(domain.ErrStorage, "feedback", err)
	}
	s.logger.Debug("feedback recorded", zap.String("rating", string(in.Rating)))
	return entry, nil
}

func (s *Store) appendLine(line []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return eris.Wrap(err, "create feedback dir")
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrap(err, "open feedback file")
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return eris.Wrap(err, "write feedback entry")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return eris.Wrap(err, "sync feedback file")
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "close feedback file")
	}
	return nil
}

// Load returns entries newest first; limit <= 0 returns all. Blank and
// malformed lines are skipped and a missing file is an empty log.
func (s *Store) Load(limit int) ([]domain.FeedbackEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.FeedbackEntry{}, nil
	}
	if err != nil {
		return nil, domain.E(domain.ErrStorage, "feedback", eris.Wrap(err, "read feedback file"))
	}

	entries := []domain.FeedbackEntry{}
	skipped := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var e domain.FeedbackEntry
		if err := json.Unmarshal(line, &e); err != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	if skipped > 0 {
		s.logger.Warn("skipped malformed feedback lines", zap.Int("count", skipped))
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp > entries[j].Timestamp })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Recent is Load that degrades to an empty history on read failure.
func (s *Store) Recent(limit int) []domain.FeedbackEntry {
	entries, err := s.Load(limit)
	if err != nil {
		s.logger.Warn("feedback history unavailable", zap.Error(err))
		return []domain.FeedbackEntry{}
	}
	return entries
}

// Clear deletes the log. Clearing a missing log is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.E(domain.ErrStorage, "feedback", eris.Wrap(err, "remove feedback file"))
	}
	return nil
}

// Stats counts entries by rating; a read failure yields zero counts.
func (s *Store) Stats() domain.Stats {
	entries, err := s.Load(0)
	if err != nil {
		s.logger.Warn("feedback stats unavailable", zap.Error(err))
		return domain.Stats{}
	}
	var st domain.Stats
	for _, e := range entries {
		st.Total++
		switch e.Rating {
		case domain.RatingUp:
			st.Positive++
		case domain.RatingDown:
			st.Negative++
		}
	}
	return st
}

// FindForQuestion returns the entries, newest first, whose question matches q.
// In contains mode a stored question matches when it equals q or contains it,
// case-insensitively after trimming. In tokens mode both must consist of the
// same set of words.
func (s *Store) FindForQuestion(q string) []domain.FeedbackEntry {
	entries, err := s.Load(0)
	if err != nil {
		s.logger.Warn("feedback lookup failed", zap.Error(err))
		return []domain.FeedbackEntry{}
	}

	query := strings.ToLower(strings.TrimSpace(q))
	matched := []domain.FeedbackEntry{}
	for _, e := range entries {
		if s.matches(query, e.Question) {
			matched = append(matched, e)
		}
	}
	return matched
}

func (s *Store) matches(query, stored string) bool {
	if s.matchMode == config.MatchTokens {
		return lexical.SameTokens(query, stored)
	}
	stored = strings.ToLower(strings.TrimSpace(stored))
	return stored == query || strings.Contains(stored, query)
}
