package service

import (
	"sync/atomic"

	"contractqa/internal/vectorstore"
)

// Session holds the index of the contract currently loaded. Readers always
// see a whole index; ingestion swaps in a new one.
type Session struct {
	current atomic.Pointer[vectorstore.Index]
}

// Current returns the loaded index or nil.
func (s *Session) Current() *vectorstore.Index { return s.current.Load() }

func (s *Session) Replace(idx *vectorstore.Index) { s.current.Store(idx) }

// Load restores a persisted index into the session.
func (s *Session) Load(dir string, maxSources int) error {
	idx, err := vectorstore.Load(dir, maxSources)
	if err != nil {
		return err
	}
	s.Replace(idx)
	return nil
}
