package review

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemStore is an in-memory [Store] implementation used in tests and
// single-user local setups where no PostgreSQL instance is available.
// Safe for concurrent use.
type MemStore struct {
	mu    sync.RWMutex
	words map[string][]Word // keyed by transcript id
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{words: make(map[string][]Word)}
}

// ListByTranscript implements [Store].
func (s *MemStore) ListByTranscript(_ context.Context, transcriptID string) ([]Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.words[transcriptID])
	slices.SortStableFunc(out, func(a, b Word) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return a.Ordinal - b.Ordinal
	})
	return out, nil
}

// Replace implements [Store].
func (s *MemStore) Replace(_ context.Context, transcriptID string, words []Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.words[transcriptID] = slices.Clone(words)
	return nil
}

// Save implements [Store].
func (s *MemStore) Save(_ context.Context, w Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.words[w.TranscriptID]
	for i := range list {
		if list[i].ID == w.ID {
			list[i] = w
			return nil
		}
	}
	s.words[w.TranscriptID] = append(list, w)
	return nil
}

// Remove implements [Store].
func (s *MemStore) Remove(_ context.Context, transcriptID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.words[transcriptID] = slices.DeleteFunc(s.words[transcriptID], func(w Word) bool {
		return w.ID == id
	})
	return nil
}

// BulkUpdate implements [Store].
func (s *MemStore) BulkUpdate(_ context.Context, transcriptID string, action BulkAction, ids []string) (int, error) {
	if !action.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	affected := 0
	list := s.words[transcriptID]
	var kept []Word
	for i := range list {
		w := list[i]
		if !slices.Contains(ids, w.ID) {
			kept = append(kept, w)
			continue
		}
		switch action {
		case BulkDelete:
			affected++
			if w.IsInserted {
				continue // drop the entry entirely
			}
			w.IsDeleted = true
			w.CorrectedText = nil
		case BulkMarkCritical:
			w.IsCritical = true
			affected++
		case BulkClearCritical:
			w.IsCritical = false
			affected++
		}
		kept = append(kept, w)
	}
	s.words[transcriptID] = kept
	return affected, nil
}
