package store

import (
	"context"
	"sync"

	"github.com/vantasec/argus/pkg/learner"
)

// MemoryStore keeps patterns in process memory. Used by tests and
// ephemeral runs that do not want persistence.
type MemoryStore struct {
	mu       sync.RWMutex
	patterns []learner.LearnedPattern
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored pattern set.
func (s *MemoryStore) Load(ctx context.Context) ([]learner.LearnedPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]learner.LearnedPattern, len(s.patterns))
	copy(out, s.patterns)
	return out, nil
}

// Save replaces the stored pattern set.
func (s *MemoryStore) Save(ctx context.Context, patterns []learner.LearnedPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patterns = make([]learner.LearnedPattern, len(patterns))
	copy(s.patterns, patterns)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
