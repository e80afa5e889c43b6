package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vantasec/argus/pkg/learner"
)

// envelopeVersion is the pattern file format version.
const envelopeVersion = "1.0.0"

// envelope is the on-disk shape of the pattern file.
type envelope struct {
	Version   string            `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Patterns  []json.RawMessage `json:"patterns"`
}

// FileStore persists patterns as a single JSON file. Writes go through
// a temp file and rename so readers never observe a torn file.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a file-backed store at path. The parent
// directory is created if missing.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return &FileStore{
		path:   path,
		logger: slog.Default().With("component", "pattern_store"),
	}, nil
}

// Load reads the pattern file. A missing file yields an empty set; a
// file that fails to parse as a whole yields an empty set with a
// warning; individually malformed entries are skipped.
func (s *FileStore) Load(ctx context.Context) ([]learner.LearnedPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("pattern file malformed, starting empty",
			"path", s.path, "error", err)
		return nil, nil
	}

	patterns := make([]learner.LearnedPattern, 0, len(env.Patterns))
	skipped := 0
	for _, raw := range env.Patterns {
		var p learner.LearnedPattern
		if err := json.Unmarshal(raw, &p); err != nil || p.PatternRegex == "" {
			skipped++
			continue
		}
		patterns = append(patterns, p)
	}
	if skipped > 0 {
		s.logger.Warn("skipped malformed pattern entries",
			"path", s.path, "skipped", skipped)
	}
	return patterns, nil
}

// Save writes the full pattern set atomically.
func (s *FileStore) Save(ctx context.Context, patterns []learner.LearnedPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make([]json.RawMessage, 0, len(patterns))
	for i := range patterns {
		b, err := json.Marshal(patterns[i])
		if err != nil {
			return fmt.Errorf("failed to marshal pattern %s: %w", patterns[i].PatternID, err)
		}
		raw = append(raw, b)
	}

	data, err := json.MarshalIndent(envelope{
		Version:   envelopeVersion,
		UpdatedAt: time.Now().UTC(),
		Patterns:  raw,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pattern file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write pattern file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace pattern file: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
