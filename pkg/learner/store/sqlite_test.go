package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vantasec/argus/pkg/learner"
)

// ============================================================
// SQLite store
// ============================================================

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	want := samplePatterns()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d patterns, want %d", len(got), len(want))
	}

	byID := make(map[string]learner.LearnedPattern, len(got))
	for _, p := range got {
		byID[p.PatternID] = p
	}
	for _, w := range want {
		g, ok := byID[w.PatternID]
		if !ok {
			t.Errorf("pattern %s missing after reload", w.PatternID)
			continue
		}
		if g.PatternRegex != w.PatternRegex {
			t.Errorf("pattern %s regex = %q, want %q", w.PatternID, g.PatternRegex, w.PatternRegex)
		}
		if g.Confidence != w.Confidence {
			t.Errorf("pattern %s confidence = %v, want %v", w.PatternID, g.Confidence, w.Confidence)
		}
		if g.Source != w.Source {
			t.Errorf("pattern %s source = %q, want %q", w.PatternID, g.Source, w.Source)
		}
		if len(g.TargetModels) != len(w.TargetModels) {
			t.Errorf("pattern %s models = %v, want %v", w.PatternID, g.TargetModels, w.TargetModels)
		}
	}
}

func TestSQLiteStore_UpsertReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	patterns := samplePatterns()
	if err := s.Save(ctx, patterns); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	patterns[0].Confidence = 0.95
	patterns[0].SuccessCount = 19
	patterns[0].TotalAttempts = 20
	if err := s.Save(ctx, patterns); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(patterns) {
		t.Fatalf("loaded %d patterns, want %d (upsert must not duplicate)", len(got), len(patterns))
	}
	for _, p := range got {
		if p.PatternID == patterns[0].PatternID && p.Confidence != 0.95 {
			t.Errorf("confidence = %v after upsert, want 0.95", p.Confidence)
		}
	}
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "patterns.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore(""); err == nil {
		t.Error("expected error for empty path")
	}
}
