package learner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDrop(t *testing.T, path string, patterns []LearnedPattern) {
	t.Helper()
	data, err := json.Marshal(patternDrop{Patterns: patterns})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// replaceDrop publishes a drop the way store/file.go does: write a temp
// file, then rename it over the destination.
func replaceDrop(t *testing.T, path string, patterns []LearnedPattern) {
	t.Helper()
	data, err := json.Marshal(patternDrop{Patterns: patterns})
	if err != nil {
		t.Fatal(err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func waitForPattern(t *testing.T, l *Learner, regex string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		for _, p := range l.Patterns() {
			if p.PatternRegex == regex {
				return
			}
		}
		select {
		case <-deadline:
			t.Fatalf("pattern %q never imported; have %+v", regex, l.Patterns())
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// ============================================================
// Pattern file watcher
// ============================================================

func TestPatternsWatcher_ImportsAtStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop.json")
	writeDrop(t, path, []LearnedPattern{
		{PatternRegex: "startup-pattern", Technique: "jailbreak", Confidence: 0.9},
	})

	l := New(context.Background(), nil, DefaultConfig())
	w, err := NewPatternsWatcher(path, l, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewPatternsWatcher() error = %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(context.Background()) }()

	waitForPattern(t, l, "startup-pattern", 2*time.Second)

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestPatternsWatcher_ImportsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop.json")
	writeDrop(t, path, nil)

	l := New(context.Background(), nil, DefaultConfig())
	w, err := NewPatternsWatcher(path, l, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewPatternsWatcher() error = %v", err)
	}
	defer w.Stop()

	go func() { _ = w.Watch(context.Background()) }()

	// Let the watcher finish its startup import before rewriting.
	time.Sleep(100 * time.Millisecond)

	writeDrop(t, path, []LearnedPattern{
		{PatternRegex: "updated-pattern", Technique: "injection", Confidence: 0.8},
	})

	waitForPattern(t, l, "updated-pattern", 3*time.Second)
}

func TestPatternsWatcher_SurvivesAtomicReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop.json")
	writeDrop(t, path, nil)

	l := New(context.Background(), nil, DefaultConfig())
	w, err := NewPatternsWatcher(path, l, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewPatternsWatcher() error = %v", err)
	}
	defer w.Stop()

	go func() { _ = w.Watch(context.Background()) }()
	time.Sleep(100 * time.Millisecond)

	// Atomic replacement swaps the inode under the old path. The watch
	// must keep delivering across repeated replacements.
	replaceDrop(t, path, []LearnedPattern{
		{PatternRegex: "first-drop", Technique: "jailbreak", Confidence: 0.9},
	})
	waitForPattern(t, l, "first-drop", 3*time.Second)

	replaceDrop(t, path, []LearnedPattern{
		{PatternRegex: "first-drop", Technique: "jailbreak", Confidence: 0.9},
		{PatternRegex: "second-drop", Technique: "injection", Confidence: 0.8},
	})
	waitForPattern(t, l, "second-drop", 3*time.Second)
}

func TestPatternsWatcher_FileAppearsLater(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drop.json")

	l := New(context.Background(), nil, DefaultConfig())
	w, err := NewPatternsWatcher(path, l, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewPatternsWatcher() error = %v", err)
	}
	defer w.Stop()

	// The drop file does not exist yet; the watch starts on the parent
	// directory and picks the file up when it is published.
	go func() { _ = w.Watch(context.Background()) }()
	time.Sleep(100 * time.Millisecond)

	replaceDrop(t, path, []LearnedPattern{
		{PatternRegex: "late-pattern", Technique: "jailbreak", Confidence: 0.9},
	})
	waitForPattern(t, l, "late-pattern", 3*time.Second)
}


func TestPatternsWatcher_DoubleWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop.json")
	writeDrop(t, path, nil)

	l := New(context.Background(), nil, DefaultConfig())
	w, err := NewPatternsWatcher(path, l, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewPatternsWatcher() error = %v", err)
	}
	defer w.Stop()

	go func() { _ = w.Watch(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Watch(context.Background()); err == nil {
		t.Error("second Watch() should fail while running")
	}
}
