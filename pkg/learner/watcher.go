package learner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PatternsWatcher watches a pattern drop file for changes and imports
// its contents into a Learner. It implements debouncing to prevent
// import storms when the file is rewritten in several writes.
type PatternsWatcher struct {
	path     string
	learner  *Learner
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	running bool
	timer   *time.Timer
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// patternDrop is the on-disk shape of a shared pattern file.
type patternDrop struct {
	Patterns []LearnedPattern `json:"patterns"`
}

// NewPatternsWatcher creates a watcher for the given pattern file.
func NewPatternsWatcher(path string, l *Learner, debounce time.Duration) (*PatternsWatcher, error) {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &PatternsWatcher{
		path:     path,
		learner:  l,
		watcher:  watcher,
		logger:   slog.Default().With("component", "patterns_watcher"),
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching the pattern file. This blocks until the context
// is cancelled or Stop is called. The file is imported once at startup
// when it exists; it does not need to exist yet, only its directory.
func (w *PatternsWatcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	// Watch the parent directory, not the file itself. Drops are
	// published with a tmp+rename, which replaces the inode and would
	// end a watch registered on the file.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("Pattern file watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	if err := w.importFile(); err != nil {
		w.logger.Warn("Initial pattern import failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Pattern file watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("Pattern file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}

			w.logger.Debug("Pattern file event", "path", event.Name, "op", event.Op.String())
			w.trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Pattern file watcher error", "error", err)
		}
	}
}

// trigger schedules a debounced import.
func (w *PatternsWatcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}
		if err := w.importFile(); err != nil {
			w.logger.Error("Pattern import failed", "error", err)
		}
	})
}

// importFile reads the pattern file and merges its contents into the
// learner. A missing file is not an error.
func (w *PatternsWatcher) importFile() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read pattern file: %w", err)
	}

	var drop patternDrop
	if err := json.Unmarshal(data, &drop); err != nil {
		return fmt.Errorf("failed to parse pattern file: %w", err)
	}

	n := w.learner.ImportPatterns(drop.Patterns)
	w.logger.Info("Pattern file imported", "path", w.path, "merged", n)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *PatternsWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}
