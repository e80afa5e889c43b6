package learner

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultHistoryCapacity is the feedback-history high-water mark.
	DefaultHistoryCapacity = 10000

	// DefaultHistoryTail is how much history survives compaction.
	DefaultHistoryTail = 5000

	// maxSnippetLen caps stored response snippets.
	maxSnippetLen = 500

	// suggestionConfidenceFloor is the minimum confidence for a pattern
	// to be offered as an attack seed.
	suggestionConfidenceFloor = 0.5

	// maxSuggestionTokens bounds marker tokens added to suggestions.
	maxSuggestionTokens = 10
)

// Config tunes the learning thresholds.
type Config struct {
	// MinSuccessRate is the success-rate floor for a technique group to
	// enter a learning pass.
	MinSuccessRate float64 `yaml:"min_success_rate" json:"min_success_rate"`

	// MinOccurrences is how many feedback events a technique needs
	// before extraction runs, and how often a candidate affix must
	// recur to be kept.
	MinOccurrences int `yaml:"min_occurrences" json:"min_occurrences"`

	// ConfidenceThreshold gates which patterns DetectionPatterns
	// exposes to guardrail detectors.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" json:"confidence_threshold"`

	// HistoryCapacity and HistoryTail bound the feedback history.
	HistoryCapacity int `yaml:"history_capacity" json:"history_capacity"`
	HistoryTail     int `yaml:"history_tail" json:"history_tail"`
}

// DefaultConfig returns the standard learning thresholds.
func DefaultConfig() Config {
	return Config{
		MinSuccessRate:      0.1,
		MinOccurrences:      3,
		ConfidenceThreshold: 0.7,
		HistoryCapacity:     DefaultHistoryCapacity,
		HistoryTail:         DefaultHistoryTail,
	}
}

// normalize fills zero values with defaults.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.MinSuccessRate <= 0 {
		c.MinSuccessRate = d.MinSuccessRate
	}
	if c.MinOccurrences <= 0 {
		c.MinOccurrences = d.MinOccurrences
	}
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = d.ConfidenceThreshold
	}
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = d.HistoryCapacity
	}
	if c.HistoryTail <= 0 || c.HistoryTail > c.HistoryCapacity {
		c.HistoryTail = c.HistoryCapacity / 2
	}
}

// Learner consumes attack feedback and maintains the learned pattern
// set.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. A single mutex
// guards the pattern map, the feedback history, and the token frequency
// table; Store calls happen outside the critical section on snapshots.
type Learner struct {
	mu        sync.Mutex
	cfg       Config
	store     Store
	logger    *slog.Logger
	now       func() time.Time
	patterns  map[string]*LearnedPattern
	history   []AttackFeedback
	tokenFreq map[string]int
}

// Option configures a Learner.
type Option func(*Learner)

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Learner) { l.logger = logger }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Learner) { l.now = now }
}

// New builds a Learner backed by store and loads any persisted
// patterns. A failing or empty load degrades to an empty pattern set
// with a warning; it is not an error.
func New(ctx context.Context, store Store, cfg Config, opts ...Option) *Learner {
	cfg.normalize()

	l := &Learner{
		cfg:       cfg,
		store:     store,
		logger:    slog.Default().With("component", "learner"),
		now:       time.Now,
		patterns:  make(map[string]*LearnedPattern),
		tokenFreq: make(map[string]int),
	}
	for _, opt := range opts {
		opt(l)
	}

	if store != nil {
		loaded, err := store.Load(ctx)
		if err != nil {
			l.logger.Warn("pattern load failed, starting empty", "error", err)
		} else {
			for i := range loaded {
				p := loaded[i]
				if p.PatternID == "" {
					p.PatternID = PatternID(p.Technique, p.PatternRegex)
				}
				l.patterns[p.PatternID] = &p
			}
			l.logger.Info("patterns loaded", "count", len(l.patterns))
		}
	}

	return l
}

// RecordAttack ingests one feedback event and returns it with its
// assigned attack ID and any field normalization applied. When the
// event's technique has accumulated enough history, a learning pass
// runs synchronously before returning.
func (l *Learner) RecordAttack(fb AttackFeedback) AttackFeedback {
	if fb.AttackID == "" {
		fb.AttackID = uuid.New().String()
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = l.now()
	}
	if len(fb.ResponseSnippet) > maxSnippetLen {
		fb.ResponseSnippet = fb.ResponseSnippet[:maxSnippetLen]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.history = append(l.history, fb)
	if len(l.history) > l.cfg.HistoryCapacity {
		kept := make([]AttackFeedback, l.cfg.HistoryTail)
		copy(kept, l.history[len(l.history)-l.cfg.HistoryTail:])
		l.history = kept
		l.logger.Info("feedback history compacted", "kept", len(kept))
	}

	if fb.Success {
		for _, token := range tokenizePayload(fb.Payload) {
			l.tokenFreq[token]++
		}
	}

	if l.techniqueCountLocked(fb.Technique) >= l.cfg.MinOccurrences {
		l.learnLocked(fb.Technique)
	}

	return fb
}

// techniqueCountLocked counts history entries for one technique.
// Caller must hold l.mu.
func (l *Learner) techniqueCountLocked(technique string) int {
	n := 0
	for i := range l.history {
		if l.history[i].Technique == technique {
			n++
		}
	}
	return n
}

// learnLocked runs one learning pass over a technique's history:
// candidate extraction from successful payloads followed by upsert into
// the pattern set. Caller must hold l.mu.
func (l *Learner) learnLocked(technique string) {
	var group, successful []AttackFeedback
	for i := range l.history {
		if l.history[i].Technique != technique {
			continue
		}
		group = append(group, l.history[i])
		if l.history[i].Success {
			successful = append(successful, l.history[i])
		}
	}

	if len(group) == 0 {
		return
	}
	rate := float64(len(successful)) / float64(len(group))
	if rate < l.cfg.MinSuccessRate {
		return
	}

	models := make(map[string]struct{})
	for _, a := range successful {
		if a.TargetModel != "" {
			models[a.TargetModel] = struct{}{}
		}
	}

	learned := 0
	for _, cand := range l.extractCandidates(successful, len(group)) {
		l.upsertLocked(cand, technique, len(successful), len(group), models)
		learned++
	}
	if learned > 0 {
		l.logger.Debug("learning pass complete",
			"technique", technique,
			"candidates", learned,
			"success_rate", rate)
	}
}

// upsertLocked inserts or refreshes a candidate in the pattern set.
// Learning passes recompute from the full technique history, so an
// existing pattern gets its evidence fields replaced rather than
// accumulated; accumulation would double-count the same history on
// every pass. Caller must hold l.mu.
func (l *Learner) upsertLocked(cand candidate, technique string, successes, attempts int, models map[string]struct{}) {
	id := PatternID(technique, cand.regex)
	now := l.now()

	if existing, ok := l.patterns[id]; ok {
		existing.SuccessCount = successes
		existing.TotalAttempts = attempts
		existing.Confidence = cand.confidence
		existing.TargetModels = unionModels(existing.TargetModels, models)
		existing.LastSeen = now
		return
	}

	l.patterns[id] = &LearnedPattern{
		PatternID:     id,
		PatternRegex:  cand.regex,
		Technique:     technique,
		SuccessCount:  successes,
		TotalAttempts: attempts,
		Confidence:    cand.confidence,
		Source:        SourceLearned,
		TargetModels:  unionModels(nil, models),
		FirstSeen:     now,
		LastSeen:      now,
	}
}

// unionModels merges a model set into an existing sorted slice.
func unionModels(existing []string, extra map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(existing)+len(extra))
	for _, m := range existing {
		seen[m] = struct{}{}
	}
	for m := range extra {
		seen[m] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// DetectionPatterns returns the regex texts of patterns at or above the
// confidence threshold, for one technique or for all when technique is
// empty. Guardrail detectors merge these into their static tables.
func (l *Learner) DetectionPatterns(technique string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string
	for _, p := range l.sortedPatternsLocked() {
		if p.Confidence < l.cfg.ConfidenceThreshold {
			continue
		}
		if technique != "" && p.Technique != technique {
			continue
		}
		out = append(out, p.PatternRegex)
	}
	return out
}

// AttackSuggestions returns pattern texts worth seeding new probes
// from: moderately confident patterns that apply to the target model
// and technique, plus the strongest literal marker tokens.
func (l *Learner) AttackSuggestions(targetModel, technique string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string
	for _, p := range l.sortedPatternsLocked() {
		if p.Confidence < suggestionConfidenceFloor {
			continue
		}
		if technique != "" && p.Technique != technique {
			continue
		}
		if targetModel != "" && len(p.TargetModels) > 0 && !containsModel(p.TargetModels, targetModel) {
			continue
		}
		out = append(out, p.PatternRegex)
	}

	for _, tok := range l.topTokens(maxSuggestionTokens, true) {
		out = append(out, tok.token)
	}
	return out
}

func containsModel(models []string, model string) bool {
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}

// sortedPatternsLocked returns the pattern set ordered by confidence
// descending, then pattern ID. Caller must hold l.mu.
func (l *Learner) sortedPatternsLocked() []*LearnedPattern {
	out := make([]*LearnedPattern, 0, len(l.patterns))
	for _, p := range l.patterns {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].PatternID < out[j].PatternID
	})
	return out
}

// Patterns returns a snapshot copy of the full pattern set.
func (l *Learner) Patterns() []LearnedPattern {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LearnedPattern, 0, len(l.patterns))
	for _, p := range l.sortedPatternsLocked() {
		out = append(out, *p)
	}
	return out
}

// ImportPatterns merges externally supplied patterns (community drops,
// file reloads) into the set and returns how many were added or
// updated. Entries without a regex are skipped.
func (l *Learner) ImportPatterns(patterns []LearnedPattern) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	merged := 0
	for i := range patterns {
		p := patterns[i]
		if p.PatternRegex == "" {
			continue
		}
		if p.Source == "" {
			p.Source = SourceCommunity
		}
		if p.PatternID == "" {
			p.PatternID = PatternID(p.Technique, p.PatternRegex)
		}
		if existing, ok := l.patterns[p.PatternID]; ok {
			existing.SuccessCount += p.SuccessCount
			existing.TotalAttempts += p.TotalAttempts
			if p.Confidence > 0 {
				existing.Confidence = (existing.Confidence + p.Confidence) / 2
			}
			for _, m := range p.TargetModels {
				existing.TargetModels = unionModels(existing.TargetModels, map[string]struct{}{m: {}})
			}
			existing.LastSeen = now
		} else {
			if p.FirstSeen.IsZero() {
				p.FirstSeen = now
			}
			if p.LastSeen.IsZero() {
				p.LastSeen = now
			}
			l.patterns[p.PatternID] = &p
		}
		merged++
	}

	if merged > 0 {
		l.logger.Info("patterns imported", "count", merged)
	}
	return merged
}

// SavePatterns persists the current pattern set through the Store.
func (l *Learner) SavePatterns(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	snapshot := l.Patterns()
	if err := l.store.Save(ctx, snapshot); err != nil {
		l.logger.Error("pattern save failed", "error", err)
		return err
	}
	l.logger.Debug("patterns saved", "count", len(snapshot))
	return nil
}

// Statistics returns an aggregate view of the learner's state.
func (l *Learner) Statistics() Statistics {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Statistics{
		TotalPatterns: len(l.patterns),
		ByTechnique:   make(map[string]int),
		BySource:      make(map[string]int),
		HistorySize:   len(l.history),
		UniqueTokens:  len(l.tokenFreq),
	}
	for _, p := range l.patterns {
		stats.ByTechnique[p.Technique]++
		stats.BySource[string(p.Source)]++
	}

	if len(l.history) > 0 {
		successes := 0
		for i := range l.history {
			if l.history[i].Success {
				successes++
			}
		}
		stats.OverallSuccessRate = float64(successes) / float64(len(l.history))
	}
	return stats
}

// PruneHistory drops feedback history down to the configured tail.
// Exposed for the maintenance scheduler.
func (l *Learner) PruneHistory() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.history) <= l.cfg.HistoryTail {
		return 0
	}
	dropped := len(l.history) - l.cfg.HistoryTail
	kept := make([]AttackFeedback, l.cfg.HistoryTail)
	copy(kept, l.history[dropped:])
	l.history = kept
	return dropped
}

// History returns a snapshot copy of the feedback history.
func (l *Learner) History() []AttackFeedback {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]AttackFeedback, len(l.history))
	copy(out, l.history)
	return out
}

// Close persists patterns and releases the store.
func (l *Learner) Close(ctx context.Context) error {
	err := l.SavePatterns(ctx)
	if l.store != nil {
		if cerr := l.store.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
