package learner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"
)

func feedbackAt(i int, technique, payload string, success bool) AttackFeedback {
	return AttackFeedback{
		Payload:     payload,
		Technique:   technique,
		TargetModel: "gpt-4",
		Success:     success,
		Timestamp:   time.Date(2026, 5, 1, 10, 0, i, 0, time.UTC),
	}
}

// ============================================================
// Feedback recording
// ============================================================

func TestLearner_RecordAttackAssignsID(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())

	fb := l.RecordAttack(AttackFeedback{Payload: "probe", Technique: "jailbreak"})
	if fb.AttackID == "" {
		t.Error("empty attack ID should be assigned")
	}
	if fb.Timestamp.IsZero() {
		t.Error("zero timestamp should be filled")
	}

	// A caller-supplied ID survives.
	fb2 := l.RecordAttack(AttackFeedback{AttackID: "a-1", Payload: "probe", Technique: "jailbreak"})
	if fb2.AttackID != "a-1" {
		t.Errorf("attack ID = %q, want a-1", fb2.AttackID)
	}
}

func TestLearner_RecordAttackTruncatesSnippet(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())

	long := strings.Repeat("x", 2000)
	fb := l.RecordAttack(AttackFeedback{Payload: "p", Technique: "t", ResponseSnippet: long})
	if len(fb.ResponseSnippet) != maxSnippetLen {
		t.Errorf("snippet length = %d, want %d", len(fb.ResponseSnippet), maxSnippetLen)
	}
}

func TestLearner_HistoryCompaction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryCapacity = 20
	cfg.HistoryTail = 10
	l := New(context.Background(), nil, cfg)

	for i := 0; i < 21; i++ {
		l.RecordAttack(AttackFeedback{
			AttackID:  fmt.Sprintf("a-%d", i),
			Payload:   fmt.Sprintf("unique payload number %d", i),
			Technique: fmt.Sprintf("t%d", i), // distinct techniques, no learning passes
		})
	}

	history := l.History()
	if len(history) != 10 {
		t.Fatalf("history length = %d, want 10", len(history))
	}
	if history[0].AttackID != "a-11" {
		t.Errorf("oldest surviving record = %s, want a-11", history[0].AttackID)
	}
	if history[9].AttackID != "a-20" {
		t.Errorf("newest record = %s, want a-20", history[9].AttackID)
	}
}

// ============================================================
// Pattern learning
// ============================================================

func TestLearner_LearnsAnchoredSuffix(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())

	// Five jailbreak probes sharing a suffix; four of them succeeded.
	l.RecordAttack(feedbackAt(0, "jailbreak", "probe zero OVERRIDE-SAFETY", false))
	l.RecordAttack(feedbackAt(1, "jailbreak", "probe one OVERRIDE-SAFETY", true))
	l.RecordAttack(feedbackAt(2, "jailbreak", "probe two OVERRIDE-SAFETY", true))
	l.RecordAttack(feedbackAt(3, "jailbreak", "probe three OVERRIDE-SAFETY", true))
	l.RecordAttack(feedbackAt(4, "jailbreak", "probe four OVERRIDE-SAFETY", true))

	wantRegex := regexp.QuoteMeta(" OVERRIDE-SAFETY") + "$"

	var found *LearnedPattern
	for _, p := range l.Patterns() {
		if p.PatternRegex == wantRegex {
			found = &p
			break
		}
	}
	if found == nil {
		t.Fatalf("no pattern with regex %q; patterns: %+v", wantRegex, l.Patterns())
	}

	// 4 successful occurrences out of 5 attempts.
	if found.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", found.Confidence)
	}
	if found.Technique != "jailbreak" {
		t.Errorf("technique = %q", found.Technique)
	}
	if found.Source != SourceLearned {
		t.Errorf("source = %q, want learned", found.Source)
	}
	if len(found.TargetModels) != 1 || found.TargetModels[0] != "gpt-4" {
		t.Errorf("target models = %v, want [gpt-4]", found.TargetModels)
	}

	// The learned regex must actually match the payloads it came from.
	re := regexp.MustCompile(found.PatternRegex)
	if !re.MatchString("anything OVERRIDE-SAFETY") {
		t.Error("learned regex should match a suffixed payload")
	}
	if re.MatchString("OVERRIDE-SAFETY in the middle") {
		t.Error("anchored regex should not match mid-string")
	}
}

func TestLearner_NoLearningBelowSuccessRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSuccessRate = 0.5
	l := New(context.Background(), nil, cfg)

	// One success in five is under the 0.5 floor.
	l.RecordAttack(feedbackAt(0, "injection", "alpha COMMON-TAIL-MARKER", true))
	for i := 1; i < 5; i++ {
		l.RecordAttack(feedbackAt(i, "injection", fmt.Sprintf("beta %d COMMON-TAIL-MARKER", i), false))
	}

	if n := len(l.Patterns()); n != 0 {
		t.Errorf("learned %d patterns below the success-rate floor", n)
	}
}

func TestLearner_DetectionPatternsThreshold(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())

	l.ImportPatterns([]LearnedPattern{
		{PatternRegex: "high-confidence", Technique: "jailbreak", Confidence: 0.9, Source: SourceManual},
		{PatternRegex: "low-confidence", Technique: "jailbreak", Confidence: 0.4, Source: SourceManual},
		{PatternRegex: "other-technique", Technique: "injection", Confidence: 0.9, Source: SourceManual},
	})

	got := l.DetectionPatterns("jailbreak")
	if len(got) != 1 || got[0] != "high-confidence" {
		t.Errorf("DetectionPatterns(jailbreak) = %v, want [high-confidence]", got)
	}

	all := l.DetectionPatterns("")
	if len(all) != 2 {
		t.Errorf("DetectionPatterns(\"\") = %v, want both high-confidence patterns", all)
	}
}

func TestLearner_AttackSuggestions(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())

	l.ImportPatterns([]LearnedPattern{
		{PatternRegex: "strong", Technique: "jailbreak", Confidence: 0.9, TargetModels: []string{"gpt-4"}},
		{PatternRegex: "weak", Technique: "jailbreak", Confidence: 0.3},
		{PatternRegex: "wrong-model", Technique: "jailbreak", Confidence: 0.9, TargetModels: []string{"llama3"}},
		{PatternRegex: "model-agnostic", Technique: "jailbreak", Confidence: 0.6},
	})

	got := l.AttackSuggestions("gpt-4", "jailbreak")

	want := map[string]bool{"strong": false, "model-agnostic": false}
	for _, s := range got {
		if _, ok := want[s]; ok {
			want[s] = true
		}
		if s == "weak" {
			t.Error("below-floor pattern should not be suggested")
		}
		if s == "wrong-model" {
			t.Error("pattern for another model should not be suggested")
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("expected suggestion %q", name)
		}
	}
}

// ============================================================
// Imports and merging
// ============================================================

func TestLearner_ImportPatternsMerge(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())

	p := LearnedPattern{
		PatternRegex:  "shared",
		Technique:     "jailbreak",
		SuccessCount:  4,
		TotalAttempts: 5,
		Confidence:    0.8,
		Source:        SourceCommunity,
		TargetModels:  []string{"gpt-4"},
	}
	if n := l.ImportPatterns([]LearnedPattern{p}); n != 1 {
		t.Fatalf("imported %d, want 1", n)
	}

	// Re-importing the same pattern accumulates evidence and averages
	// confidence.
	update := p
	update.SuccessCount = 2
	update.TotalAttempts = 3
	update.Confidence = 0.6
	update.TargetModels = []string{"llama3"}
	l.ImportPatterns([]LearnedPattern{update})

	patterns := l.Patterns()
	if len(patterns) != 1 {
		t.Fatalf("pattern count = %d, want 1", len(patterns))
	}
	got := patterns[0]
	if got.SuccessCount != 6 || got.TotalAttempts != 8 {
		t.Errorf("evidence = %d/%d, want 6/8", got.SuccessCount, got.TotalAttempts)
	}
	if got.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", got.Confidence)
	}
	if len(got.TargetModels) != 2 {
		t.Errorf("target models = %v, want both models", got.TargetModels)
	}
}

func TestLearner_ImportSkipsEmptyRegex(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())
	if n := l.ImportPatterns([]LearnedPattern{{Technique: "jailbreak"}}); n != 0 {
		t.Errorf("imported %d patterns with empty regex, want 0", n)
	}
}

// ============================================================
// Statistics
// ============================================================

func TestLearner_Statistics(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())

	l.RecordAttack(feedbackAt(0, "a", "probe one", true))
	l.RecordAttack(feedbackAt(1, "b", "probe two", false))

	l.ImportPatterns([]LearnedPattern{
		{PatternRegex: "x", Technique: "a", Confidence: 0.9, Source: SourceManual},
		{PatternRegex: "y", Technique: "b", Confidence: 0.9, Source: SourceCommunity},
	})

	stats := l.Statistics()
	if stats.TotalPatterns != 2 {
		t.Errorf("total patterns = %d, want 2", stats.TotalPatterns)
	}
	if stats.HistorySize != 2 {
		t.Errorf("history size = %d, want 2", stats.HistorySize)
	}
	if stats.OverallSuccessRate != 0.5 {
		t.Errorf("success rate = %v, want 0.5", stats.OverallSuccessRate)
	}
	if stats.ByTechnique["a"] != 1 || stats.ByTechnique["b"] != 1 {
		t.Errorf("by technique = %v", stats.ByTechnique)
	}
	if stats.BySource[string(SourceManual)] != 1 {
		t.Errorf("by source = %v", stats.BySource)
	}
}

// ============================================================
// Pattern IDs
// ============================================================

func TestPatternID_Stable(t *testing.T) {
	a := PatternID("jailbreak", "some-regex")
	b := PatternID("jailbreak", "some-regex")
	if a != b {
		t.Errorf("same inputs produced different IDs: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "learned_jailbreak_") {
		t.Errorf("ID format = %s", a)
	}
	if PatternID("injection", "some-regex") == a {
		t.Error("different techniques should produce different IDs")
	}
}
