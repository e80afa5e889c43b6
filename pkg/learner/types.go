package learner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// PatternSource records how a pattern entered the set.
type PatternSource string

const (
	// SourceManual marks hand-written patterns.
	SourceManual PatternSource = "manual"

	// SourceLearned marks patterns synthesized from attack feedback.
	SourceLearned PatternSource = "learned"

	// SourceCommunity marks patterns imported from shared pattern drops.
	SourceCommunity PatternSource = "community"

	// SourceEvolved marks patterns produced by mutation.
	SourceEvolved PatternSource = "evolved"
)

// LearnedPattern is a regex synthesized from observed adversarial
// payloads, together with the evidence that produced it. Patterns are
// never deleted automatically; pruning is an administrative operation.
type LearnedPattern struct {
	// PatternID is stable across processes: it is derived from the
	// technique and the pattern text (see PatternID).
	PatternID string `json:"pattern_id"`

	// PatternRegex is the detection/generation regex text.
	PatternRegex string `json:"pattern_regex"`

	// Technique is the attack technique this pattern was learned from.
	Technique string `json:"technique"`

	// SuccessCount and TotalAttempts accumulate the supporting evidence.
	SuccessCount  int `json:"success_count"`
	TotalAttempts int `json:"total_attempts"`

	// Confidence is in [0,1]; corroborating evidence averages into it.
	Confidence float64 `json:"confidence"`

	// Source records how the pattern entered the set.
	Source PatternSource `json:"source"`

	// TargetModels is the set of models the pattern succeeded against.
	// Empty means the pattern is not model-specific.
	TargetModels []string `json:"target_models"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// AttackFeedback is one observed outcome of an adversarial probe. The
// feedback stream is append-only input to the Learner.
type AttackFeedback struct {
	// AttackID identifies the probe; assigned when empty.
	AttackID string `json:"attack_id"`

	// Payload is the adversarial prompt that was sent.
	Payload string `json:"payload"`

	// Technique is the attack technique label (e.g. "jailbreak").
	Technique string `json:"technique"`

	// TargetModel is the model the probe ran against.
	TargetModel string `json:"target_model"`

	// ModelVersion is optional version detail.
	ModelVersion string `json:"model_version,omitempty"`

	// Success reports whether the attack achieved its objective.
	Success bool `json:"success"`

	// BypassedDetection reports whether guardrails missed the payload.
	BypassedDetection bool `json:"bypassed_detection"`

	// ResponseSnippet is a truncated excerpt of the model response.
	ResponseSnippet string `json:"response_snippet,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Statistics is an aggregate view over the learned pattern set.
type Statistics struct {
	TotalPatterns      int            `json:"total_patterns"`
	ByTechnique        map[string]int `json:"by_technique"`
	BySource           map[string]int `json:"by_source"`
	OverallSuccessRate float64        `json:"overall_success_rate"`
	HistorySize        int            `json:"history_size"`
	UniqueTokens       int            `json:"unique_tokens"`
}

// Store persists the learned pattern set. Implementations live in the
// store subpackage and must be safe for concurrent use.
//
// Load returning an empty slice with no error is the normal cold-start
// path; implementations skip malformed entries rather than failing.
type Store interface {
	// Load retrieves all persisted patterns.
	Load(ctx context.Context) ([]LearnedPattern, error)

	// Save persists the full pattern set, keyed by pattern ID.
	Save(ctx context.Context, patterns []LearnedPattern) error

	// Close releases resources held by the store.
	Close() error
}

// PatternID derives the stable identifier for a pattern: the technique
// plus a short hash of the pattern text. The same technique and text
// always produce the same ID, across processes and restarts.
func PatternID(technique, pattern string) string {
	sum := sha256.Sum256([]byte(technique + "\x00" + pattern))
	return fmt.Sprintf("learned_%s_%s", technique, hex.EncodeToString(sum[:4]))
}
