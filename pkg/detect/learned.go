package detect

import (
	"log/slog"
	"regexp"
	"sync"

	"github.com/vantasec/argus/pkg/learner"
)

// PatternProvider supplies learned patterns. *learner.Learner
// satisfies it.
type PatternProvider interface {
	Patterns() []learner.LearnedPattern
}

// LearnedDetector scans text against the learned pattern set. Patterns
// are compiled on Refresh; regexes that fail to compile are skipped
// with a warning so one bad pattern never disables the detector.
//
// # Thread Safety
//
// Scan and Refresh are safe to call concurrently.
type LearnedDetector struct {
	provider      PatternProvider
	minConfidence float64
	logger        *slog.Logger

	mu       sync.RWMutex
	compiled []compiledPattern
}

type compiledPattern struct {
	re         *regexp.Regexp
	technique  string
	pattern    string
	confidence float64
}

// NewLearnedDetector builds a detector over the provider's patterns at
// or above minConfidence, compiling them immediately.
func NewLearnedDetector(provider PatternProvider, minConfidence float64) *LearnedDetector {
	d := &LearnedDetector{
		provider:      provider,
		minConfidence: minConfidence,
		logger:        slog.Default().With("component", "learned_detector"),
	}
	d.Refresh()
	return d
}

// Name identifies the detector.
func (d *LearnedDetector) Name() string { return "learned" }

// Refresh recompiles the pattern set from the provider. Call after
// learning passes or pattern imports to pick up new patterns.
func (d *LearnedDetector) Refresh() int {
	patterns := d.provider.Patterns()

	compiled := make([]compiledPattern, 0, len(patterns))
	skipped := 0
	for _, p := range patterns {
		if p.Confidence < d.minConfidence {
			continue
		}
		re, err := regexp.Compile("(?i)" + p.PatternRegex)
		if err != nil {
			skipped++
			d.logger.Warn("skipping invalid learned pattern",
				"pattern_id", p.PatternID, "error", err)
			continue
		}
		compiled = append(compiled, compiledPattern{
			re:         re,
			technique:  p.Technique,
			pattern:    p.PatternRegex,
			confidence: p.Confidence,
		})
	}

	d.mu.Lock()
	d.compiled = compiled
	d.mu.Unlock()

	if skipped > 0 {
		d.logger.Warn("learned patterns skipped during compile", "skipped", skipped)
	}
	return len(compiled)
}

// Scan returns a finding for every learned pattern that matches.
func (d *LearnedDetector) Scan(text string) []Finding {
	if text == "" {
		return nil
	}

	d.mu.RLock()
	compiled := d.compiled
	d.mu.RUnlock()

	var findings []Finding
	for _, cp := range compiled {
		match := cp.re.FindString(text)
		if match == "" {
			continue
		}
		findings = append(findings, Finding{
			Detector:   d.Name(),
			Technique:  cp.technique,
			Pattern:    cp.pattern,
			Match:      match,
			Severity:   severityFor(cp.confidence),
			Confidence: cp.confidence,
		})
	}
	return findings
}

// severityFor maps pattern confidence to a finding severity.
func severityFor(confidence float64) Severity {
	switch {
	case confidence >= 0.9:
		return SeverityHigh
	case confidence >= 0.7:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
