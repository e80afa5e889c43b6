package config

import (
	"fmt"
)

// Validate checks the configuration for semantic errors. It collects
// the first error per section and wraps it with the section name.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := cfg.Governor.RateLimit.Validate(); err != nil {
		return fmt.Errorf("governor.rate_limit: %w", err)
	}
	if err := cfg.Governor.Budget.Validate(); err != nil {
		return fmt.Errorf("governor.budget: %w", err)
	}

	if err := validateLearner(&cfg.Learner); err != nil {
		return fmt.Errorf("learner: %w", err)
	}

	if cfg.Detect.MinConfidence < 0 || cfg.Detect.MinConfidence > 1 {
		return fmt.Errorf("detect: min_confidence must be in [0,1], got %v", cfg.Detect.MinConfidence)
	}

	return nil
}

func validateLearner(cfg *LearnerConfig) error {
	t := cfg.Thresholds
	if t.MinSuccessRate < 0 || t.MinSuccessRate > 1 {
		return fmt.Errorf("thresholds.min_success_rate must be in [0,1], got %v", t.MinSuccessRate)
	}
	if t.ConfidenceThreshold < 0 || t.ConfidenceThreshold > 1 {
		return fmt.Errorf("thresholds.confidence_threshold must be in [0,1], got %v", t.ConfidenceThreshold)
	}
	if t.MinOccurrences < 0 {
		return fmt.Errorf("thresholds.min_occurrences must be non-negative, got %d", t.MinOccurrences)
	}

	switch cfg.Store.Backend {
	case "", "file", "sqlite":
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path is required for backend %q", cfg.Store.Backend)
		}
	case "memory":
	default:
		return fmt.Errorf("store.backend must be file, sqlite, or memory, got %q", cfg.Store.Backend)
	}

	return nil
}
