package config

import (
	"github.com/vantasec/argus/pkg/governor"
	"github.com/vantasec/argus/pkg/learner"
	"github.com/vantasec/argus/pkg/telemetry/logging"
)

// Config is the root configuration for argus.
type Config struct {
	// Logging configures structured logging.
	Logging logging.Config `yaml:"logging"`

	// Governor configures rate limiting and budget enforcement.
	Governor GovernorConfig `yaml:"governor"`

	// Learner configures the pattern learning loop.
	Learner LearnerConfig `yaml:"learner"`

	// Detect configures the static guardrail detectors.
	Detect DetectConfig `yaml:"detect"`
}

// GovernorConfig groups the rate and budget limits.
type GovernorConfig struct {
	RateLimit governor.RateLimitConfig `yaml:"rate_limit"`
	Budget    governor.BudgetConfig    `yaml:"budget"`
}

// LearnerConfig groups learning thresholds, persistence, and
// maintenance schedules.
type LearnerConfig struct {
	Thresholds learner.Config          `yaml:"thresholds"`
	Scheduler  learner.SchedulerConfig `yaml:"scheduler"`
	Store      StoreConfig             `yaml:"store"`

	// WatchPath is an optional pattern drop file to watch and import.
	WatchPath string `yaml:"watch_path"`
}

// StoreConfig selects and locates the pattern persistence backend.
type StoreConfig struct {
	// Backend is "file", "sqlite", or "memory".
	Backend string `yaml:"backend"`

	// Path is the file or database path. Unused by the memory backend.
	Path string `yaml:"path"`
}

// DetectConfig configures the static detectors.
type DetectConfig struct {
	// Patterns are extra regexes scanned alongside learned patterns.
	Patterns []string `yaml:"patterns"`

	// MinConfidence gates which learned patterns the detector compiles.
	MinConfidence float64 `yaml:"min_confidence"`
}
