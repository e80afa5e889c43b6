package config

import (
	"github.com/vantasec/argus/pkg/governor"
	"github.com/vantasec/argus/pkg/learner"
)

// Default paths for the file-backed pattern store.
const (
	DefaultStoreBackend = "file"
	DefaultStorePath    = "learned_patterns.json"
)

// DefaultConfig returns a fully populated configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values with defaults, section by section.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Governor.RateLimit == (governor.RateLimitConfig{}) {
		cfg.Governor.RateLimit = governor.DefaultRateLimitConfig()
	}
	if cfg.Governor.Budget == (governor.BudgetConfig{}) {
		cfg.Governor.Budget = governor.DefaultBudgetConfig()
	}

	if cfg.Learner.Thresholds == (learner.Config{}) {
		cfg.Learner.Thresholds = learner.DefaultConfig()
	}
	if cfg.Learner.Scheduler == (learner.SchedulerConfig{}) {
		cfg.Learner.Scheduler = learner.DefaultSchedulerConfig()
	}
	if cfg.Learner.Store.Backend == "" {
		cfg.Learner.Store.Backend = DefaultStoreBackend
	}
	if cfg.Learner.Store.Path == "" && cfg.Learner.Store.Backend != "memory" {
		cfg.Learner.Store.Path = DefaultStorePath
	}

	if cfg.Detect.MinConfidence == 0 {
		cfg.Detect.MinConfidence = cfg.Learner.Thresholds.ConfidenceThreshold
	}
}
