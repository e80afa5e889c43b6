package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified
// path. It applies default values, validates the configuration, and
// returns any errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention ARGUS_SECTION_FIELD (e.g.
// ARGUS_GOVERNOR_REQUESTS_PER_MINUTE) and always take precedence over
// file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies ARGUS_SECTION_FIELD environment overrides.
func applyEnvOverrides(cfg *Config) {
	// Logging
	if val := os.Getenv("ARGUS_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("ARGUS_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Governor rate limits
	if val := os.Getenv("ARGUS_GOVERNOR_REQUESTS_PER_MINUTE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Governor.RateLimit.RequestsPerMinute = n
		}
	}
	if val := os.Getenv("ARGUS_GOVERNOR_REQUESTS_PER_DAY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Governor.RateLimit.RequestsPerDay = n
		}
	}
	if val := os.Getenv("ARGUS_GOVERNOR_TOKENS_PER_MINUTE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Governor.RateLimit.TokensPerMinute = n
		}
	}
	if val := os.Getenv("ARGUS_GOVERNOR_CONCURRENT_REQUESTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Governor.RateLimit.ConcurrentRequests = n
		}
	}

	// Governor budget
	if val := os.Getenv("ARGUS_BUDGET_DAILY_LIMIT_USD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Governor.Budget.DailyLimitUSD = f
		}
	}
	if val := os.Getenv("ARGUS_BUDGET_MONTHLY_LIMIT_USD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Governor.Budget.MonthlyLimitUSD = f
		}
	}
	if val := os.Getenv("ARGUS_BUDGET_PER_REQUEST_LIMIT_USD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Governor.Budget.PerRequestLimitUSD = f
		}
	}
	if val := os.Getenv("ARGUS_BUDGET_ALERT_THRESHOLD_PERCENT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Governor.Budget.AlertThresholdPercent = f
		}
	}

	// Learner
	if val := os.Getenv("ARGUS_LEARNER_MIN_SUCCESS_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Learner.Thresholds.MinSuccessRate = f
		}
	}
	if val := os.Getenv("ARGUS_LEARNER_MIN_OCCURRENCES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Learner.Thresholds.MinOccurrences = n
		}
	}
	if val := os.Getenv("ARGUS_LEARNER_CONFIDENCE_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Learner.Thresholds.ConfidenceThreshold = f
		}
	}
	if val := os.Getenv("ARGUS_LEARNER_STORE_BACKEND"); val != "" {
		cfg.Learner.Store.Backend = val
	}
	if val := os.Getenv("ARGUS_LEARNER_STORE_PATH"); val != "" {
		cfg.Learner.Store.Path = val
	}
	if val := os.Getenv("ARGUS_LEARNER_WATCH_PATH"); val != "" {
		cfg.Learner.WatchPath = val
	}
}
