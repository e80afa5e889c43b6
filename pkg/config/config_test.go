package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vantasec/argus/pkg/governor"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ============================================================
// Loading
// ============================================================

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: text
governor:
  rate_limit:
    requests_per_minute: 30
    requests_per_day: 500
    tokens_per_minute: 50000
    concurrent_requests: 4
  budget:
    daily_limit_usd: 25.0
    monthly_limit_usd: 400.0
    per_request_limit_usd: 2.0
    alert_threshold_percent: 90
learner:
  thresholds:
    min_success_rate: 0.2
    min_occurrences: 5
    confidence_threshold: 0.8
  store:
    backend: sqlite
    path: /var/lib/argus/patterns.db
detect:
  patterns:
    - ignore\s+previous
  min_confidence: 0.6
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Governor.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("requests_per_minute = %d", cfg.Governor.RateLimit.RequestsPerMinute)
	}
	if cfg.Governor.Budget.DailyLimitUSD != 25.0 {
		t.Errorf("daily_limit_usd = %v", cfg.Governor.Budget.DailyLimitUSD)
	}
	if cfg.Learner.Thresholds.MinOccurrences != 5 {
		t.Errorf("min_occurrences = %d", cfg.Learner.Thresholds.MinOccurrences)
	}
	if cfg.Learner.Store.Backend != "sqlite" {
		t.Errorf("store backend = %q", cfg.Learner.Store.Backend)
	}
	if len(cfg.Detect.Patterns) != 1 || cfg.Detect.MinConfidence != 0.6 {
		t.Errorf("detect = %+v", cfg.Detect)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "logging: [not: valid")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
learner:
  store:
    backend: redis
    path: somewhere
`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for unknown store backend")
	}
}

// ============================================================
// Defaults
// ============================================================

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Governor.RateLimit != governor.DefaultRateLimitConfig() {
		t.Errorf("rate limit defaults = %+v", cfg.Governor.RateLimit)
	}
	if cfg.Governor.Budget != governor.DefaultBudgetConfig() {
		t.Errorf("budget defaults = %+v", cfg.Governor.Budget)
	}
	if cfg.Learner.Store.Backend != DefaultStoreBackend {
		t.Errorf("store backend = %q", cfg.Learner.Store.Backend)
	}
	if cfg.Learner.Store.Path != DefaultStorePath {
		t.Errorf("store path = %q", cfg.Learner.Store.Path)
	}
	if cfg.Detect.MinConfidence != cfg.Learner.Thresholds.ConfidenceThreshold {
		t.Errorf("detect min_confidence = %v", cfg.Detect.MinConfidence)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "error"
	cfg.Governor.RateLimit = governor.RateLimitConfig{
		RequestsPerMinute:  1,
		RequestsPerDay:     10,
		TokensPerMinute:    1000,
		ConcurrentRequests: 1,
	}
	cfg.Learner.Store.Backend = "memory"

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "error" {
		t.Errorf("level overwritten: %q", cfg.Logging.Level)
	}
	if cfg.Governor.RateLimit.RequestsPerMinute != 1 {
		t.Errorf("rate limit overwritten: %+v", cfg.Governor.RateLimit)
	}
	// Memory backend needs no path.
	if cfg.Learner.Store.Path != "" {
		t.Errorf("path filled for memory backend: %q", cfg.Learner.Store.Path)
	}
}

// ============================================================
// Environment overrides
// ============================================================

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: info
governor:
  rate_limit:
    requests_per_minute: 30
    requests_per_day: 500
    tokens_per_minute: 50000
    concurrent_requests: 4
`)

	t.Setenv("ARGUS_LOG_LEVEL", "debug")
	t.Setenv("ARGUS_GOVERNOR_REQUESTS_PER_MINUTE", "99")
	t.Setenv("ARGUS_BUDGET_DAILY_LIMIT_USD", "7.5")
	t.Setenv("ARGUS_LEARNER_STORE_BACKEND", "memory")
	t.Setenv("ARGUS_LEARNER_MIN_OCCURRENCES", "7")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, env override should win", cfg.Logging.Level)
	}
	if cfg.Governor.RateLimit.RequestsPerMinute != 99 {
		t.Errorf("requests_per_minute = %d, want 99", cfg.Governor.RateLimit.RequestsPerMinute)
	}
	if cfg.Governor.Budget.DailyLimitUSD != 7.5 {
		t.Errorf("daily_limit_usd = %v, want 7.5", cfg.Governor.Budget.DailyLimitUSD)
	}
	if cfg.Learner.Store.Backend != "memory" {
		t.Errorf("store backend = %q, want memory", cfg.Learner.Store.Backend)
	}
	if cfg.Learner.Thresholds.MinOccurrences != 7 {
		t.Errorf("min_occurrences = %d, want 7", cfg.Learner.Thresholds.MinOccurrences)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	// An override that breaks validation fails the load.
	t.Setenv("ARGUS_LEARNER_STORE_BACKEND", "redis")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("expected validation error after bad env override")
	}
}

// ============================================================
// Validation
// ============================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(cfg *Config) {}},
		{
			name: "negative success rate",
			mutate: func(cfg *Config) {
				cfg.Learner.Thresholds.MinSuccessRate = -0.1
			},
			wantErr: true,
		},
		{
			name: "confidence above one",
			mutate: func(cfg *Config) {
				cfg.Learner.Thresholds.ConfidenceThreshold = 1.5
			},
			wantErr: true,
		},
		{
			name: "file backend without path",
			mutate: func(cfg *Config) {
				cfg.Learner.Store.Backend = "file"
				cfg.Learner.Store.Path = ""
			},
			wantErr: true,
		},
		{
			name: "memory backend without path",
			mutate: func(cfg *Config) {
				cfg.Learner.Store.Backend = "memory"
				cfg.Learner.Store.Path = ""
			},
		},
		{
			name: "detect confidence out of range",
			mutate: func(cfg *Config) {
				cfg.Detect.MinConfidence = 2.0
			},
			wantErr: true,
		},
		{
			name: "zero rate limit",
			mutate: func(cfg *Config) {
				cfg.Governor.RateLimit.RequestsPerMinute = -1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
