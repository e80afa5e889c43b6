package governor

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitConfig parameterizes the token bucket and concurrency gate.
// It is an immutable snapshot; reconfiguration replaces it wholesale via
// Governor.UpdateRateLimit, never field by field.
type RateLimitConfig struct {
	// RequestsPerMinute is the bucket capacity and sustained request rate.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerDay is the hard daily request ceiling.
	RequestsPerDay int `yaml:"requests_per_day"`

	// TokensPerMinute is an advisory token throughput target. It is
	// reported in status but not enforced by the bucket.
	TokensPerMinute int `yaml:"tokens_per_minute"`

	// ConcurrentRequests caps how many LLM calls may be in flight at once.
	ConcurrentRequests int `yaml:"concurrent_requests"`
}

// DefaultRateLimitConfig returns the stock rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute:  60,
		RequestsPerDay:     10000,
		TokensPerMinute:    100000,
		ConcurrentRequests: 10,
	}
}

// Validate checks that every field is usable. Invalid configurations are
// rejected in full; a Governor never runs with a partially valid snapshot.
func (c RateLimitConfig) Validate() error {
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("%w: requests_per_minute must be positive, got %d", ErrConfigInvalid, c.RequestsPerMinute)
	}
	if c.RequestsPerDay <= 0 {
		return fmt.Errorf("%w: requests_per_day must be positive, got %d", ErrConfigInvalid, c.RequestsPerDay)
	}
	if c.TokensPerMinute < 0 {
		return fmt.Errorf("%w: tokens_per_minute must not be negative, got %d", ErrConfigInvalid, c.TokensPerMinute)
	}
	if c.ConcurrentRequests <= 0 {
		return fmt.Errorf("%w: concurrent_requests must be positive, got %d", ErrConfigInvalid, c.ConcurrentRequests)
	}
	return nil
}

// BudgetConfig contains the spending limits enforced by CheckBudget.
// Administrative updates replace the whole struct after validation.
type BudgetConfig struct {
	// DailyLimitUSD is the spending cap per calendar day.
	DailyLimitUSD float64 `yaml:"daily_limit_usd"`

	// MonthlyLimitUSD is the spending cap per calendar month.
	MonthlyLimitUSD float64 `yaml:"monthly_limit_usd"`

	// PerRequestLimitUSD caps the estimated cost of a single call.
	PerRequestLimitUSD float64 `yaml:"per_request_limit_usd"`

	// AlertThresholdPercent is the percent-used level, in (0,100], at
	// which budget status raises its alert flags.
	AlertThresholdPercent float64 `yaml:"alert_threshold_percent"`
}

// DefaultBudgetConfig returns the stock budget configuration.
func DefaultBudgetConfig() BudgetConfig {
	return BudgetConfig{
		DailyLimitUSD:         10.0,
		MonthlyLimitUSD:       100.0,
		PerRequestLimitUSD:    1.0,
		AlertThresholdPercent: 80.0,
	}
}

// Validate checks limits are positive and the alert threshold is in (0,100].
func (c BudgetConfig) Validate() error {
	if c.DailyLimitUSD <= 0 {
		return fmt.Errorf("%w: daily_limit_usd must be positive, got %v", ErrConfigInvalid, c.DailyLimitUSD)
	}
	if c.MonthlyLimitUSD <= 0 {
		return fmt.Errorf("%w: monthly_limit_usd must be positive, got %v", ErrConfigInvalid, c.MonthlyLimitUSD)
	}
	if c.PerRequestLimitUSD <= 0 {
		return fmt.Errorf("%w: per_request_limit_usd must be positive, got %v", ErrConfigInvalid, c.PerRequestLimitUSD)
	}
	if c.AlertThresholdPercent <= 0 || c.AlertThresholdPercent > 100 {
		return fmt.Errorf("%w: alert_threshold_percent must be in (0,100], got %v", ErrConfigInvalid, c.AlertThresholdPercent)
	}
	return nil
}

// UsageRecord is the immutable fact recorded once per completed LLM call.
type UsageRecord struct {
	// Timestamp is when the call completed.
	Timestamp time.Time `json:"timestamp"`

	// Provider is the upstream provider (openai, anthropic, ollama).
	Provider string `json:"provider"`

	// Model is the model that served the call.
	Model string `json:"model"`

	// InputTokens is the actual prompt token count.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the actual completion token count.
	OutputTokens int `json:"output_tokens"`

	// CostUSD is the priced cost of the call.
	CostUSD float64 `json:"cost_usd"`

	// Endpoint labels the call site (e.g. "chat", "redteam").
	Endpoint string `json:"endpoint"`
}

// CostSummary aggregates usage over a calendar window.
type CostSummary struct {
	TotalCostUSD      float64            `json:"total_cost_usd"`
	TotalRequests     int                `json:"total_requests"`
	TotalInputTokens  int                `json:"total_input_tokens"`
	TotalOutputTokens int                `json:"total_output_tokens"`
	ByModel           map[string]float64 `json:"by_model"`
	ByProvider        map[string]float64 `json:"by_provider"`
}

// WindowStatus is the budget position of one window.
type WindowStatus struct {
	UsedUSD      float64 `json:"used_usd"`
	LimitUSD     float64 `json:"limit_usd"`
	PercentUsed  float64 `json:"percent_used"`
	RemainingUSD float64 `json:"remaining_usd"`

	// Alert is set when PercentUsed has reached the alert threshold.
	Alert bool `json:"alert"`
}

// BudgetStatus is the point-in-time budget snapshot returned to the
// administrative surface.
type BudgetStatus struct {
	Daily         WindowStatus `json:"daily"`
	Monthly       WindowStatus `json:"monthly"`
	RequestsToday int          `json:"requests_today"`
}

// Sentinel errors surfaced by callers of the governor. The hot-path
// methods never return these themselves; callers map a false admission
// or budget decision onto them when reporting upward.
var (
	// ErrRateLimitExceeded indicates AcquireWithWait timed out.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrBudgetExceeded indicates CheckBudget rejected the call.
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrConfigInvalid indicates a rejected configuration update.
	ErrConfigInvalid = errors.New("invalid governor configuration")
)
