package governor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vantasec/argus/pkg/costs"
)

const (
	// acquirePollInterval is the retry interval of AcquireWithWait.
	acquirePollInterval = 100 * time.Millisecond

	// DefaultAcquireTimeout is used when AcquireWithWait is given a
	// non-positive timeout.
	DefaultAcquireTimeout = 30 * time.Second

	// DefaultEstimatedOutputTokens is assumed when the caller cannot yet
	// know the completion length of a pending call.
	DefaultEstimatedOutputTokens = 500

	// defaultEndpoint labels usage records whose call site is unnamed.
	defaultEndpoint = "chat"
)

// Governor is the aggregate admission controller shared by every
// outbound LLM call in the process. Construct one at startup and pass it
// by reference to all consumers; there is no hidden global instance.
//
// # Thread Safety
//
// One mutex guards the token bucket, the daily/monthly cost counters,
// and the lazy calendar rollover, so that refill, the ceiling checks,
// and the decrement form a single critical section. The concurrency
// gate uses atomics and the ledger carries its own lock.
type Governor struct {
	mu sync.Mutex

	rate   RateLimitConfig
	budget BudgetConfig

	bucket *tokenBucket
	gate   *Gate
	ledger *Ledger

	dailyCost     float64
	monthlyCost   float64
	dailyRequests int
	resetDay      int
	resetMonth    time.Month

	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
}

// Option customizes a Governor at construction time.
type Option func(*Governor)

// WithClock replaces the wall clock. Calendar rollover and record
// timestamps use the supplied function; intended for tests that simulate
// day and month boundaries.
func WithClock(now func() time.Time) Option {
	return func(g *Governor) { g.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Governor) { g.logger = logger }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(g *Governor) { g.metrics = m }
}

// WithLedgerCapacity overrides the usage ledger bounds.
func WithLedgerCapacity(capacity, tail int) Option {
	return func(g *Governor) { g.ledger = NewLedgerWithCapacity(capacity, tail) }
}

// New creates a Governor from validated rate and budget configuration.
func New(rate RateLimitConfig, budget BudgetConfig, opts ...Option) (*Governor, error) {
	if err := rate.Validate(); err != nil {
		return nil, err
	}
	if err := budget.Validate(); err != nil {
		return nil, err
	}

	g := &Governor{
		rate:   rate,
		budget: budget,
		gate:   NewGate(rate.ConcurrentRequests),
		ledger: NewLedger(),
		now:    time.Now,
		logger: slog.Default().With("component", "governor"),
	}
	for _, opt := range opts {
		opt(g)
	}

	start := g.now()
	g.bucket = newTokenBucket(rate.RequestsPerMinute, start)
	g.resetDay = start.Day()
	g.resetMonth = start.Month()

	g.logger.Info("governor initialized",
		"requests_per_minute", rate.RequestsPerMinute,
		"requests_per_day", rate.RequestsPerDay,
		"concurrent_requests", rate.ConcurrentRequests,
		"daily_limit_usd", budget.DailyLimitUSD,
		"monthly_limit_usd", budget.MonthlyLimitUSD,
	)

	return g, nil
}

// Acquire attempts to admit one request. It refills the bucket for the
// elapsed time, applies any pending calendar rollover, enforces the daily
// request ceiling, and consumes one bucket unit on success. Returns false
// without side effects when no capacity is available.
func (g *Governor) Acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.bucket.refill(now)
	g.rolloverLocked(now)

	if g.dailyRequests >= g.rate.RequestsPerDay {
		g.metrics.observeAcquire(false)
		return false
	}
	if !g.bucket.take() {
		g.metrics.observeAcquire(false)
		return false
	}

	g.dailyRequests++
	g.metrics.observeAcquire(true)
	return true
}

// AcquireWithWait retries Acquire every 100ms until it succeeds, the
// timeout elapses, or ctx is cancelled. A non-positive timeout selects
// DefaultAcquireTimeout. This is the only suspension point the governor
// exposes; a false return means the caller should abort the call and
// report ErrRateLimitExceeded upward.
func (g *Governor) AcquireWithWait(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}
	start := time.Now()
	deadline := start.Add(timeout)

	for {
		if g.Acquire() {
			g.metrics.observeWait(time.Since(start))
			return true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			g.metrics.observeWait(time.Since(start))
			return false
		}

		wait := acquirePollInterval
		if wait > remaining {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}
}

// TryAcquireSlot claims an in-flight slot on the concurrency gate before
// an outbound call is dispatched. A true return obligates the caller to
// invoke ReleaseSlot on every exit path of the call.
func (g *Governor) TryAcquireSlot() bool {
	ok := g.gate.TryAcquire()
	if ok {
		g.metrics.setInFlight(g.gate.InFlight())
	}
	return ok
}

// ReleaseSlot returns an in-flight slot after the call completes,
// successfully or not.
func (g *Governor) ReleaseSlot() {
	g.gate.Release()
	g.metrics.setInFlight(g.gate.InFlight())
}

// InFlight returns the number of LLM calls currently holding a slot.
func (g *Governor) InFlight() int64 {
	return g.gate.InFlight()
}

// CheckBudget decides whether a call with the given estimated cost may
// proceed. It applies the lazy calendar rollover first so the limits are
// evaluated against the correct windows, then checks the per-request,
// daily, and monthly limits in that order. The reason is "OK" on
// success and human-readable on rejection; this method never errors.
func (g *Governor) CheckBudget(estimatedCost float64) (allowed bool, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rolloverLocked(g.now())

	switch {
	case estimatedCost > g.budget.PerRequestLimitUSD:
		reason = fmt.Sprintf("request cost $%.4f exceeds per-request limit $%.2f",
			estimatedCost, g.budget.PerRequestLimitUSD)
	case g.dailyCost+estimatedCost > g.budget.DailyLimitUSD:
		reason = fmt.Sprintf("daily budget exhausted ($%.2f/$%.2f)",
			g.dailyCost, g.budget.DailyLimitUSD)
	case g.monthlyCost+estimatedCost > g.budget.MonthlyLimitUSD:
		reason = fmt.Sprintf("monthly budget exhausted ($%.2f/$%.2f)",
			g.monthlyCost, g.budget.MonthlyLimitUSD)
	default:
		g.metrics.observeBudgetCheck(true)
		return true, "OK"
	}

	g.metrics.observeBudgetCheck(false)
	return false, reason
}

// EstimateCost prices a pending call. When estimatedOutputTokens is not
// positive, DefaultEstimatedOutputTokens is assumed.
func (g *Governor) EstimateCost(model string, inputTokens, estimatedOutputTokens int) float64 {
	if estimatedOutputTokens <= 0 {
		estimatedOutputTokens = DefaultEstimatedOutputTokens
	}
	return costs.EstimateCost(model, inputTokens, estimatedOutputTokens)
}

// RecordUsage prices the actual token usage of a completed call, appends
// a UsageRecord to the ledger, and adds the cost to the daily and monthly
// counters. This is the only way ledger totals increase and must be
// called exactly once per completed call.
func (g *Governor) RecordUsage(provider, model string, inputTokens, outputTokens int, endpoint string) UsageRecord {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	cost := costs.EstimateCost(model, inputTokens, outputTokens)
	rec := UsageRecord{
		Timestamp:    g.now(),
		Provider:     provider,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      cost,
		Endpoint:     endpoint,
	}

	g.ledger.Append(rec)

	g.mu.Lock()
	g.dailyCost += cost
	g.monthlyCost += cost
	daily, monthly := g.dailyCost, g.monthlyCost
	g.mu.Unlock()

	g.metrics.observeUsage(provider, model, cost, inputTokens+outputTokens)
	g.metrics.setSpend(daily, monthly)

	return rec
}

// DailySummary aggregates ledger records of the current calendar day.
func (g *Governor) DailySummary() CostSummary {
	g.mu.Lock()
	now := g.now()
	g.rolloverLocked(now)
	g.mu.Unlock()

	day := now.Format("2006-01-02")
	return summarize(g.ledger.Snapshot(), func(r UsageRecord) bool {
		return r.Timestamp.Format("2006-01-02") == day
	})
}

// MonthlySummary aggregates ledger records of the current calendar month.
func (g *Governor) MonthlySummary() CostSummary {
	g.mu.Lock()
	now := g.now()
	g.rolloverLocked(now)
	g.mu.Unlock()

	year, month := now.Year(), now.Month()
	return summarize(g.ledger.Snapshot(), func(r UsageRecord) bool {
		return r.Timestamp.Year() == year && r.Timestamp.Month() == month
	})
}

// BudgetStatus reports percent-used and remaining dollars for both
// windows, with alert flags once percent-used reaches the configured
// threshold, plus the current daily request count.
func (g *Governor) BudgetStatus() BudgetStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rolloverLocked(g.now())

	return BudgetStatus{
		Daily:         windowStatus(g.dailyCost, g.budget.DailyLimitUSD, g.budget.AlertThresholdPercent),
		Monthly:       windowStatus(g.monthlyCost, g.budget.MonthlyLimitUSD, g.budget.AlertThresholdPercent),
		RequestsToday: g.dailyRequests,
	}
}

// UpdateBudget validates and applies a replacement budget configuration.
// An invalid configuration is rejected whole; no field is applied.
func (g *Governor) UpdateBudget(cfg BudgetConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	g.budget = cfg
	g.mu.Unlock()

	g.logger.Info("budget configuration replaced",
		"daily_limit_usd", cfg.DailyLimitUSD,
		"monthly_limit_usd", cfg.MonthlyLimitUSD,
		"per_request_limit_usd", cfg.PerRequestLimitUSD,
	)
	return nil
}

// UpdateRateLimit validates and applies a replacement rate configuration.
// The bucket is resized with its level clamped into the new capacity and
// the gate limit is adjusted; in-flight calls are unaffected.
func (g *Governor) UpdateRateLimit(cfg RateLimitConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	g.rate = cfg
	g.bucket.resize(cfg.RequestsPerMinute)
	g.mu.Unlock()

	g.gate.SetLimit(cfg.ConcurrentRequests)

	g.logger.Info("rate limit configuration replaced",
		"requests_per_minute", cfg.RequestsPerMinute,
		"requests_per_day", cfg.RequestsPerDay,
		"concurrent_requests", cfg.ConcurrentRequests,
	)
	return nil
}

// RateLimit returns the current rate configuration snapshot.
func (g *Governor) RateLimit() RateLimitConfig {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rate
}

// Budget returns the current budget configuration snapshot.
func (g *Governor) Budget() BudgetConfig {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.budget
}

// Ledger exposes the usage ledger for external persistence jobs.
func (g *Governor) Ledger() *Ledger {
	return g.ledger
}

// ResetDailyCounters zeroes the daily cost and request counters on
// demand, bypassing the lazy rollover. This is a privileged escape hatch
// for the administrative surface, not part of the normal flow.
func (g *Governor) ResetDailyCounters() {
	g.mu.Lock()
	g.dailyCost = 0
	g.dailyRequests = 0
	g.mu.Unlock()

	g.logger.Warn("daily counters reset administratively")
}

// rolloverLocked zeroes the daily counters when the calendar day has
// changed and the monthly counter when the month has changed. Each reset
// fires exactly once per boundary. Caller must hold g.mu.
func (g *Governor) rolloverLocked(now time.Time) {
	if now.Day() != g.resetDay {
		g.dailyCost = 0
		g.dailyRequests = 0
		g.resetDay = now.Day()
	}
	if now.Month() != g.resetMonth {
		g.monthlyCost = 0
		g.resetMonth = now.Month()
	}
}

// windowStatus computes the budget position of one window.
func windowStatus(used, limit, alertThreshold float64) WindowStatus {
	percent := used / limit * 100
	return WindowStatus{
		UsedUSD:      used,
		LimitUSD:     limit,
		PercentUsed:  percent,
		RemainingUSD: limit - used,
		Alert:        percent >= alertThreshold,
	}
}

// summarize aggregates the records accepted by the filter.
func summarize(records []UsageRecord, include func(UsageRecord) bool) CostSummary {
	summary := CostSummary{
		ByModel:    make(map[string]float64),
		ByProvider: make(map[string]float64),
	}

	for _, r := range records {
		if !include(r) {
			continue
		}
		summary.TotalCostUSD += r.CostUSD
		summary.TotalRequests++
		summary.TotalInputTokens += r.InputTokens
		summary.TotalOutputTokens += r.OutputTokens
		summary.ByModel[r.Model] += r.CostUSD
		summary.ByProvider[r.Provider] += r.CostUSD
	}

	return summary
}
