package governor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus instrumentation for the governor. All
// Governor call sites tolerate a nil *Metrics, so instrumentation is
// strictly opt-in.
type Metrics struct {
	acquires     *prometheus.CounterVec
	budgetChecks *prometheus.CounterVec
	usageCost    *prometheus.CounterVec
	usageTokens  *prometheus.CounterVec
	spendUSD     *prometheus.GaugeVec
	inFlight     prometheus.Gauge
	waitDuration prometheus.Histogram
}

// NewMetrics creates governor metrics registered against reg. Pass
// prometheus.DefaultRegisterer for process-wide metrics or a private
// registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		acquires: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "argus_governor_acquires_total",
				Help: "Total admission attempts against the token bucket",
			},
			[]string{"result"},
		),

		budgetChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "argus_governor_budget_checks_total",
				Help: "Total budget checks performed",
			},
			[]string{"result"},
		),

		usageCost: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "argus_governor_usage_cost_usd_total",
				Help: "Accumulated cost of recorded LLM calls in USD",
			},
			[]string{"provider", "model"},
		),

		usageTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "argus_governor_usage_tokens_total",
				Help: "Accumulated token count of recorded LLM calls",
			},
			[]string{"provider", "model"},
		),

		spendUSD: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "argus_governor_spend_usd",
				Help: "Current spend against the budget windows in USD",
			},
			[]string{"window"},
		),

		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "argus_governor_in_flight_requests",
				Help: "LLM calls currently holding a concurrency slot",
			},
		),

		waitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "argus_governor_acquire_wait_seconds",
				Help:    "Time spent waiting in AcquireWithWait",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
	}
}

func (m *Metrics) observeAcquire(admitted bool) {
	if m == nil {
		return
	}
	m.acquires.WithLabelValues(resultLabel(admitted)).Inc()
}

func (m *Metrics) observeBudgetCheck(allowed bool) {
	if m == nil {
		return
	}
	m.budgetChecks.WithLabelValues(resultLabel(allowed)).Inc()
}

func (m *Metrics) observeUsage(provider, model string, cost float64, totalTokens int) {
	if m == nil {
		return
	}
	m.usageCost.WithLabelValues(provider, model).Add(cost)
	m.usageTokens.WithLabelValues(provider, model).Add(float64(totalTokens))
}

func (m *Metrics) setSpend(daily, monthly float64) {
	if m == nil {
		return
	}
	m.spendUSD.WithLabelValues("daily").Set(daily)
	m.spendUSD.WithLabelValues("monthly").Set(monthly)
}

func (m *Metrics) setInFlight(n int64) {
	if m == nil {
		return
	}
	m.inFlight.Set(float64(n))
}

func (m *Metrics) observeWait(d time.Duration) {
	if m == nil {
		return
	}
	m.waitDuration.Observe(d.Seconds())
}

func resultLabel(ok bool) string {
	if ok {
		return "allowed"
	}
	return "rejected"
}
