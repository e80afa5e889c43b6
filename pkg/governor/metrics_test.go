package governor

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetrics_Registration(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	clock := newFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	g, err := New(testRate(), testBudget(), WithClock(clock.Now), WithMetrics(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	g.Acquire()
	g.CheckBudget(0.5)
	g.TryAcquireSlot()
	g.RecordUsage("openai", "gpt-4", 1000, 500, "redteam")
	g.ReleaseSlot()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	want := map[string]bool{
		"argus_governor_acquires_total":       false,
		"argus_governor_budget_checks_total":  false,
		"argus_governor_usage_cost_usd_total": false,
		"argus_governor_spend_usd":            false,
		"argus_governor_in_flight_requests":   false,
	}
	for _, fam := range families {
		if _, ok := want[fam.GetName()]; ok {
			want[fam.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric family %q not registered", name)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	g, err := New(testRate(), testBudget(), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// No metrics attached: every instrumented path must still work.
	g.Acquire()
	g.CheckBudget(0.5)
	g.TryAcquireSlot()
	g.RecordUsage("openai", "gpt-4", 100, 100, "")
	g.ReleaseSlot()
	g.BudgetStatus()
}
