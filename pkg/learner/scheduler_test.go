package learner

import (
	"context"
	"testing"
	"time"
)

// ============================================================
// Maintenance scheduler
// ============================================================

func TestScheduler_StartStop(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())
	s := NewScheduler(l, DefaultSchedulerConfig())

	if s.IsRunning() {
		t.Error("scheduler running before Start")
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Error("scheduler not running after Start")
	}

	next := s.NextRun()
	if next == nil {
		t.Fatal("NextRun() = nil with schedules configured")
	}
	if !next.After(time.Now().Add(-time.Second)) {
		t.Errorf("NextRun() = %v, should be in the future", next)
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler still running after Stop")
	}

	// Stop is idempotent.
	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())

	tests := []struct {
		name   string
		config SchedulerConfig
	}{
		{name: "bad save schedule", config: SchedulerConfig{SaveSchedule: "not a cron"}},
		{name: "bad prune schedule", config: SchedulerConfig{PruneSchedule: "99 99 * * *"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(l, tt.config)
			if err := s.Start(context.Background()); err == nil {
				s.Stop()
				t.Error("expected error for invalid schedule")
			}
			if s.IsRunning() {
				t.Error("scheduler running after failed Start")
			}
		})
	}
}

func TestScheduler_EmptySchedules(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())
	s := NewScheduler(l, SchedulerConfig{})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() with empty schedules error = %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should stay idle with no schedules")
	}
}

func TestScheduler_ContextCancelStops(t *testing.T) {
	l := New(context.Background(), nil, DefaultConfig())
	s := NewScheduler(l, DefaultSchedulerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	cancel()

	deadline := time.After(2 * time.Second)
	for s.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("scheduler did not stop after context cancel")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
