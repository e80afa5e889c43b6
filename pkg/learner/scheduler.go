package learner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerConfig contains the maintenance schedules.
type SchedulerConfig struct {
	// SaveSchedule is the cron expression for periodic pattern
	// persistence. Empty disables scheduled saves.
	SaveSchedule string `yaml:"save_schedule" json:"save_schedule"`

	// PruneSchedule is the cron expression for feedback-history
	// pruning. Empty disables scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule" json:"prune_schedule"`
}

// DefaultSchedulerConfig saves every 15 minutes and prunes daily at 3 AM.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		SaveSchedule:  "*/15 * * * *",
		PruneSchedule: "0 3 * * *",
	}
}

// Scheduler runs learner maintenance on cron schedules: periodic
// pattern persistence and feedback-history pruning.
type Scheduler struct {
	learner *Learner
	config  SchedulerConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a maintenance scheduler for the learner.
func NewScheduler(l *Learner, config SchedulerConfig) *Scheduler {
	return &Scheduler{
		learner: l,
		config:  config,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "learner.scheduler"),
	}
}

// Start begins the scheduled maintenance. With both schedules empty the
// scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.SaveSchedule == "" && s.config.PruneSchedule == "" {
		s.logger.Info("no maintenance schedules configured, skipping scheduler")
		return nil
	}

	if s.config.SaveSchedule != "" {
		if _, err := cron.ParseStandard(s.config.SaveSchedule); err != nil {
			return fmt.Errorf("invalid save schedule %q: %w", s.config.SaveSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.config.SaveSchedule, func() {
			s.runSave(ctx)
		}); err != nil {
			return fmt.Errorf("failed to schedule pattern save: %w", err)
		}
	}

	if s.config.PruneSchedule != "" {
		if _, err := cron.ParseStandard(s.config.PruneSchedule); err != nil {
			return fmt.Errorf("invalid prune schedule %q: %w", s.config.PruneSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.config.PruneSchedule, s.runPrune); err != nil {
			return fmt.Errorf("failed to schedule history pruning: %w", err)
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("learner scheduler started",
		"save_schedule", s.config.SaveSchedule,
		"prune_schedule", s.config.PruneSchedule,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSave executes a persistence cycle.
func (s *Scheduler) runSave(ctx context.Context) {
	if err := s.learner.SavePatterns(ctx); err != nil {
		s.logger.Error("scheduled pattern save failed", "error", err)
	}
}

// runPrune executes a history pruning cycle.
func (s *Scheduler) runPrune() {
	dropped := s.learner.PruneHistory()
	if dropped > 0 {
		s.logger.Info("scheduled history pruning completed", "dropped", dropped)
	} else {
		s.logger.Debug("scheduled history pruning completed, nothing to drop")
	}
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("learner scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled maintenance time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return &next
}
