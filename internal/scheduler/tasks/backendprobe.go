// Package tasks holds the scheduled background jobs.
package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/anivibe/anivibe/internal/config"
	"github.com/anivibe/anivibe/internal/scheduler"
)

// BackendProbeTaskID identifies the backend probe in the scheduler.
const BackendProbeTaskID = "backend-probe"

// Checker runs one health check.
type Checker interface {
	Check(ctx context.Context) error
}

// BackendProbeTask pings the metadata API so the health service knows
// whether pages can load.
type BackendProbeTask struct {
	checker Checker
	logger  zerolog.Logger
}

// NewBackendProbeTask creates a new backend probe task.
func NewBackendProbeTask(checker Checker, logger zerolog.Logger) *BackendProbeTask {
	return &BackendProbeTask{
		checker: checker,
		logger:  logger.With().Str("task", BackendProbeTaskID).Logger(),
	}
}

// Run executes the probe.
func (t *BackendProbeTask) Run(ctx context.Context) error {
	if err := t.checker.Check(ctx); err != nil {
		t.logger.Warn().Err(err).Msg("Backend unreachable")
		return err
	}
	t.logger.Debug().Msg("Backend reachable")
	return nil
}

// RegisterBackendProbeTask registers the probe with the scheduler.
func RegisterBackendProbeTask(
	sched *scheduler.Scheduler,
	checker Checker,
	cfg *config.SchedulerConfig,
	logger zerolog.Logger,
) error {
	task := NewBackendProbeTask(checker, logger)

	cron := cfg.BackendProbeCron
	if cron == "" {
		cron = config.DefaultBackendProbeCron
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          BackendProbeTaskID,
		Name:        "Backend Probe",
		Description: "Checks that the metadata API is reachable",
		Cron:        cron,
		RunOnStart:  true,
		Func:        task.Run,
	})
}
