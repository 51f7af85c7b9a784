package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	stalePickupJob *StalePickupJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(sweepHandler SweepHandler, sweepSchedule string, logger *slog.Logger) *JobManager {
	return &JobManager{
		stalePickupJob: NewStalePickupJob(sweepHandler, sweepSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.stalePickupJob.Start(); err != nil {
		return fmt.Errorf("failed to start stale pickup job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.stalePickupJob.Stop()
}
