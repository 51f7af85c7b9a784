package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// SweepHandler is the slice of the sweep command handler the job needs.
type SweepHandler interface {
	Handle(ctx context.Context, cmd commands.SweepStalePickupsCommand) (commands.SweepResult, error)
}

// StalePickupJob periodically sweeps shelf assignments that customers never
// collected. A sweep can outlive the cron interval when many assignments need
// forced shipments, so an atomic running flag guarantees sweeps never overlap;
// a tick that finds a sweep in flight is skipped.
type StalePickupJob struct {
	handler  SweepHandler
	schedule string
	cron     *cron.Cron
	running  atomic.Bool
	logger   *slog.Logger
}

// NewStalePickupJob creates the sweep job with a standard 5-field cron
// schedule, e.g. "0 * * * *" for hourly.
func NewStalePickupJob(handler SweepHandler, schedule string, logger *slog.Logger) *StalePickupJob {
	return &StalePickupJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "stale_pickup_job"),
	}
}

// Start schedules the sweep.
func (j *StalePickupJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.RunOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale pickup job started", "schedule", j.schedule)
	return nil
}

// RunOnce executes one sweep unless a previous sweep is still running.
func (j *StalePickupJob) RunOnce() {
	if !j.running.CompareAndSwap(false, true) {
		j.logger.InfoContext(context.Background(), "Previous sweep still running, tick skipped")
		return
	}
	defer j.running.Store(false)

	ctx := context.Background()

	cmd, err := commands.NewSweepStalePickupsCommand(time.Now())
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to build sweep command", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Stale pickup sweep failed", "error", err)
		return
	}

	if result.Escalated > 0 || result.Forced > 0 || result.Failed > 0 {
		j.logger.InfoContext(ctx, "Stale pickup sweep completed",
			"escalated", result.Escalated, "forced", result.Forced, "failed", result.Failed)
	}
}

// Stop stops the sweep schedule.
func (j *StalePickupJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale pickup job stopped")
}
