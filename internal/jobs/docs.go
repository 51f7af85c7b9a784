// Package jobs provides scheduled background tasks for the fulfillment system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the fulfillment service.
//
// # Available Jobs
//
// 1. StalePickupJob - Sweeps shelf assignments that customers never collected,
// escalating stale ones and force-shipping those past the forced-ship age
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(sweepHandler, "0 * * * *", logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The sweep schedule comes from configuration as a standard 5-field cron
// expression; hourly is the expected cadence.
//
// # Error Handling
//
// - A sweep that is still running when the next tick fires causes the tick to
// be skipped rather than queued; sweeps never overlap
// - Per-assignment failures inside a sweep are counted and logged by the
// command handler without aborting the rest of the sweep
// - Failed job starts are returned to the caller so startup can abort
package jobs
