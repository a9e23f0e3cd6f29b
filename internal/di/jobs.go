// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/config"
	"github.com/donkruger/share-transfer-template-sub000/internal/scheduler"
)

// Job schedules in six-field cron format (seconds included). Minute offsets
// are staggered so the jobs never contend for the same database.
const (
	sessionCleanupSchedule  = "0 5 * * * *"     // hourly at :05
	walCheckpointSchedule   = "0 15 */6 * * *"  // every 6 hours at :15
	universeRefreshSchedule = "0 30 5 * * *"    // daily at 05:30
	backupSchedule          = "0 30 2 * * *"    // daily at 02:30
	backupRotationSchedule  = "0 30 3 * * *"    // daily at 03:30, after the backup
	historyPruneSchedule    = "0 45 4 * * *"    // daily at 04:45
)

// RegisterJobs creates the scheduler and registers all background jobs.
// Job instances are stored on the container for manual triggering via the API.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.JobHistory = scheduler.NewHistory(container.CacheDB.Conn(), log)
	container.Scheduler = scheduler.New(container.JobHistory, container.EventManager, log)

	// Session cleanup: expire idle selection sessions
	sessionCleanup := scheduler.NewSessionCleanupJob(container.SessionRegistry, log)
	if err := container.Scheduler.AddJob(sessionCleanupSchedule, sessionCleanup); err != nil {
		return fmt.Errorf("failed to schedule session cleanup job: %w", err)
	}
	container.SessionCleanupJob = sessionCleanup

	// WAL checkpoints: keep write-ahead logs from growing unbounded
	walCheckpoint := scheduler.NewWALCheckpointJob(container.Databases(), log)
	if err := container.Scheduler.AddJob(walCheckpointSchedule, walCheckpoint); err != nil {
		return fmt.Errorf("failed to schedule WAL checkpoint job: %w", err)
	}
	container.WALCheckpointJob = walCheckpoint

	// Universe refresh: reload the in-memory cache and rebuild search indexes
	universeRefresh := scheduler.NewUniverseRefreshJob(container.UniverseCache, container.EventManager, log)
	if err := container.Scheduler.AddJob(universeRefreshSchedule, universeRefresh); err != nil {
		return fmt.Errorf("failed to schedule universe refresh job: %w", err)
	}
	container.UniverseRefreshJob = universeRefresh

	// History prune: keep the job_history table bounded
	historyPrune := scheduler.NewHistoryPruneJob(container.JobHistory, scheduler.DefaultHistoryRetention, log)
	if err := container.Scheduler.AddJob(historyPruneSchedule, historyPrune); err != nil {
		return fmt.Errorf("failed to schedule history prune job: %w", err)
	}

	// Backup jobs only run when backups are enabled
	if cfg.Backup != nil && cfg.Backup.Enabled {
		backup := scheduler.NewBackupJob(container.BackupService, container.CloudBackup, container.EventManager, log)
		if err := container.Scheduler.AddJob(backupSchedule, backup); err != nil {
			return fmt.Errorf("failed to schedule backup job: %w", err)
		}
		container.BackupJob = backup

		rotation := scheduler.NewBackupRotationJob(container.BackupService, container.CloudBackup, cfg.Backup.Keep, log)
		if err := container.Scheduler.AddJob(backupRotationSchedule, rotation); err != nil {
			return fmt.Errorf("failed to schedule backup rotation job: %w", err)
		}
		container.BackupRotationJob = rotation
	} else {
		log.Info().Msg("Backups disabled - backup jobs not scheduled")
	}

	log.Info().Msg("Scheduler jobs registered")

	return nil
}
