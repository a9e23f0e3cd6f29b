package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/reliability"
)

// BackupRotationJob prunes old archives locally and, when cloud replication
// is configured, in the object store.
type BackupRotationJob struct {
	backups *reliability.BackupService
	cloud   *reliability.CloudBackupService // nil when S3 is not configured
	keep    int
	log     zerolog.Logger
}

// NewBackupRotationJob creates a rotation job keeping the most recent
// archives. cloud may be nil.
func NewBackupRotationJob(
	backups *reliability.BackupService,
	cloud *reliability.CloudBackupService,
	keep int,
	log zerolog.Logger,
) *BackupRotationJob {
	return &BackupRotationJob{
		backups: backups,
		cloud:   cloud,
		keep:    keep,
		log:     log.With().Str("job", "backup_rotation").Logger(),
	}
}

// Name returns the job name
func (j *BackupRotationJob) Name() string {
	return "backup_rotation"
}

// Run rotates local archives first, then remote ones.
func (j *BackupRotationJob) Run() error {
	deleted, err := j.backups.RotateArchives(j.keep)
	if err != nil {
		return err
	}
	if deleted > 0 {
		j.log.Info().Int("deleted", deleted).Msg("Local archives rotated")
	}

	if j.cloud != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := j.cloud.RotateRemote(ctx, j.keep); err != nil {
			return err
		}
	}

	return nil
}
