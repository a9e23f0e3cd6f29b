package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/reliability"
)

// uploadTimeout bounds a single archive upload.
const uploadTimeout = 10 * time.Minute

// BackupJob creates a local backup archive and, when cloud replication is
// configured, uploads it to the object store.
type BackupJob struct {
	backups      *reliability.BackupService
	cloud        *reliability.CloudBackupService // nil when S3 is not configured
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewBackupJob creates a backup job. cloud may be nil.
func NewBackupJob(
	backups *reliability.BackupService,
	cloud *reliability.CloudBackupService,
	eventManager *events.Manager,
	log zerolog.Logger,
) *BackupJob {
	return &BackupJob{
		backups:      backups,
		cloud:        cloud,
		eventManager: eventManager,
		log:          log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run creates the archive and replicates it when a cloud service is present.
func (j *BackupJob) Run() error {
	archive, err := j.backups.CreateArchive()
	if err != nil {
		return err
	}

	uploaded := false
	if j.cloud != nil {
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()

		if err := j.cloud.UploadArchive(ctx, archive); err != nil {
			return err
		}
		uploaded = true
	}

	j.eventManager.EmitTyped(events.BackupCompleted, "scheduler", &events.BackupCompletedData{
		Archive:   archive.Filename,
		SizeBytes: archive.SizeBytes,
		Uploaded:  uploaded,
	})

	return nil
}
