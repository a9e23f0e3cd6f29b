package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/database"
)

// WALCheckpointJob monitors WAL growth across all databases and forces a
// checkpoint when a WAL file grows too large.
type WALCheckpointJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a WAL checkpoint job over the given databases.
func NewWALCheckpointJob(databases map[string]*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checks WAL checkpoint status on every database.
func (j *WALCheckpointJob) Run() error {
	checked := 0
	for name, db := range j.databases {
		if db == nil {
			continue
		}

		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, walFrames, checkpointed int
		err := db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &walFrames, &checkpointed)
		if err != nil {
			j.log.Warn().
				Err(err).
				Str("database", name).
				Msg("Failed to check WAL checkpoint")
			continue
		}

		if walFrames > 1000 {
			j.log.Warn().
				Str("database", name).
				Int("wal_frames", walFrames).
				Int("checkpointed", checkpointed).
				Msg("WAL file is large, forcing truncating checkpoint")

			if err := db.WALCheckpoint("TRUNCATE"); err != nil {
				j.log.Warn().Err(err).Str("database", name).Msg("Forced checkpoint failed")
			}
		} else {
			j.log.Debug().
				Str("database", name).
				Int("wal_frames", walFrames).
				Msg("WAL checkpoint status OK")
		}

		checked++
	}

	j.log.Debug().Int("checked", checked).Msg("WAL checkpoint check completed")

	return nil
}
