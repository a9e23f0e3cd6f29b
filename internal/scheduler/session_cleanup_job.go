package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/modules/sessions"
)

// SessionCleanupJob expires sessions idle past their TTL.
type SessionCleanupJob struct {
	registry *sessions.Registry
	log      zerolog.Logger
}

// NewSessionCleanupJob creates a session cleanup job.
func NewSessionCleanupJob(registry *sessions.Registry, log zerolog.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{
		registry: registry,
		log:      log.With().Str("job", "session_cleanup").Logger(),
	}
}

// Name returns the job name
func (j *SessionCleanupJob) Name() string {
	return "session_cleanup"
}

// Run removes expired sessions from the registry and the store.
func (j *SessionCleanupJob) Run() error {
	removed, err := j.registry.CleanupExpired()
	if err != nil {
		return err
	}

	if removed > 0 {
		j.log.Info().Int("removed", removed).Msg("Expired sessions cleaned up")
	}

	return nil
}
