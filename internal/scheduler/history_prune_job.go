package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultHistoryRetention is how long job run records are kept before the
// prune job removes them.
const DefaultHistoryRetention = 30 * 24 * time.Hour

// HistoryPruneJob deletes job run records older than the retention window.
// Without it the job_history table grows without bound on long-lived
// deployments.
type HistoryPruneJob struct {
	history   *History
	retention time.Duration
	log       zerolog.Logger
}

// NewHistoryPruneJob creates a history prune job. A non-positive retention
// falls back to DefaultHistoryRetention.
func NewHistoryPruneJob(history *History, retention time.Duration, log zerolog.Logger) *HistoryPruneJob {
	if retention <= 0 {
		retention = DefaultHistoryRetention
	}
	return &HistoryPruneJob{
		history:   history,
		retention: retention,
		log:       log.With().Str("job", "history_prune").Logger(),
	}
}

// Name returns the job name
func (j *HistoryPruneJob) Name() string {
	return "history_prune"
}

// Run removes run records older than the retention window.
func (j *HistoryPruneJob) Run() error {
	pruned, err := j.history.Prune(j.retention)
	if err != nil {
		return err
	}

	if pruned > 0 {
		j.log.Info().Int64("pruned", pruned).Msg("Old job history pruned")
	}

	return nil
}
