package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/universe"
)

// UniverseRefreshJob reloads the in-memory instrument cache from the
// universe database. Search matchers rebuild through the reload event.
type UniverseRefreshJob struct {
	cache        *universe.Cache
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewUniverseRefreshJob creates a universe refresh job.
func NewUniverseRefreshJob(cache *universe.Cache, eventManager *events.Manager, log zerolog.Logger) *UniverseRefreshJob {
	return &UniverseRefreshJob{
		cache:        cache,
		eventManager: eventManager,
		log:          log.With().Str("job", "universe_refresh").Logger(),
	}
}

// Name returns the job name
func (j *UniverseRefreshJob) Name() string {
	return "universe_refresh"
}

// Run reloads the cache and announces the new universe snapshot.
func (j *UniverseRefreshJob) Run() error {
	if err := j.cache.Reload(); err != nil {
		return err
	}

	j.eventManager.EmitTyped(events.UniverseReloaded, "scheduler", &events.UniverseReloadedData{
		InstrumentCount: j.cache.Count(),
	})

	return nil
}
