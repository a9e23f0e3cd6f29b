package universe

import (
	"fmt"
	"sync"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// Cache holds the instrument table in memory for the search stack.
//
// Searches treat the table as immutable, so Reload swaps in a fresh slice
// rather than mutating the existing one; matchers already built over the
// old slice keep a consistent snapshot until they are rebuilt.
type Cache struct {
	repo *Repository
	log  zerolog.Logger

	mu          sync.RWMutex
	instruments []domain.Instrument
	loadedAt    time.Time
}

// NewCache creates an empty cache over the repository. Call Reload before
// first use.
func NewCache(repo *Repository, log zerolog.Logger) *Cache {
	return &Cache{
		repo: repo,
		log:  log.With().Str("component", "universe_cache").Logger(),
	}
}

// Reload replaces the cached table with the current database contents.
func (c *Cache) Reload() error {
	timer := utils.NewTimer("universe_cache_reload", c.log)
	defer timer.Stop()

	instruments, err := c.repo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to reload universe cache: %w", err)
	}

	c.mu.Lock()
	c.instruments = instruments
	c.loadedAt = time.Now().UTC()
	c.mu.Unlock()

	c.log.Info().Int("count", len(instruments)).Msg("Universe cache reloaded")
	return nil
}

// Instruments returns a copy of the cached table.
func (c *Cache) Instruments() []domain.Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Instrument, len(c.instruments))
	copy(out, c.instruments)
	return out
}

// Count returns the number of cached instruments.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instruments)
}

// LoadedAt returns when the cache was last reloaded, zero if never.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
