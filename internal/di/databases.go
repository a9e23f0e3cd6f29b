// Package di provides dependency injection for database connections.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/config"
	"github.com/donkruger/share-transfer-template-sub000/internal/database"
)

// InitializeDatabases initializes all 4 databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{Log: log}

	// 1. universe.db - Instrument universe
	universeDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "universe.db"),
		Profile: database.ProfileStandard,
		Name:    "universe",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize universe database: %w", err)
	}
	container.UniverseDB = universeDB

	// 2. sessions.db - Sessions and persisted selection snapshots
	sessionsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "sessions.db"),
		Profile: database.ProfileStandard,
		Name:    "sessions",
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize sessions database: %w", err)
	}
	container.SessionsDB = sessionsDB

	// 3. config.db - Settings key-value store
	configDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "config.db"),
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize config database: %w", err)
	}
	container.ConfigDB = configDB

	// 4. cache.db - Ephemeral operational data (job history)
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache, // Maximum speed for ephemeral data
		Name:    "cache",
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	// Apply schemas to all databases (single source of truth)
	for _, db := range []*database.DB{universeDB, sessionsDB, configDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Msg("All databases initialized and schemas applied")

	return container, nil
}
