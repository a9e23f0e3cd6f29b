/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application
 * dependencies. The Container is the single source of truth for all service
 * instances and is passed to the server for access to services.
 */
package di

import (
	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/database"
	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/search"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/sessions"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/settings"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/universe"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/wallets"
	"github.com/donkruger/share-transfer-template-sub000/internal/reliability"
	"github.com/donkruger/share-transfer-template-sub000/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Created by Wire() and passed to the HTTP server. Databases use SQLite with
 * WAL mode and profile-specific PRAGMAs; services are wired via constructor
 * injection.
 */
type Container struct {
	// Databases (4-database architecture)
	UniverseDB *database.DB // Instrument universe
	SessionsDB *database.DB // Sessions and persisted selection snapshots
	ConfigDB   *database.DB // Settings key-value store
	CacheDB    *database.DB // Ephemeral operational data (job history)

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Repositories - data access layer
	UniverseRepo *universe.Repository
	SettingsRepo *settings.Repository
	SessionStore *sessions.Store

	// Services - business logic layer
	UniverseCache    *universe.Cache
	UniverseImporter *universe.Importer
	WalletEngine     *wallets.Engine
	SearchService    *search.Service
	SessionRegistry  *sessions.Registry

	// Reliability
	BackupService *reliability.BackupService
	S3Client      *reliability.S3Client           // nil unless S3 replication is configured
	CloudBackup   *reliability.CloudBackupService // nil unless S3 replication is configured

	// Background jobs
	JobHistory *scheduler.History
	Scheduler  *scheduler.Scheduler

	// Job instances for manual triggering via the API
	SessionCleanupJob  scheduler.Job
	BackupJob          scheduler.Job
	BackupRotationJob  scheduler.Job
	UniverseRefreshJob scheduler.Job
	WALCheckpointJob   scheduler.Job

	Log zerolog.Logger
}

// Databases returns the managed databases keyed by name.
func (c *Container) Databases() map[string]*database.DB {
	return map[string]*database.DB{
		"universe": c.UniverseDB,
		"sessions": c.SessionsDB,
		"config":   c.ConfigDB,
		"cache":    c.CacheDB,
	}
}

// Close closes every open database. Safe to call with partially
// initialized containers.
func (c *Container) Close() {
	for _, db := range []*database.DB{c.UniverseDB, c.SessionsDB, c.ConfigDB, c.CacheDB} {
		if db != nil {
			_ = db.Close()
		}
	}
}
