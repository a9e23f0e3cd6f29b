// Package di provides dependency injection for services.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/config"
	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/search"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/sessions"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/universe"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/wallets"
	"github.com/donkruger/share-transfer-template-sub000/internal/reliability"
)

// InitializeServices creates the business logic layer: events, the universe
// cache, wallet filtering, search, the session registry and backup services.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	// Events first; every other service publishes through the manager
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	// Universe cache and importer
	container.UniverseCache = universe.NewCache(container.UniverseRepo, log)
	if err := container.UniverseCache.Reload(); err != nil {
		return fmt.Errorf("failed to load universe cache: %w", err)
	}
	container.UniverseImporter = universe.NewImporter(container.UniverseRepo, log)

	// Wallet directory; a missing file degrades to an empty directory
	directory, err := wallets.LoadDirectory(cfg.WalletsFile, log)
	if err != nil {
		return fmt.Errorf("failed to load wallet directory: %w", err)
	}
	container.WalletEngine = wallets.NewEngine(directory, log)

	// Search over the cached universe
	container.SearchService = search.NewService(container.UniverseCache, container.SettingsRepo, container.EventManager, log)

	// Session registry over the persistent store
	container.SessionRegistry = sessions.NewRegistry(container.SearchService, container.SessionStore, container.SettingsRepo, container.EventManager, log)

	// Local backups over every database
	backupCfg := cfg.Backup
	if backupCfg == nil {
		backupCfg = &config.BackupConfig{}
	}
	backupDir := backupCfg.Dir
	if backupDir == "" {
		backupDir = filepath.Join(cfg.DataDir, "backups")
	}
	container.BackupService = reliability.NewBackupService(container.Databases(), cfg.DataDir, backupDir, log)

	// Off-site replication is optional; only wired when fully configured
	if backupCfg.S3Enabled {
		s3Client, err := reliability.NewS3Client(reliability.S3Config{
			Endpoint:  backupCfg.S3Endpoint,
			Region:    backupCfg.S3Region,
			Bucket:    backupCfg.S3Bucket,
			Prefix:    backupCfg.S3Prefix,
			AccessKey: backupCfg.S3AccessKey,
			SecretKey: backupCfg.S3SecretKey,
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize S3 client - off-site backups disabled")
		} else {
			container.S3Client = s3Client
			container.CloudBackup = reliability.NewCloudBackupService(s3Client, container.BackupService, log)
			log.Info().Str("bucket", backupCfg.S3Bucket).Msg("Off-site backup replication initialized")
		}
	} else {
		log.Debug().Msg("S3 replication not configured - off-site backups disabled")
	}

	log.Info().Msg("Services initialized")

	return nil
}
