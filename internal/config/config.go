// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/donkruger/share-transfer-template-sub000/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for all databases (always absolute)
	WalletsFile     string // Path to the wallet directory YAML file
	LogLevel        string
	Port            int
	DevMode         bool
	ScoreThreshold  int // Default fuzzy-match score threshold (0-100)
	MaxResults      int // Default search result cap
	SessionTTLHours int // Idle hours before a session expires
	Backup          *BackupConfig
}

// BackupConfig holds backup and off-site replication configuration
type BackupConfig struct {
	Enabled     bool
	Dir         string // Local backup directory (defaults to DataDir/backups)
	Keep        int    // Number of local archives to retain
	S3Enabled   bool
	S3Endpoint  string // Custom endpoint for S3-compatible storage, empty for AWS
	S3Region    string
	S3Bucket    string
	S3Prefix    string
	S3AccessKey string
	S3SecretKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Resolve the data directory to an absolute path and make sure it exists
	dataDir := getEnv("SELECTOR_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		WalletsFile:     getEnv("SELECTOR_WALLETS_FILE", filepath.Join(absDataDir, "wallets.yml")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnvAsInt("SELECTOR_PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		ScoreThreshold:  getEnvAsInt("SELECTOR_SCORE_THRESHOLD", 80),
		MaxResults:      getEnvAsInt("SELECTOR_MAX_RESULTS", 20),
		SessionTTLHours: getEnvAsInt("SELECTOR_SESSION_TTL_HOURS", 24),
		Backup:          loadBackupConfig(absDataDir),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UpdateFromSettings overrides tunable values from the settings database.
// This should be called after the config database is initialized.
// Settings DB values take precedence over environment variables.
func (c *Config) UpdateFromSettings(settingsRepo *settings.Repository) error {
	threshold, err := settingsRepo.GetInt(settings.KeyDefaultScoreThreshold, c.ScoreThreshold)
	if err != nil {
		return fmt.Errorf("failed to get default_score_threshold from settings: %w", err)
	}
	c.ScoreThreshold = threshold

	maxResults, err := settingsRepo.GetInt(settings.KeyDefaultMaxResults, c.MaxResults)
	if err != nil {
		return fmt.Errorf("failed to get default_max_results from settings: %w", err)
	}
	c.MaxResults = maxResults

	ttl, err := settingsRepo.GetInt(settings.KeySessionTTLHours, c.SessionTTLHours)
	if err != nil {
		return fmt.Errorf("failed to get session_ttl_hours from settings: %w", err)
	}
	c.SessionTTLHours = ttl

	return c.Validate()
}

// Validate checks configuration bounds
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 100 {
		return fmt.Errorf("score threshold must be within 0-100, got %d", c.ScoreThreshold)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max results must be positive, got %d", c.MaxResults)
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("session TTL must be at least one hour, got %d", c.SessionTTLHours)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// loadBackupConfig loads backup configuration from the environment
func loadBackupConfig(dataDir string) *BackupConfig {
	return &BackupConfig{
		Enabled:     getEnvAsBool("BACKUP_ENABLED", true),
		Dir:         getEnv("BACKUP_DIR", filepath.Join(dataDir, "backups")),
		Keep:        getEnvAsInt("BACKUP_KEEP", 7),
		S3Enabled:   getEnvAsBool("BACKUP_S3_ENABLED", false),
		S3Endpoint:  getEnv("BACKUP_S3_ENDPOINT", ""),
		S3Region:    getEnv("BACKUP_S3_REGION", "auto"),
		S3Bucket:    getEnv("BACKUP_S3_BUCKET", ""),
		S3Prefix:    getEnv("BACKUP_S3_PREFIX", "backups/"),
		S3AccessKey: getEnv("BACKUP_S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("BACKUP_S3_SECRET_KEY", ""),
	}
}
