// Package settings manages runtime configuration stored in config.db.
//
// Settings are key-value pairs that take precedence over environment
// variables, so operators can retune the service (score threshold, result
// limits, session TTL) without restarting it. Values are stored as strings
// and converted on read.
package settings

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Well-known setting keys.
const (
	KeyDefaultScoreThreshold = "default_score_threshold"
	KeyDefaultMaxResults     = "default_max_results"
	KeySessionTTLHours       = "session_ttl_hours"
	KeyTickerScoreFloor      = "ticker_score_floor"
	KeyISINScoreFloor        = "isin_score_floor"
)

// Repository handles settings database operations against config.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new settings repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get retrieves a setting value by key. Returns nil if the setting does not
// exist; a missing setting is not an error.
func (r *Repository) Get(key string) (*string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &value, nil
}

// Set stores a setting value, inserting or updating as needed.
func (r *Repository) Set(key, value string) error {
	now := time.Now().Unix()

	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, now)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetAll retrieves every setting as a map.
func (r *Repository) GetAll() (map[string]string, error) {
	rows, err := r.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to get all settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan setting row")
			continue
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return result, nil
}

// GetInt retrieves a setting as an integer, returning defaultValue when the
// setting is missing or unparseable. Values like "12.0" parse via float
// first so numeric settings written by other tools still round-trip.
func (r *Repository) GetInt(key string, defaultValue int) (int, error) {
	value, err := r.Get(key)
	if err != nil {
		return defaultValue, err
	}
	if value == nil {
		return defaultValue, nil
	}

	floatVal, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("key", key).
			Str("value", *value).
			Msg("Failed to parse int setting")
		return defaultValue, nil
	}

	return int(floatVal), nil
}

// SetInt stores an integer setting.
func (r *Repository) SetInt(key string, value int) error {
	return r.Set(key, strconv.Itoa(value))
}

// GetFloat retrieves a setting as float64, returning defaultValue when the
// setting is missing or unparseable.
func (r *Repository) GetFloat(key string, defaultValue float64) (float64, error) {
	value, err := r.Get(key)
	if err != nil {
		return defaultValue, err
	}
	if value == nil {
		return defaultValue, nil
	}

	floatVal, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("key", key).
			Str("value", *value).
			Msg("Failed to parse float setting")
		return defaultValue, nil
	}

	return floatVal, nil
}

// SetFloat stores a float setting.
func (r *Repository) SetFloat(key string, value float64) error {
	return r.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// GetBool retrieves a setting as a boolean, returning defaultValue when the
// setting is missing. "true", "1", "yes" and "on" are truthy,
// case-insensitively; everything else is false.
func (r *Repository) GetBool(key string, defaultValue bool) (bool, error) {
	value, err := r.Get(key)
	if err != nil {
		return defaultValue, err
	}
	if value == nil {
		return defaultValue, nil
	}

	switch strings.ToLower(strings.TrimSpace(*value)) {
	case "true", "1", "yes", "on":
		return true, nil
	}
	return false, nil
}

// SetBool stores a boolean setting as "true" or "false".
func (r *Repository) SetBool(key string, value bool) error {
	if value {
		return r.Set(key, "true")
	}
	return r.Set(key, "false")
}

// Delete removes a setting. Deleting a missing key is not an error.
func (r *Repository) Delete(key string) error {
	_, err := r.db.Exec("DELETE FROM settings WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
