package settings

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	require.NoError(t, err)

	return db
}

func newTestRepository(t *testing.T) *Repository {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewRepository(setupTestDB(t), log)
}

func TestRepository_GetMissingReturnsNil(t *testing.T) {
	repo := newTestRepository(t)

	value, err := repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRepository_SetAndGet(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Set(KeyDefaultScoreThreshold, "85"))

	value, err := repo.Get(KeyDefaultScoreThreshold)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "85", *value)
}

func TestRepository_SetOverwrites(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Set("k", "one"))
	require.NoError(t, repo.Set("k", "two"))

	value, err := repo.Get("k")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "two", *value)
}

func TestRepository_GetAll(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Set("a", "1"))
	require.NoError(t, repo.Set("b", "2"))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)
}

func TestRepository_GetInt(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.GetInt("missing", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	require.NoError(t, repo.SetInt("threshold", 85))
	got, err = repo.GetInt("threshold", 42)
	require.NoError(t, err)
	assert.Equal(t, 85, got)

	// Float-formatted values still parse as ints
	require.NoError(t, repo.Set("float_style", "12.0"))
	got, err = repo.GetInt("float_style", 42)
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	// Garbage falls back to the default
	require.NoError(t, repo.Set("garbage", "not-a-number"))
	got, err = repo.GetInt("garbage", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRepository_GetFloat(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.GetFloat("missing", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)

	require.NoError(t, repo.SetFloat("ratio", 0.25))
	got, err = repo.GetFloat("ratio", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)
}

func TestRepository_GetBool(t *testing.T) {
	repo := newTestRepository(t)

	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"banana", false},
	}

	for _, tt := range tests {
		require.NoError(t, repo.Set("flag", tt.value))
		got, err := repo.GetBool("flag", false)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "value %q", tt.value)
	}

	got, err := repo.GetBool("missing", true)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Set("k", "v"))
	require.NoError(t, repo.Delete("k"))

	value, err := repo.Get("k")
	require.NoError(t, err)
	assert.Nil(t, value)

	// Idempotent
	require.NoError(t, repo.Delete("k"))
}
