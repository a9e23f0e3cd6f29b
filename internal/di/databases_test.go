package di

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donkruger/share-transfer-template-sub000/internal/config"
)

func TestInitializeDatabases(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &config.Config{
		DataDir: tmpDir,
	}

	log := zerolog.Nop()

	container, err := InitializeDatabases(cfg, log)
	require.NoError(t, err)
	require.NotNil(t, container)
	t.Cleanup(container.Close)

	// Verify all 4 databases are initialized
	assert.NotNil(t, container.UniverseDB)
	assert.NotNil(t, container.SessionsDB)
	assert.NotNil(t, container.ConfigDB)
	assert.NotNil(t, container.CacheDB)

	// Verify database files are created
	assert.FileExists(t, filepath.Join(tmpDir, "universe.db"))
	assert.FileExists(t, filepath.Join(tmpDir, "sessions.db"))
	assert.FileExists(t, filepath.Join(tmpDir, "config.db"))
	assert.FileExists(t, filepath.Join(tmpDir, "cache.db"))
}

func TestInitializeDatabases_InvalidPath(t *testing.T) {
	cfg := &config.Config{
		DataDir: "/nonexistent/path/that/does/not/exist",
	}

	log := zerolog.Nop()

	container, err := InitializeDatabases(cfg, log)
	assert.Error(t, err)
	assert.Nil(t, container)
}

func TestInitializeDatabases_SchemaMigration(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &config.Config{
		DataDir: tmpDir,
	}

	log := zerolog.Nop()

	container, err := InitializeDatabases(cfg, log)
	require.NoError(t, err)
	require.NotNil(t, container)
	t.Cleanup(container.Close)

	// Schemas are applied; the tables the repositories depend on exist
	_, err = container.UniverseDB.Conn().Exec("SELECT COUNT(*) FROM instruments")
	assert.NoError(t, err)

	_, err = container.SessionsDB.Conn().Exec("SELECT COUNT(*) FROM sessions")
	assert.NoError(t, err)

	_, err = container.ConfigDB.Conn().Exec("SELECT COUNT(*) FROM settings")
	assert.NoError(t, err)

	_, err = container.CacheDB.Conn().Exec("SELECT COUNT(*) FROM job_history")
	assert.NoError(t, err)
}

func TestContainerDatabases(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &config.Config{
		DataDir: tmpDir,
	}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	databases := container.Databases()
	assert.Len(t, databases, 4)
	assert.Same(t, container.UniverseDB, databases["universe"])
	assert.Same(t, container.SessionsDB, databases["sessions"])
	assert.Same(t, container.ConfigDB, databases["config"])
	assert.Same(t, container.CacheDB, databases["cache"])
}
