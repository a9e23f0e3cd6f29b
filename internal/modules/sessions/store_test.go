package sessions

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func setupSessionsDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			last_active INTEGER NOT NULL,
			score_threshold INTEGER NOT NULL,
			selections BLOB
		)
	`)
	require.NoError(t, err)

	return db
}

func newTestStore(t *testing.T) *Store {
	return NewStore(setupSessionsDB(t), zerolog.New(nil).Level(zerolog.Disabled))
}

func testRecord(id string, lastActive time.Time) Record {
	return Record{
		ID:             id,
		CreatedAt:      lastActive.Add(-time.Hour),
		LastActive:     lastActive,
		ScoreThreshold: 80,
		Selections:     []byte{0x80},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Save(testRecord("sess-1", now)))

	rec, err := store.Load("sess-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "sess-1", rec.ID)
	assert.Equal(t, now.Unix(), rec.LastActive.Unix())
	assert.Equal(t, 80, rec.ScoreThreshold)
	assert.Equal(t, []byte{0x80}, rec.Selections)
}

func TestStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Load("nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStore_SaveUpserts(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Save(testRecord("sess-1", now)))

	updated := testRecord("sess-1", now.Add(time.Minute))
	updated.ScoreThreshold = 65
	updated.Selections = []byte{0x81, 0x01, 0x02}
	require.NoError(t, store.Save(updated))

	rec, err := store.Load("sess-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 65, rec.ScoreThreshold)
	assert.Equal(t, now.Add(time.Minute).Unix(), rec.LastActive.Unix())
	assert.Equal(t, []byte{0x81, 0x01, 0x02}, rec.Selections)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_Touch(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Save(testRecord("sess-1", now)))

	later := now.Add(10 * time.Minute)
	require.NoError(t, store.Touch("sess-1", later))

	rec, err := store.Load("sess-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, later.Unix(), rec.LastActive.Unix())
}

func TestStore_LoadAllOrderedByCreation(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)

	newest := testRecord("newest", base)
	newest.CreatedAt = base
	oldest := testRecord("oldest", base)
	oldest.CreatedAt = base.Add(-2 * time.Hour)

	require.NoError(t, store.Save(newest))
	require.NoError(t, store.Save(oldest))

	records, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "oldest", records[0].ID)
	assert.Equal(t, "newest", records[1].ID)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, store.Save(testRecord("sess-1", now)))

	require.NoError(t, store.Delete("sess-1"))
	require.NoError(t, store.Delete("sess-1"))

	rec, err := store.Load("sess-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStore_DeleteInactiveBefore(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Save(testRecord("stale", now.Add(-48*time.Hour))))
	require.NoError(t, store.Save(testRecord("fresh", now)))

	ids, err := store.DeleteInactiveBefore(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, ids)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_DeleteInactiveBefore_NothingExpired(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, store.Save(testRecord("fresh", now)))

	ids, err := store.DeleteInactiveBefore(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, ids)
}
