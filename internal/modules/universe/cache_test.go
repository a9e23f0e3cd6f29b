package universe

import (
	"testing"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ReloadAndRead(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	repo := newTestRepository(t)
	cache := NewCache(repo, log)

	assert.Equal(t, 0, cache.Count())
	assert.True(t, cache.LoadedAt().IsZero())

	require.NoError(t, repo.Upsert(appleInstrument()))
	require.NoError(t, cache.Reload())

	assert.Equal(t, 1, cache.Count())
	assert.False(t, cache.LoadedAt().IsZero())

	instruments := cache.Instruments()
	require.Len(t, instruments, 1)
	assert.Equal(t, "Apple Inc", instruments[0].Name)
}

func TestCache_InstrumentsReturnsCopy(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	repo := newTestRepository(t)
	cache := NewCache(repo, log)

	require.NoError(t, repo.Upsert(appleInstrument()))
	require.NoError(t, cache.Reload())

	first := cache.Instruments()
	first[0].Name = "mutated"

	second := cache.Instruments()
	assert.Equal(t, "Apple Inc", second[0].Name)
}

func TestCache_ReloadReplacesSnapshot(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	repo := newTestRepository(t)
	cache := NewCache(repo, log)

	require.NoError(t, repo.Upsert(appleInstrument()))
	require.NoError(t, cache.Reload())
	require.Equal(t, 1, cache.Count())

	require.NoError(t, repo.Upsert(domain.Instrument{
		ID: 2, Name: "Microsoft Corporation", Ticker: "MSFT", Active: true,
	}))
	require.NoError(t, cache.Reload())

	assert.Equal(t, 2, cache.Count())
}
