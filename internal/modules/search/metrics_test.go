package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_EmptySnapshot(t *testing.T) {
	m := NewMetrics(10)

	snapshot := m.Snapshot()

	assert.Equal(t, int64(0), snapshot.TotalSearches)
	assert.Equal(t, 0.0, snapshot.EmptyRate)
	assert.Equal(t, 0.0, snapshot.DurationMsMean)
	assert.Equal(t, 0.0, snapshot.DurationMsP95)
	assert.Equal(t, 0.0, snapshot.TopScoreMean)
}

func TestMetrics_RecordAndAggregate(t *testing.T) {
	m := NewMetrics(10)

	m.Record(3, 95, 2*time.Millisecond)
	m.Record(1, 80, 4*time.Millisecond)
	m.Record(0, 0, 6*time.Millisecond)

	snapshot := m.Snapshot()

	assert.Equal(t, int64(3), snapshot.TotalSearches)
	assert.Equal(t, int64(1), snapshot.EmptySearches)
	assert.InDelta(t, 1.0/3.0, snapshot.EmptyRate, 1e-9)
	assert.InDelta(t, 4.0, snapshot.DurationMsMean, 1e-9)
	assert.InDelta(t, 4.0/3.0, snapshot.AvgResultCount, 1e-9)

	// Empty searches contribute no top score
	assert.InDelta(t, 87.5, snapshot.TopScoreMean, 1e-9)
}

func TestMetrics_WindowEviction(t *testing.T) {
	m := NewMetrics(3)

	for i := 0; i < 10; i++ {
		m.Record(1, 90, time.Millisecond)
	}

	snapshot := m.Snapshot()

	// Totals keep counting, the window stays bounded
	assert.Equal(t, int64(10), snapshot.TotalSearches)
	assert.Equal(t, 3, snapshot.WindowSize)
}

func TestMetrics_DefaultWindow(t *testing.T) {
	m := NewMetrics(0)
	require.NotNil(t, m)

	m.Record(1, 90, time.Millisecond)
	assert.Equal(t, 1, m.Snapshot().WindowSize)
}
