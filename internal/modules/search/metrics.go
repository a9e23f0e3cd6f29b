package search

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultMetricsWindow bounds how many recent searches feed the statistics.
const DefaultMetricsWindow = 500

// Metrics accumulates per-search observations over a rolling window so the
// system surface can report how search is behaving without persisting
// anything.
type Metrics struct {
	mu sync.Mutex

	window    int
	durations []float64 // milliseconds, most recent last
	counts    []float64
	topScores []float64 // only searches that produced results

	totalSearches int64
	emptySearches int64
}

// MetricsSnapshot is a point-in-time aggregation of the rolling window.
type MetricsSnapshot struct {
	TotalSearches int64   `json:"total_searches"`
	EmptySearches int64   `json:"empty_searches"`
	EmptyRate     float64 `json:"empty_rate"`
	WindowSize    int     `json:"window_size"`

	AvgResultCount float64 `json:"avg_result_count"`

	DurationMsMean   float64 `json:"duration_ms_mean"`
	DurationMsStdDev float64 `json:"duration_ms_std_dev"`
	DurationMsP50    float64 `json:"duration_ms_p50"`
	DurationMsP95    float64 `json:"duration_ms_p95"`

	TopScoreMean float64 `json:"top_score_mean"`
}

// NewMetrics creates a metrics collector with the given window size.
// A window <= 0 falls back to DefaultMetricsWindow.
func NewMetrics(window int) *Metrics {
	if window <= 0 {
		window = DefaultMetricsWindow
	}
	return &Metrics{window: window}
}

// Record adds one search observation.
func (m *Metrics) Record(resultCount, topScore int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalSearches++
	if resultCount == 0 {
		m.emptySearches++
	}

	m.durations = appendBounded(m.durations, float64(duration.Microseconds())/1000.0, m.window)
	m.counts = appendBounded(m.counts, float64(resultCount), m.window)
	if resultCount > 0 {
		m.topScores = appendBounded(m.topScores, float64(topScore), m.window)
	}
}

// Snapshot aggregates the current window. All statistics return zero on an
// empty window rather than NaN.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := MetricsSnapshot{
		TotalSearches: m.totalSearches,
		EmptySearches: m.emptySearches,
		WindowSize:    len(m.durations),
	}

	if m.totalSearches > 0 {
		snapshot.EmptyRate = float64(m.emptySearches) / float64(m.totalSearches)
	}

	snapshot.AvgResultCount = mean(m.counts)
	snapshot.DurationMsMean = mean(m.durations)
	snapshot.DurationMsStdDev = stdDev(m.durations)
	snapshot.DurationMsP50 = quantile(m.durations, 0.50)
	snapshot.DurationMsP95 = quantile(m.durations, 0.95)
	snapshot.TopScoreMean = mean(m.topScores)

	return snapshot
}

// appendBounded appends a value and drops the oldest entries beyond the
// window size.
func appendBounded(data []float64, v float64, window int) []float64 {
	data = append(data, v)
	if len(data) > window {
		data = data[len(data)-window:]
	}
	return data
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

func stdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

func quantile(data []float64, q float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}
