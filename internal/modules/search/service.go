package search

import (
	"sync"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/settings"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/universe"
	"github.com/rs/zerolog"
)

const (
	// UseDefaultMaxResults makes Search resolve the result cap from settings.
	UseDefaultMaxResults = -1

	// DefaultMaxResults caps result lists when no setting overrides it.
	DefaultMaxResults = 50
)

// Service owns the shared matcher built over the universe cache and ties
// searches to settings, metrics and events. Sessions get their own matcher
// via NewSessionMatcher so per-session thresholds never leak into the
// shared one.
type Service struct {
	cache        *universe.Cache
	settingsRepo *settings.Repository
	eventManager *events.Manager
	metrics      *Metrics

	mu      sync.RWMutex
	matcher *Matcher

	log zerolog.Logger
}

// NewService builds the shared matcher from the current cache contents and
// subscribes to universe reloads and settings changes so the matcher stays
// current without polling.
func NewService(cache *universe.Cache, settingsRepo *settings.Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	s := &Service{
		cache:        cache,
		settingsRepo: settingsRepo,
		eventManager: eventManager,
		metrics:      NewMetrics(DefaultMetricsWindow),
		log:          log.With().Str("component", "search_service").Logger(),
	}
	s.matcher = NewMatcher(cache.Instruments(), s.defaultThreshold(), s.log)
	s.matcher.SetFloors(s.defaultFloors())

	if bus := eventManager.Bus(); bus != nil {
		bus.Subscribe(events.UniverseReloaded, func(*events.Event) {
			s.Rebuild()
		})
		bus.Subscribe(events.SettingsChanged, s.onSettingsChanged)
	}

	return s
}

// ResolveMaxResults maps the UseDefaultMaxResults sentinel to the
// settings-backed cap. Explicit values, including 0 for unlimited, pass
// through unchanged.
func (s *Service) ResolveMaxResults(maxResults int) int {
	if maxResults == UseDefaultMaxResults {
		return s.defaultMaxResults()
	}
	return maxResults
}

// Search runs a query against the shared matcher. Pass UseDefaultMaxResults
// to resolve the cap from settings; 0 disables truncation.
func (s *Service) Search(query, walletID string, maxResults int) []domain.SearchResult {
	maxResults = s.ResolveMaxResults(maxResults)

	start := time.Now()

	s.mu.RLock()
	matcher := s.matcher
	s.mu.RUnlock()

	results := matcher.Search(query, walletID, maxResults)
	s.RecordSearch("", query, walletID, results, time.Since(start))
	return results
}

// RecordSearch feeds one completed search into metrics and publishes the
// executed event. Session-scoped searches call this with their session id
// after running their own matcher.
func (s *Service) RecordSearch(sessionID, query, walletID string, results []domain.SearchResult, duration time.Duration) {
	topScore := 0
	if len(results) > 0 {
		topScore = results[0].RelevanceScore
	}
	s.metrics.Record(len(results), topScore, duration)

	s.eventManager.EmitTyped(events.SearchExecuted, "search", &events.SearchExecutedData{
		SessionID:   sessionID,
		Query:       query,
		WalletID:    walletID,
		ResultCount: len(results),
		DurationMs:  float64(duration.Microseconds()) / 1000.0,
	})
}

// NewSessionMatcher builds an independent matcher over the current universe
// snapshot, seeded with the default threshold and floors.
func (s *Service) NewSessionMatcher() *Matcher {
	m := NewMatcher(s.cache.Instruments(), s.defaultThreshold(), s.log)
	m.SetFloors(s.defaultFloors())
	return m
}

// Rebuild replaces the shared matcher with one built over the current cache
// contents, keeping the threshold and floors currently in effect.
func (s *Service) Rebuild() {
	s.mu.Lock()
	threshold := DefaultScoreThreshold
	tickerFloor, isinFloor := TickerScoreFloor, ISINScoreFloor
	if s.matcher != nil {
		threshold = s.matcher.Threshold()
		tickerFloor, isinFloor = s.matcher.Floors()
	}
	s.matcher = NewMatcher(s.cache.Instruments(), threshold, s.log)
	s.matcher.SetFloors(tickerFloor, isinFloor)
	count := s.matcher.InstrumentCount()
	s.mu.Unlock()

	s.log.Info().Int("instruments", count).Msg("Search matcher rebuilt")
}

// Threshold returns the shared matcher's score threshold.
func (s *Service) Threshold() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matcher.Threshold()
}

// SetThreshold updates the shared matcher's score threshold.
func (s *Service) SetThreshold(threshold int) {
	s.mu.RLock()
	matcher := s.matcher
	s.mu.RUnlock()
	matcher.SetThreshold(threshold)
}

// InstrumentCount returns the number of instruments behind the shared
// matcher.
func (s *Service) InstrumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matcher.InstrumentCount()
}

// Metrics exposes the rolling search statistics.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

func (s *Service) onSettingsChanged(event *events.Event) {
	key, _ := event.Data["key"].(string)
	switch key {
	case settings.KeyDefaultScoreThreshold:
		threshold := s.defaultThreshold()
		s.SetThreshold(threshold)
		s.log.Info().Int("threshold", threshold).Msg("Default score threshold updated")
	case settings.KeyTickerScoreFloor, settings.KeyISINScoreFloor:
		tickerFloor, isinFloor := s.defaultFloors()

		s.mu.RLock()
		matcher := s.matcher
		s.mu.RUnlock()
		matcher.SetFloors(tickerFloor, isinFloor)

		s.log.Info().
			Int("ticker_floor", tickerFloor).
			Int("isin_floor", isinFloor).
			Msg("Fuzzy score floors updated")
	}
}

func (s *Service) defaultThreshold() int {
	if s.settingsRepo == nil {
		return DefaultScoreThreshold
	}
	threshold, err := s.settingsRepo.GetInt(settings.KeyDefaultScoreThreshold, DefaultScoreThreshold)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read score threshold setting")
		return DefaultScoreThreshold
	}
	return threshold
}

func (s *Service) defaultMaxResults() int {
	if s.settingsRepo == nil {
		return DefaultMaxResults
	}
	maxResults, err := s.settingsRepo.GetInt(settings.KeyDefaultMaxResults, DefaultMaxResults)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read max results setting")
		return DefaultMaxResults
	}
	return maxResults
}

func (s *Service) defaultFloors() (tickerFloor, isinFloor int) {
	tickerFloor, isinFloor = TickerScoreFloor, ISINScoreFloor
	if s.settingsRepo == nil {
		return tickerFloor, isinFloor
	}

	if v, err := s.settingsRepo.GetInt(settings.KeyTickerScoreFloor, TickerScoreFloor); err != nil {
		s.log.Warn().Err(err).Msg("Failed to read ticker score floor setting")
	} else {
		tickerFloor = v
	}
	if v, err := s.settingsRepo.GetInt(settings.KeyISINScoreFloor, ISINScoreFloor); err != nil {
		s.log.Warn().Err(err).Msg("Failed to read ISIN score floor setting")
	} else {
		isinFloor = v
	}
	return tickerFloor, isinFloor
}
