// Package search implements multi-strategy fuzzy instrument search.
//
// A matcher holds an immutable snapshot of the instrument table and runs
// four matching passes per query: exact (name and ticker), fuzzy name,
// fuzzy ticker and fuzzy ISIN. Hits are deduplicated by instrument key and
// ranked by match-type priority, then score.
package search

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/wallets"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/rs/zerolog"
)

// Scoring constants. The fuzzy floors are tuning choices, not laws: tickers
// are short strings so their bar is looser, ISINs are precise codes so
// theirs is stricter.
const (
	// DefaultScoreThreshold is the fuzzy-name score a match must clear
	// when no explicit threshold is configured.
	DefaultScoreThreshold = 80

	// ExactNameScore is assigned to case-insensitive full-name equality.
	ExactNameScore = 100

	// ExactTickerScore is assigned to case-insensitive ticker equality.
	ExactTickerScore = 95

	// TickerScoreFloor is the default minimum fuzzy-ticker score
	// regardless of how low the configured threshold goes. Overridable
	// per matcher via SetFloors.
	TickerScoreFloor = 60

	// TickerThresholdDelta relaxes the configured threshold for tickers.
	TickerThresholdDelta = 20

	// ISINScoreFloor is the default minimum fuzzy-ISIN score regardless
	// of the configured threshold. Overridable per matcher via SetFloors.
	ISINScoreFloor = 80
)

// Matcher executes searches over a fixed instrument table.
//
// The threshold is mutable between calls so callers can retune and retry
// (e.g. lower the bar when a first search finds nothing). All other state
// is immutable after construction.
type Matcher struct {
	instruments []domain.Instrument

	// Presence indices over the full table, keyed by lowercased value.
	// Built eagerly; consulted only to skip passes that cannot match.
	nameIndex   map[string][]int
	tickerIndex map[string][]int
	isinIndex   map[string][]int

	mu          sync.RWMutex
	threshold   int
	tickerFloor int
	isinFloor   int

	log zerolog.Logger
}

// NewMatcher builds a matcher over the given instrument table. A threshold
// outside 0-100 is clamped.
func NewMatcher(instruments []domain.Instrument, threshold int, log zerolog.Logger) *Matcher {
	m := &Matcher{
		instruments: instruments,
		nameIndex:   make(map[string][]int),
		tickerIndex: make(map[string][]int),
		isinIndex:   make(map[string][]int),
		threshold:   clampScore(threshold),
		tickerFloor: TickerScoreFloor,
		isinFloor:   ISINScoreFloor,
		log:         log.With().Str("component", "matcher").Logger(),
	}

	for i, inst := range instruments {
		name := strings.ToLower(inst.Name)
		m.nameIndex[name] = append(m.nameIndex[name], i)
		if inst.Ticker != "" {
			ticker := strings.ToLower(inst.Ticker)
			m.tickerIndex[ticker] = append(m.tickerIndex[ticker], i)
		}
		if inst.ISIN != "" {
			isin := strings.ToLower(inst.ISIN)
			m.isinIndex[isin] = append(m.isinIndex[isin], i)
		}
	}

	return m
}

// Threshold returns the current fuzzy-name score threshold.
func (m *Matcher) Threshold() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.threshold
}

// SetThreshold retunes the fuzzy-name score threshold for subsequent
// searches. Values outside 0-100 are clamped.
func (m *Matcher) SetThreshold(threshold int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = clampScore(threshold)
}

// Floors returns the fuzzy score floors for the ticker and ISIN passes.
func (m *Matcher) Floors() (tickerFloor, isinFloor int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tickerFloor, m.isinFloor
}

// SetFloors retunes the fuzzy score floors for the ticker and ISIN passes.
// Values outside 0-100 are clamped.
func (m *Matcher) SetFloors(tickerFloor, isinFloor int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickerFloor = clampScore(tickerFloor)
	m.isinFloor = clampScore(isinFloor)
}

// InstrumentCount returns the size of the underlying instrument table.
func (m *Matcher) InstrumentCount() int {
	return len(m.instruments)
}

// Search runs all matching passes for the query against active instruments,
// optionally restricted to one wallet.
//
// walletID only takes effect when it is a positive integer-like string;
// sentinels such as "all" or "" skip wallet filtering. A blank query returns
// an empty list, never an error. maxResults <= 0 means unlimited.
func (m *Matcher) Search(query, walletID string, maxResults int) []domain.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}
	}

	m.mu.RLock()
	threshold := m.threshold
	tickerFloor := m.tickerFloor
	isinFloor := m.isinFloor
	m.mu.RUnlock()

	rows := m.filterRows(walletID)

	hits := make([]domain.SearchResult, 0)
	hits = append(hits, m.exactMatches(query, rows)...)
	hits = append(hits, fuzzyNameMatches(query, rows, threshold)...)
	hits = append(hits, fuzzyTickerMatches(query, rows, threshold, tickerFloor)...)
	hits = append(hits, fuzzyISINMatches(query, rows, threshold, isinFloor)...)

	results := dedupeByKey(hits)

	sort.SliceStable(results, func(i, j int) bool {
		pi, pj := results[i].MatchType.Priority(), results[j].MatchType.Priority()
		if pi != pj {
			return pi < pj
		}
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	m.log.Debug().
		Str("query", query).
		Str("wallet_id", walletID).
		Int("threshold", threshold).
		Int("results", len(results)).
		Msg("Search completed")

	return results
}

// filterRows returns the active instruments visible in the given wallet.
// Wallet membership is a whole-token comparison against the parsed
// account-filter set, never a substring test.
func (m *Matcher) filterRows(walletID string) []domain.Instrument {
	id := strings.TrimSpace(walletID)
	n, err := strconv.Atoi(id)
	filterByWallet := err == nil && n > 0

	rows := make([]domain.Instrument, 0, len(m.instruments))
	for _, inst := range m.instruments {
		if !inst.Active {
			continue
		}
		if filterByWallet && !wallets.FilterContains(inst.AccountFilters, id) {
			continue
		}
		rows = append(rows, inst)
	}
	return rows
}

// exactMatches checks case-insensitive equality against name and ticker.
// The full-table indices tell us up front whether a scan can hit at all.
func (m *Matcher) exactMatches(query string, rows []domain.Instrument) []domain.SearchResult {
	lower := strings.ToLower(query)
	_, nameKnown := m.nameIndex[lower]
	_, tickerKnown := m.tickerIndex[lower]
	if !nameKnown && !tickerKnown {
		return nil
	}

	hits := make([]domain.SearchResult, 0)
	for _, inst := range rows {
		if strings.EqualFold(inst.Name, query) {
			hits = append(hits, domain.NewSearchResult(inst, ExactNameScore, domain.MatchExactName))
		}
		if inst.Ticker != "" && strings.EqualFold(inst.Ticker, query) {
			hits = append(hits, domain.NewSearchResult(inst, ExactTickerScore, domain.MatchExactTicker))
		}
	}
	return hits
}

// fuzzyNameMatches scores the query against every distinct name once and
// expands each passing name to all of its rows.
func fuzzyNameMatches(query string, rows []domain.Instrument, threshold int) []domain.SearchResult {
	hits := make([]domain.SearchResult, 0)
	for _, group := range groupByValue(rows, func(i domain.Instrument) string { return i.Name }) {
		score := fuzzy.TokenSortRatio(query, group.value)
		if score < threshold {
			continue
		}
		for _, inst := range group.rows {
			hits = append(hits, domain.NewSearchResult(inst, score, domain.MatchFuzzyName))
		}
	}
	return hits
}

// fuzzyTickerMatches scores the query against every distinct non-empty
// ticker. The bar is max(tickerFloor, threshold-TickerThresholdDelta).
func fuzzyTickerMatches(query string, rows []domain.Instrument, threshold, tickerFloor int) []domain.SearchResult {
	floor := tickerFloor
	if t := threshold - TickerThresholdDelta; t > floor {
		floor = t
	}

	upper := strings.ToUpper(query)
	hits := make([]domain.SearchResult, 0)
	for _, group := range groupByValue(rows, func(i domain.Instrument) string { return i.Ticker }) {
		score := fuzzy.Ratio(upper, strings.ToUpper(group.value))
		if score < floor {
			continue
		}
		for _, inst := range group.rows {
			hits = append(hits, domain.NewSearchResult(inst, score, domain.MatchTicker))
		}
	}
	return hits
}

// fuzzyISINMatches scores the query against every distinct non-empty ISIN.
// The bar is max(isinFloor, threshold).
func fuzzyISINMatches(query string, rows []domain.Instrument, threshold, isinFloor int) []domain.SearchResult {
	floor := isinFloor
	if threshold > floor {
		floor = threshold
	}

	upper := strings.ToUpper(query)
	hits := make([]domain.SearchResult, 0)
	for _, group := range groupByValue(rows, func(i domain.Instrument) string { return i.ISIN }) {
		score := fuzzy.Ratio(upper, strings.ToUpper(group.value))
		if score < floor {
			continue
		}
		for _, inst := range group.rows {
			hits = append(hits, domain.NewSearchResult(inst, score, domain.MatchISIN))
		}
	}
	return hits
}

// valueGroup is one distinct field value and the rows carrying it, in
// first-seen order.
type valueGroup struct {
	value string
	rows  []domain.Instrument
}

// groupByValue collects the distinct non-empty values of a field across the
// given rows, preserving first-seen order for deterministic output.
func groupByValue(rows []domain.Instrument, field func(domain.Instrument) string) []valueGroup {
	index := make(map[string]int)
	groups := make([]valueGroup, 0)
	for _, inst := range rows {
		v := field(inst)
		if v == "" {
			continue
		}
		if i, ok := index[v]; ok {
			groups[i].rows = append(groups[i].rows, inst)
			continue
		}
		index[v] = len(groups)
		groups = append(groups, valueGroup{value: v, rows: []domain.Instrument{inst}})
	}
	return groups
}

// dedupeByKey keeps the first hit per instrument key. The key scheme is the
// same one selections use, so a search can never surface two entries that a
// selection would treat as the same instrument.
func dedupeByKey(hits []domain.SearchResult) []domain.SearchResult {
	seen := make(map[string]struct{}, len(hits))
	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		key := hit.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, hit)
	}
	return results
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
