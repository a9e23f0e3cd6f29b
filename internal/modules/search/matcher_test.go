package search

import (
	"testing"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioInstruments() []domain.Instrument {
	return []domain.Instrument{
		{
			ID: 1, Name: "Apple Inc", Ticker: "AAPL", ISIN: "US0378331005",
			ContractCode: "AAPL.US", AssetType: "equity", Exchange: "NASDAQ",
			Currency: "USD", Active: true, AccountFilters: "2,10",
		},
		{
			ID: 2, Name: "Microsoft Corporation", Ticker: "MSFT", ISIN: "US5949181045",
			ContractCode: "MSFT.US", AssetType: "equity", Exchange: "NASDAQ",
			Currency: "USD", Active: true, AccountFilters: "2",
		},
		{
			ID: 3, Name: "Vanguard FTSE All-World UCITS ETF", Ticker: "VWCE", ISIN: "IE00BK5BQT80",
			ContractCode: "VWCE.DE", AssetType: "etf", Exchange: "XETRA",
			Currency: "EUR", Active: true, AccountFilters: "2,10",
		},
		{
			ID: 4, Name: "Delisted Holdings", Ticker: "DLST", ISIN: "",
			ContractCode: "", AssetType: "equity", Exchange: "NYSE",
			Currency: "USD", Active: false, AccountFilters: "2,10",
		},
	}
}

func newScenarioMatcher(threshold int) *Matcher {
	return NewMatcher(scenarioInstruments(), threshold, zerolog.Nop())
}

func TestSearch_ExactTickerMatch(t *testing.T) {
	matcher := newScenarioMatcher(80)

	results := matcher.Search("AAPL", "10", 5)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchExactTicker, results[0].MatchType)
	assert.Equal(t, 95, results[0].RelevanceScore)
	assert.Equal(t, "Apple Inc", results[0].Name)
}

func TestSearch_ExactNameMatch(t *testing.T) {
	matcher := newScenarioMatcher(80)

	results := matcher.Search("apple inc", "all", 5)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchExactName, results[0].MatchType)
	assert.Equal(t, 100, results[0].RelevanceScore)
}

func TestSearch_TypoQueryThresholdInterplay(t *testing.T) {
	matcher := newScenarioMatcher(80)

	// "Aple" vs "Apple Inc" token-sorts below 80, so the name pass rejects
	// it, but the looser ticker bar (threshold-20) still admits AAPL
	results := matcher.Search("Aple", "all", 5)
	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchTicker, results[0].MatchType)
	assert.Equal(t, 75, results[0].RelevanceScore)
	assert.Equal(t, "Apple Inc", results[0].Name)

	// Retuning the same matcher lets the name pass claim the hit first
	matcher.SetThreshold(60)
	results = matcher.Search("Aple", "all", 5)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchFuzzyName, results[0].MatchType)
	assert.Equal(t, "Apple Inc", results[0].Name)
	assert.GreaterOrEqual(t, results[0].RelevanceScore, 60)
}

func TestSearch_WalletMismatchReturnsEmpty(t *testing.T) {
	matcher := newScenarioMatcher(80)

	// Apple is filtered to wallets 2 and 10; wallet 9 must hide it even
	// though the ticker matches exactly
	results := matcher.Search("AAPL", "9", 5)

	assert.Empty(t, results)
}

func TestSearch_WalletSentinelSkipsFiltering(t *testing.T) {
	matcher := newScenarioMatcher(80)

	for _, walletID := range []string{"all", "", "0", "-3", "abc"} {
		results := matcher.Search("AAPL", walletID, 5)
		require.Len(t, results, 1, "wallet_id %q should not filter", walletID)
	}
}

func TestSearch_EmptyQueryReturnsEmpty(t *testing.T) {
	matcher := newScenarioMatcher(80)

	for _, query := range []string{"", "   ", "\t"} {
		results := matcher.Search(query, "all", 5)
		require.NotNil(t, results)
		assert.Empty(t, results)
	}
}

func TestSearch_InactiveInstrumentsExcluded(t *testing.T) {
	matcher := newScenarioMatcher(80)

	results := matcher.Search("DLST", "all", 5)

	assert.Empty(t, results)
}

func TestSearch_EmptyAccountFiltersHideInstrumentFromWallets(t *testing.T) {
	instruments := []domain.Instrument{
		{ID: 7, Name: "Orphan Fund", Ticker: "ORPH", Exchange: "AMS",
			ContractCode: "ORPH.NL", Active: true, AccountFilters: ""},
	}
	matcher := NewMatcher(instruments, 80, zerolog.Nop())

	// Visible without wallet context, hidden in any concrete wallet
	assert.Len(t, matcher.Search("ORPH", "all", 5), 1)
	assert.Empty(t, matcher.Search("ORPH", "10", 5))
}

func TestSearch_NoDuplicateKeysInOutput(t *testing.T) {
	// Two rows for the same listing (same exchange, ticker, contract code)
	// must collapse into one result
	instruments := []domain.Instrument{
		{ID: 1, Name: "Apple Inc", Ticker: "AAPL", ISIN: "US0378331005",
			ContractCode: "AAPL.US", Exchange: "NASDAQ", Currency: "USD",
			Active: true, AccountFilters: "2,10"},
		{ID: 99, Name: "Apple Inc", Ticker: "AAPL", ISIN: "US0378331005",
			ContractCode: "AAPL.US", Exchange: "NASDAQ", Currency: "EUR",
			Active: true, AccountFilters: "2,10"},
	}
	matcher := NewMatcher(instruments, 80, zerolog.Nop())

	results := matcher.Search("AAPL", "all", 10)

	require.Len(t, results, 1)

	seen := make(map[string]bool)
	for _, r := range results {
		assert.False(t, seen[r.Key()], "duplicate key %s", r.Key())
		seen[r.Key()] = true
	}
}

func TestSearch_RankingOrderByMatchTypePriority(t *testing.T) {
	// Three distinct instruments hit via three different strategies. The
	// ticker match scores higher than the fuzzy name match but must still
	// rank after it.
	instruments := []domain.Instrument{
		{ID: 21, Name: "PLTR", Ticker: "PL1", Exchange: "NYSE",
			ContractCode: "PL1.US", Active: true},
		{ID: 22, Name: "PLTRXY", Ticker: "ZZT", Exchange: "NYSE",
			ContractCode: "ZZT.US", Active: true},
		{ID: 23, Name: "Quantum Metals", Ticker: "PLTR2", Exchange: "NYSE",
			ContractCode: "QM.US", Active: true},
	}
	matcher := NewMatcher(instruments, 80, zerolog.Nop())

	results := matcher.Search("PLTR", "all", 10)

	require.Len(t, results, 3)
	assert.Equal(t, domain.MatchExactName, results[0].MatchType)
	assert.Equal(t, domain.MatchFuzzyName, results[1].MatchType)
	assert.Equal(t, domain.MatchTicker, results[2].MatchType)
	assert.Greater(t, results[2].RelevanceScore, results[1].RelevanceScore,
		"priority must outrank raw score across match types")
}

func TestSearch_ISINExactValue(t *testing.T) {
	matcher := newScenarioMatcher(80)

	results := matcher.Search("US0378331005", "all", 5)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchISIN, results[0].MatchType)
	assert.Equal(t, 100, results[0].RelevanceScore)
	assert.Equal(t, "Apple Inc", results[0].Name)
}

func TestSearch_ISINFloorFollowsThreshold(t *testing.T) {
	matcher := newScenarioMatcher(90)

	// One trailing character off: ratio ~92
	results := matcher.Search("US0378331006", "all", 5)
	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchISIN, results[0].MatchType)

	// Raising the threshold raises the ISIN floor with it
	matcher.SetThreshold(95)
	assert.Empty(t, matcher.Search("US0378331006", "all", 5))
}

func TestSearch_TickerFloorClamps(t *testing.T) {
	instruments := []domain.Instrument{
		{ID: 31, Name: "Zeta Industrial Group", Ticker: "AAPL", Exchange: "NYSE",
			ContractCode: "ZIG.US", Active: true},
	}
	matcher := NewMatcher(instruments, 60, zerolog.Nop())

	// "APLE" vs "AAPL" scores ~75: above the 60 floor at threshold 60
	results := matcher.Search("APLE", "all", 5)
	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchTicker, results[0].MatchType)

	// At threshold 100 the ticker bar becomes max(60, 100-20) = 80
	matcher.SetThreshold(100)
	assert.Empty(t, matcher.Search("APLE", "all", 5))
}

func TestSetFloors_RetunesFuzzyPasses(t *testing.T) {
	matcher := newScenarioMatcher(80)

	tickerFloor, isinFloor := matcher.Floors()
	assert.Equal(t, TickerScoreFloor, tickerFloor)
	assert.Equal(t, ISINScoreFloor, isinFloor)

	// "APLE" vs AAPL scores ~75; "US0378331006" is one character off (~92).
	// Both clear the default floors at threshold 80.
	require.NotEmpty(t, matcher.Search("APLE", "all", 5))
	require.NotEmpty(t, matcher.Search("US0378331006", "all", 5))

	matcher.SetFloors(90, 95)
	assert.Empty(t, matcher.Search("APLE", "all", 5))
	assert.Empty(t, matcher.Search("US0378331006", "all", 5))
}

func TestSetFloors_Clamps(t *testing.T) {
	matcher := newScenarioMatcher(80)

	matcher.SetFloors(150, -5)
	tickerFloor, isinFloor := matcher.Floors()
	assert.Equal(t, 100, tickerFloor)
	assert.Equal(t, 0, isinFloor)
}

func TestSearch_MaxResultsTruncation(t *testing.T) {
	instruments := []domain.Instrument{
		{ID: 41, Name: "Global Fund Alpha", Ticker: "GFA", Exchange: "AMS",
			ContractCode: "GFA.NL", Active: true},
		{ID: 42, Name: "Global Fund Beta", Ticker: "GFB", Exchange: "AMS",
			ContractCode: "GFB.NL", Active: true},
		{ID: 43, Name: "Global Fund Gamma", Ticker: "GFC", Exchange: "AMS",
			ContractCode: "GFC.NL", Active: true},
	}
	matcher := NewMatcher(instruments, 60, zerolog.Nop())

	all := matcher.Search("Global Fund", "all", 0)
	require.Greater(t, len(all), 2)

	truncated := matcher.Search("Global Fund", "all", 2)
	assert.Len(t, truncated, 2)

	// Truncation keeps the top-ranked results
	assert.Equal(t, all[0].Key(), truncated[0].Key())
	assert.Equal(t, all[1].Key(), truncated[1].Key())
}

func TestSearch_DeterministicAcrossCalls(t *testing.T) {
	matcher := newScenarioMatcher(60)

	first := matcher.Search("apple", "all", 10)
	second := matcher.Search("apple", "all", 10)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Key(), second[i].Key())
		assert.Equal(t, first[i].MatchType, second[i].MatchType)
		assert.Equal(t, first[i].RelevanceScore, second[i].RelevanceScore)
	}
}

func TestSetThreshold_Clamps(t *testing.T) {
	matcher := newScenarioMatcher(80)

	matcher.SetThreshold(150)
	assert.Equal(t, 100, matcher.Threshold())

	matcher.SetThreshold(-5)
	assert.Equal(t, 0, matcher.Threshold())
}

func TestNewMatcher_BuildsIndices(t *testing.T) {
	matcher := newScenarioMatcher(80)

	assert.Equal(t, 4, matcher.InstrumentCount())
	assert.Contains(t, matcher.nameIndex, "apple inc")
	assert.Contains(t, matcher.tickerIndex, "aapl")
	assert.Contains(t, matcher.isinIndex, "us0378331005")

	// Blank tickers and ISINs never enter the indices
	assert.NotContains(t, matcher.tickerIndex, "")
	assert.NotContains(t, matcher.isinIndex, "")
}
