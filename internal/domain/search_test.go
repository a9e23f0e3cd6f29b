package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTypePriority_Ordering(t *testing.T) {
	// Exact matches outrank fuzzy matches; the full order is fixed.
	ordered := []MatchType{MatchExactName, MatchExactTicker, MatchFuzzyName, MatchTicker, MatchISIN}

	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1].Priority(), ordered[i].Priority(),
			"%s must outrank %s", ordered[i-1], ordered[i])
	}
}

func TestMatchTypePriority_UnknownSortsLast(t *testing.T) {
	unknown := MatchType("made_up")

	for _, known := range []MatchType{MatchExactName, MatchExactTicker, MatchFuzzyName, MatchTicker, MatchISIN} {
		assert.Greater(t, unknown.Priority(), known.Priority())
	}
}

func TestNewSearchResult_CopiesInstrumentFields(t *testing.T) {
	inst := Instrument{
		ID:             10,
		Name:           "Apple Inc",
		Ticker:         "AAPL",
		ISIN:           "US0378331005",
		ContractCode:   "AAPL.US",
		AssetType:      "EQUITY",
		Exchange:       "NASDAQ",
		Currency:       "USD",
		Active:         true,
		AccountFilters: "2,10",
	}

	result := NewSearchResult(inst, 100, MatchExactName)

	assert.Equal(t, inst.ID, result.InstrumentID)
	assert.Equal(t, inst.Name, result.Name)
	assert.Equal(t, inst.Ticker, result.Ticker)
	assert.Equal(t, inst.ISIN, result.ISIN)
	assert.Equal(t, inst.ContractCode, result.ContractCode)
	assert.Equal(t, inst.AssetType, result.AssetType)
	assert.Equal(t, inst.Exchange, result.Exchange)
	assert.Equal(t, inst.Currency, result.Currency)
	assert.Equal(t, inst.AccountFilters, result.AccountFilters)
	assert.Equal(t, 100, result.RelevanceScore)
	assert.Equal(t, MatchExactName, result.MatchType)
	assert.Equal(t, inst, result.Instrument)
}
