package testing

import (
	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
)

// NewInstrumentFixtures returns a small universe covering the common cases:
// equities and an ETF, multiple exchanges and currencies, an inactive row,
// and one row without wallet filters.
func NewInstrumentFixtures() []domain.Instrument {
	return []domain.Instrument{
		{
			ID:             1,
			Name:           "Apple Inc",
			Ticker:         "AAPL",
			ISIN:           "US0378331005",
			ContractCode:   "AAPL.US",
			AssetType:      "equity",
			Exchange:       "NASDAQ",
			Currency:       "USD",
			Active:         true,
			AccountFilters: "2,10",
		},
		{
			ID:             2,
			Name:           "Microsoft Corporation",
			Ticker:         "MSFT",
			ISIN:           "US5949181045",
			ContractCode:   "MSFT.US",
			AssetType:      "equity",
			Exchange:       "NASDAQ",
			Currency:       "USD",
			Active:         true,
			AccountFilters: "2",
		},
		{
			ID:             3,
			Name:           "Vanguard FTSE All-World UCITS ETF",
			Ticker:         "VWCE",
			ISIN:           "IE00BK5BQT80",
			ContractCode:   "VWCE.DE",
			AssetType:      "etf",
			Exchange:       "XETRA",
			Currency:       "EUR",
			Active:         true,
			AccountFilters: "2,10,15",
		},
		{
			ID:             4,
			Name:           "Palantir Technologies",
			Ticker:         "PLTR",
			ISIN:           "US69608A1088",
			ContractCode:   "PLTR.US",
			AssetType:      "equity",
			Exchange:       "NYSE",
			Currency:       "USD",
			Active:         true,
			AccountFilters: "10",
		},
		{
			ID:             5,
			Name:           "Delisted Holdings",
			Ticker:         "DLST",
			ISIN:           "",
			ContractCode:   "",
			AssetType:      "equity",
			Exchange:       "NYSE",
			Currency:       "USD",
			Active:         false,
			AccountFilters: "2,10",
		},
		{
			ID:             6,
			Name:           "Unlisted Ventures",
			Ticker:         "UNLV",
			ISIN:           "",
			ContractCode:   "UNLV.US",
			AssetType:      "equity",
			Exchange:       "OTC",
			Currency:       "USD",
			Active:         true,
			AccountFilters: "",
		},
	}
}

// NewWalletFixtures returns the wallet directory used across tests.
func NewWalletFixtures() map[string]domain.Wallet {
	return map[string]domain.Wallet{
		"2": {
			ID:          "2",
			Name:        "eur-main",
			DisplayName: "EUR Main",
			Currency:    "EUR",
			Active:      true,
		},
		"10": {
			ID:          "10",
			Name:        "usd-trading",
			DisplayName: "USD Trading",
			Currency:    "USD",
			Active:      true,
		},
		"15": {
			ID:          "15",
			Name:        "retirement",
			DisplayName: "Retirement",
			Currency:    "EUR",
			Active:      true,
		},
		"7": {
			ID:       "7",
			Name:     "legacy",
			Currency: "USD",
			Active:   false,
		},
	}
}

// NewSearchResultFixture returns a ranked hit for the Apple fixture row.
func NewSearchResultFixture() domain.SearchResult {
	return domain.NewSearchResult(NewInstrumentFixtures()[0], 95, domain.MatchExactTicker)
}
