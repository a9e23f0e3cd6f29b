package domain

// MatchType identifies the strategy that produced a search hit.
// It doubles as the primary ranking key: lower priority sorts first.
type MatchType string

const (
	MatchExactName   MatchType = "exact_name"
	MatchExactTicker MatchType = "exact_ticker"
	MatchFuzzyName   MatchType = "fuzzy_name"
	MatchTicker      MatchType = "ticker"
	MatchISIN        MatchType = "isin"
)

// Priority returns the ranking priority of the match type.
// Exact matches outrank fuzzy matches regardless of score.
func (m MatchType) Priority() int {
	switch m {
	case MatchExactName:
		return 0
	case MatchExactTicker:
		return 1
	case MatchFuzzyName:
		return 2
	case MatchTicker:
		return 3
	case MatchISIN:
		return 4
	default:
		return 5
	}
}

// SearchResult is one ranked hit produced by a search. Results are derived
// and transient: they are recomputed on every query and none persist beyond
// the current search, except when stored verbatim as a selection.
type SearchResult struct {
	InstrumentID   int64     `json:"instrument_id"`
	Name           string    `json:"name"`
	Ticker         string    `json:"ticker"`
	ISIN           string    `json:"isin"`
	ContractCode   string    `json:"contract_code"`
	AssetType      string    `json:"asset_type"`
	Exchange       string    `json:"exchange"`
	Currency       string    `json:"currency"`
	RelevanceScore int       `json:"relevance_score"` // 0-100
	MatchType      MatchType `json:"match_type"`
	AccountFilters string    `json:"account_filters"` // raw wallet-filter string, carried through

	// Instrument is the original universe row the result was derived from,
	// carried for downstream consumers. Excluded from JSON responses.
	Instrument Instrument `json:"-"`
}

// Key returns the deduplication key for this result. It is computed from the
// copied-through fields so a result and its source instrument always agree.
func (r SearchResult) Key() string {
	return SelectionKey(r.Exchange, r.Ticker, r.ContractCode, r.InstrumentID, r.Name)
}

// NewSearchResult builds a result record from an instrument row plus the
// score and match type assigned by a matching pass.
func NewSearchResult(inst Instrument, score int, matchType MatchType) SearchResult {
	return SearchResult{
		InstrumentID:   inst.ID,
		Name:           inst.Name,
		Ticker:         inst.Ticker,
		ISIN:           inst.ISIN,
		ContractCode:   inst.ContractCode,
		AssetType:      inst.AssetType,
		Exchange:       inst.Exchange,
		Currency:       inst.Currency,
		RelevanceScore: score,
		MatchType:      matchType,
		AccountFilters: inst.AccountFilters,
		Instrument:     inst,
	}
}
