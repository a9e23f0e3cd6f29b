package domain

// SelectionMetadata records the provenance of one selection. It lives in
// lockstep with the selection entry under the same key: created together,
// removed together.
type SelectionMetadata struct {
	SelectedAt    string `json:"selected_at"` // ISO-8601 (RFC 3339, UTC)
	SourceQuery   string `json:"source_query"`
	InstrumentKey string `json:"instrument_key"`
}

// SelectionSummary aggregates the current selections. All fields default to
// zero/empty when nothing is selected; aggregation never fails on an empty
// set.
type SelectionSummary struct {
	TotalCount       int            `json:"total_count"`
	UniqueExchanges  []string       `json:"unique_exchanges"`
	UniqueAssetTypes []string       `json:"unique_asset_types"`
	SelectionSources map[string]int `json:"selection_sources"` // source query -> selection count
	OldestSelection  string         `json:"oldest_selection"`  // ISO-8601, empty when no selections
	NewestSelection  string         `json:"newest_selection"`  // ISO-8601, empty when no selections
	LastModified     string         `json:"last_modified"`     // ISO-8601, empty until first mutation
}
