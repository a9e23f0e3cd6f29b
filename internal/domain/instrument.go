// Package domain provides the core record types shared across modules.
package domain

import (
	"fmt"
	"strings"
)

// Instrument represents one row of the tradeable-instrument universe.
// Rows are immutable once loaded; search and selection never mutate them.
type Instrument struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Ticker         string `json:"ticker"`
	ISIN           string `json:"isin"`
	ContractCode   string `json:"contract_code"`
	AssetType      string `json:"asset_type"`
	Exchange       string `json:"exchange"`
	Currency       string `json:"currency"`
	Active         bool   `json:"active"`
	AccountFilters string `json:"account_filters"` // raw comma-separated wallet ids, may be empty
}

// Key returns the deduplication key for this instrument.
// See SelectionKey for the key scheme.
func (i Instrument) Key() string {
	return SelectionKey(i.Exchange, i.Ticker, i.ContractCode, i.ID, i.Name)
}

// SelectionKey computes the identity key used to decide whether two records
// refer to the same instrument. Search deduplication and selection
// deduplication both go through this function; they must never diverge.
//
// The business key is the (exchange, ticker, contract code) triple uppercased.
// When any of the three is blank the key falls back to the legacy form built
// from the numeric id and the uppercased name.
func SelectionKey(exchange, ticker, contractCode string, id int64, name string) string {
	ex := strings.ToUpper(strings.TrimSpace(exchange))
	tk := strings.ToUpper(strings.TrimSpace(ticker))
	cc := strings.ToUpper(strings.TrimSpace(contractCode))

	if ex != "" && tk != "" && cc != "" {
		return ex + "|" + tk + "|" + cc
	}

	return fmt.Sprintf("%d|%s", id, strings.ToUpper(strings.TrimSpace(name)))
}
