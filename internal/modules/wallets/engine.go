// Package wallets answers wallet-membership questions for instruments.
//
// Every instrument carries a raw account-filter string (a comma-separated
// list of wallet identifiers, possibly empty). The engine parses those
// strings and resolves them against the configured wallet directory.
package wallets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// ParseAccountFilters splits a raw account-filter string into the set of
// wallet identifiers it names. Tokens are comma-separated; surrounding
// whitespace and quote characters are stripped and empty tokens discarded.
// A missing or blank input yields an empty set, never an error.
func ParseAccountFilters(filterString string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, token := range utils.ParseCSV(filterString) {
		token = strings.Trim(token, `"'`)
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		ids[token] = struct{}{}
	}
	return ids
}

// FilterContains reports whether the parsed account-filter set contains the
// given wallet id as a whole token. Identifiers are compared as raw strings,
// so "27" never matches a filter that only lists "127".
func FilterContains(filterString, walletID string) bool {
	id := strings.TrimSpace(walletID)
	if id == "" {
		return false
	}
	_, ok := ParseAccountFilters(filterString)[id]
	return ok
}

// Engine resolves account-filter strings against the wallet directory.
// The directory is loaded once at startup and treated as immutable, so the
// engine needs no locking.
type Engine struct {
	wallets  map[string]domain.Wallet
	nameToID map[string]string
	log      zerolog.Logger
}

// NewEngine creates an engine over the given wallet directory, keyed by
// wallet id.
func NewEngine(wallets map[string]domain.Wallet, log zerolog.Logger) *Engine {
	nameToID := make(map[string]string, len(wallets))
	for id, w := range wallets {
		if w.Name != "" {
			nameToID[strings.ToLower(w.Name)] = id
		}
	}

	return &Engine{
		wallets:  wallets,
		nameToID: nameToID,
		log:      log.With().Str("component", "wallets").Logger(),
	}
}

// IsAvailableInWallet reports whether the instrument behind the given
// account-filter string is available in the named wallet. Unknown wallet
// names resolve to false rather than an error.
func (e *Engine) IsAvailableInWallet(filterString, walletName string) bool {
	id, ok := e.nameToID[strings.ToLower(strings.TrimSpace(walletName))]
	if !ok {
		return false
	}
	_, present := ParseAccountFilters(filterString)[id]
	return present
}

// GetAvailableWallets returns the full wallet records for every id in the
// account-filter string that exists in the directory, sorted by wallet name.
// Ids the directory does not know are silently dropped.
func (e *Engine) GetAvailableWallets(filterString string) []domain.Wallet {
	available := make([]domain.Wallet, 0)
	for id := range ParseAccountFilters(filterString) {
		if w, ok := e.wallets[id]; ok {
			available = append(available, w)
		}
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].Name < available[j].Name
	})

	return available
}

// GetWalletDisplayName resolves a wallet id to a human-readable name,
// falling back from display name to short name to a synthesized label for
// ids the directory does not know.
func (e *Engine) GetWalletDisplayName(walletID string) string {
	w, ok := e.wallets[walletID]
	if !ok {
		return fmt.Sprintf("Wallet %s", walletID)
	}
	if w.DisplayName != "" {
		return w.DisplayName
	}
	if w.Name != "" {
		return w.Name
	}
	return fmt.Sprintf("Wallet %s", walletID)
}

// GetAllWallets returns every active wallet in the directory, sorted by
// wallet name.
func (e *Engine) GetAllWallets() []domain.Wallet {
	all := make([]domain.Wallet, 0, len(e.wallets))
	for _, w := range e.wallets {
		if !w.Active {
			continue
		}
		all = append(all, w)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})

	return all
}

// Count returns the number of configured wallets, active or not.
func (e *Engine) Count() int {
	return len(e.wallets)
}
