// Package selection maintains the deduplicated set of instruments a user
// has chosen across searches, with provenance for every entry.
//
// Instruments are identified by the same key scheme search deduplication
// uses, so an instrument surfaced by different match types across searches
// can never be selected twice.
package selection

import (
	"fmt"
	"sync"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// Manager is the per-session selection state: an ordered list of selected
// results plus a metadata map keyed by instrument key. The two collections
// are always mutated together; them drifting apart is a programming error,
// not a recoverable condition.
type Manager struct {
	mu sync.RWMutex

	selections   []domain.SearchResult
	metadata     map[string]domain.SelectionMetadata
	lastModified time.Time

	log zerolog.Logger
}

// NewManager creates an empty selection manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		selections: make([]domain.SearchResult, 0),
		metadata:   make(map[string]domain.SelectionMetadata),
		log:        log.With().Str("component", "selection").Logger(),
	}
}

// Add records a selection with the query that produced it. Returns false
// without mutating anything when the instrument key is already selected.
func (m *Manager) Add(result domain.SearchResult, sourceQuery string) bool {
	key := result.Key()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.metadata[key]; exists {
		return false
	}

	now := time.Now().UTC()
	m.selections = append(m.selections, result)
	m.metadata[key] = domain.SelectionMetadata{
		SelectedAt:    now.Format(time.RFC3339),
		SourceQuery:   sourceQuery,
		InstrumentKey: key,
	}
	m.lastModified = now
	m.checkConsistency()

	m.log.Debug().Str("key", key).Str("query", sourceQuery).Msg("Instrument selected")
	return true
}

// Remove deletes the selection matching the given result. Returns false if
// it was not selected.
func (m *Manager) Remove(result domain.SearchResult) bool {
	return m.RemoveKey(result.Key())
}

// RemoveKey deletes a selection by raw instrument key. Removal is
// idempotent: a missing key returns false and changes nothing.
func (m *Manager) RemoveKey(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.metadata[key]; !exists {
		return false
	}

	for i, sel := range m.selections {
		if sel.Key() == key {
			m.selections = append(m.selections[:i], m.selections[i+1:]...)
			break
		}
	}
	delete(m.metadata, key)
	m.lastModified = time.Now().UTC()
	m.checkConsistency()

	m.log.Debug().Str("key", key).Msg("Selection removed")
	return true
}

// Clear empties the selection set and its metadata together. Without
// confirm it is a no-op returning false; the gate exists so one bad call
// cannot wipe a session.
func (m *Manager) Clear(confirm bool) bool {
	if !confirm {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.selections) > 0 {
		m.lastModified = time.Now().UTC()
	}
	m.selections = make([]domain.SearchResult, 0)
	m.metadata = make(map[string]domain.SelectionMetadata)
	m.checkConsistency()

	m.log.Debug().Msg("Selections cleared")
	return true
}

// IsSelected reports whether the result's instrument key is selected.
func (m *Manager) IsSelected(result domain.SearchResult) bool {
	return m.IsSelectedKey(result.Key())
}

// IsSelectedKey reports whether a raw instrument key is selected.
func (m *Manager) IsSelectedKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.metadata[key]
	return exists
}

// Count returns the number of current selections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.selections)
}

// Selections returns a defensive copy of the current selections in the
// order they were added.
func (m *Manager) Selections() []domain.SearchResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.SearchResult, len(m.selections))
	copy(out, m.selections)
	return out
}

// SelectionByKey returns the selected entry for a key, or nil.
func (m *Manager) SelectionByKey(key string) *domain.SearchResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sel := range m.selections {
		if sel.Key() == key {
			out := sel
			return &out
		}
	}
	return nil
}

// Metadata returns the provenance recorded for a result's key.
func (m *Manager) Metadata(result domain.SearchResult) (domain.SelectionMetadata, bool) {
	return m.MetadataByKey(result.Key())
}

// MetadataByKey returns the provenance recorded for a raw key.
func (m *Manager) MetadataByKey(key string) (domain.SelectionMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	meta, exists := m.metadata[key]
	return meta, exists
}

// Summary aggregates the current selections. An empty selection set yields
// zeroed counts and empty strings rather than an error.
func (m *Manager) Summary() domain.SelectionSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := domain.SelectionSummary{
		TotalCount:       len(m.selections),
		UniqueExchanges:  []string{},
		UniqueAssetTypes: []string{},
		SelectionSources: make(map[string]int),
	}

	if !m.lastModified.IsZero() {
		summary.LastModified = m.lastModified.Format(time.RFC3339)
	}

	if len(m.selections) == 0 {
		return summary
	}

	exchanges := make([]string, 0, len(m.selections))
	assetTypes := make([]string, 0, len(m.selections))
	for _, sel := range m.selections {
		exchanges = append(exchanges, sel.Exchange)
		assetTypes = append(assetTypes, sel.AssetType)
	}
	summary.UniqueExchanges = utils.SortedUnique(exchanges)
	summary.UniqueAssetTypes = utils.SortedUnique(assetTypes)

	// RFC3339 UTC timestamps order lexicographically, so string min/max
	// give the oldest and newest selections directly
	oldest, newest := "", ""
	for _, meta := range m.metadata {
		summary.SelectionSources[meta.SourceQuery]++
		if oldest == "" || meta.SelectedAt < oldest {
			oldest = meta.SelectedAt
		}
		if newest == "" || meta.SelectedAt > newest {
			newest = meta.SelectedAt
		}
	}
	summary.OldestSelection = oldest
	summary.NewestSelection = newest

	return summary
}

// checkConsistency panics when the selection list and metadata map drift.
// Callers must hold the write lock.
func (m *Manager) checkConsistency() {
	if len(m.selections) != len(m.metadata) {
		panic(fmt.Sprintf(
			"selection state inconsistent: %d selections vs %d metadata entries",
			len(m.selections), len(m.metadata),
		))
	}
}
