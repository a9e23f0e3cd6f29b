package selection

import (
	"fmt"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/rs/zerolog"
)

// Snapshot is the serializable form of a selection manager, used to persist
// session state between restarts. Fields mirror Manager's internal state.
type Snapshot struct {
	Selections   []domain.SearchResult               `msgpack:"selections"`
	Metadata     map[string]domain.SelectionMetadata `msgpack:"metadata"`
	LastModified time.Time                           `msgpack:"last_modified"`
}

// Snapshot captures a deep copy of the current selection state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Selections:   make([]domain.SearchResult, len(m.selections)),
		Metadata:     make(map[string]domain.SelectionMetadata, len(m.metadata)),
		LastModified: m.lastModified,
	}
	copy(snap.Selections, m.selections)
	for k, v := range m.metadata {
		snap.Metadata[k] = v
	}
	return snap
}

// NewManagerFromSnapshot restores a manager from persisted state. Unlike
// live mutation, a corrupt snapshot returns an error instead of panicking
// so one bad row cannot take the whole restore down.
func NewManagerFromSnapshot(snap Snapshot, log zerolog.Logger) (*Manager, error) {
	if len(snap.Selections) != len(snap.Metadata) {
		return nil, fmt.Errorf(
			"selection snapshot inconsistent: %d selections vs %d metadata entries",
			len(snap.Selections), len(snap.Metadata),
		)
	}
	for _, sel := range snap.Selections {
		if _, ok := snap.Metadata[sel.Key()]; !ok {
			return nil, fmt.Errorf("selection snapshot missing metadata for key %s", sel.Key())
		}
	}

	m := NewManager(log)
	m.selections = make([]domain.SearchResult, len(snap.Selections))
	copy(m.selections, snap.Selections)
	for k, v := range snap.Metadata {
		m.metadata[k] = v
	}
	m.lastModified = snap.LastModified
	return m, nil
}
