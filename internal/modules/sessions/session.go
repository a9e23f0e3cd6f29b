// Package sessions manages search sessions: each one owns an independent
// matcher (so per-session thresholds never interfere) and a selection
// manager, and is persisted so selections survive restarts.
package sessions

import (
	"sync"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/modules/search"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/selection"
)

// Session is one user's search context. The matcher and selection manager
// are safe for concurrent use on their own; the session only guards its
// activity timestamp.
type Session struct {
	ID        string
	CreatedAt time.Time

	Matcher    *search.Matcher
	Selections *selection.Manager

	mu         sync.RWMutex
	lastActive time.Time
}

// Touch marks the session as active now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now().UTC()
	s.mu.Unlock()
}

// LastActive returns the time of the most recent activity.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Info is the JSON shape of a session in API responses.
type Info struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"created_at"`
	LastActive     string `json:"last_active"`
	ScoreThreshold int    `json:"score_threshold"`
	SelectionCount int    `json:"selection_count"`
}

// Info snapshots the session for API responses.
func (s *Session) Info() Info {
	return Info{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		LastActive:     s.LastActive().Format(time.RFC3339),
		ScoreThreshold: s.Matcher.Threshold(),
		SelectionCount: s.Selections.Count(),
	}
}
