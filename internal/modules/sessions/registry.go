package sessions

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/search"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/selection"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/settings"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultTTLHours is how long an idle session lives when no setting
// overrides it.
const DefaultTTLHours = 24

// Registry holds the live sessions and keeps the store in sync with them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	search       *search.Service
	store        *Store
	settingsRepo *settings.Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewRegistry creates an empty session registry. Call Restore to bring back
// persisted sessions from a previous run.
func NewRegistry(searchService *search.Service, store *Store, settingsRepo *settings.Repository, eventManager *events.Manager, log zerolog.Logger) *Registry {
	return &Registry{
		sessions:     make(map[string]*Session),
		search:       searchService,
		store:        store,
		settingsRepo: settingsRepo,
		eventManager: eventManager,
		log:          log.With().Str("component", "session_registry").Logger(),
	}
}

// Create starts a new session with its own matcher and empty selections.
func (r *Registry) Create() (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		lastActive: now,
		Matcher:    r.search.NewSessionMatcher(),
		Selections: selection.NewManager(r.log),
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	if err := r.Persist(sess); err != nil {
		return nil, err
	}

	r.eventManager.EmitTyped(events.SessionCreated, "sessions", &events.SessionData{
		SessionID: sess.ID,
		Status:    "created",
	})
	r.log.Info().Str("session_id", sess.ID).Msg("Session created")
	return sess, nil
}

// Get returns a live session and marks it active.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	sess.Touch()
	if err := r.store.Touch(id, sess.LastActive()); err != nil {
		r.log.Warn().Err(err).Str("session_id", id).Msg("Failed to persist session activity")
	}
	return sess, true
}

// Delete removes a session from the registry and the store. Returns false
// when the id is unknown.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	if err := r.store.Delete(id); err != nil {
		r.log.Error().Err(err).Str("session_id", id).Msg("Failed to delete persisted session")
	}

	r.eventManager.EmitTyped(events.SessionDeleted, "sessions", &events.SessionData{
		SessionID: id,
		Status:    "deleted",
	})
	r.log.Info().Str("session_id", id).Msg("Session deleted")
	return true
}

// List returns session summaries ordered by creation time.
func (r *Registry) List() []Info {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	infos := make([]Info, len(sessions))
	for i, sess := range sessions {
		infos[i] = sess.Info()
	}
	return infos
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// TTL returns the configured idle lifetime for sessions.
func (r *Registry) TTL() time.Duration {
	hours := DefaultTTLHours
	if r.settingsRepo != nil {
		configured, err := r.settingsRepo.GetInt(settings.KeySessionTTLHours, DefaultTTLHours)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to read session TTL setting")
		} else if configured > 0 {
			hours = configured
		}
	}
	return time.Duration(hours) * time.Hour
}

// CleanupExpired drops sessions idle for longer than the TTL, both live
// ones and orphaned rows left over from previous runs.
func (r *Registry) CleanupExpired() (int, error) {
	cutoff := time.Now().UTC().Add(-r.TTL())

	r.mu.Lock()
	var expired []string
	for id, sess := range r.sessions {
		if sess.LastActive().Before(cutoff) {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		if err := r.store.Delete(id); err != nil {
			r.log.Error().Err(err).Str("session_id", id).Msg("Failed to delete expired session")
		}
	}

	orphans, err := r.store.DeleteInactiveBefore(cutoff)
	if err != nil {
		return len(expired), err
	}
	expired = append(expired, orphans...)

	for _, id := range expired {
		r.eventManager.EmitTyped(events.SessionExpired, "sessions", &events.SessionData{
			SessionID: id,
			Status:    "expired",
		})
	}

	if len(expired) > 0 {
		r.log.Info().Int("count", len(expired)).Msg("Expired sessions cleaned up")
	}
	return len(expired), nil
}

// Persist writes the session's current state, including an encoded snapshot
// of its selections, to the store.
func (r *Registry) Persist(sess *Session) error {
	blob, err := msgpack.Marshal(sess.Selections.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode selections for session %s: %w", sess.ID, err)
	}

	return r.store.Save(Record{
		ID:             sess.ID,
		CreatedAt:      sess.CreatedAt,
		LastActive:     sess.LastActive(),
		ScoreThreshold: sess.Matcher.Threshold(),
		Selections:     blob,
	})
}

// Restore loads persisted sessions into the registry. A session whose
// selection snapshot cannot be decoded comes back with empty selections
// rather than blocking the rest of the restore.
func (r *Registry) Restore() (int, error) {
	records, err := r.store.LoadAll()
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, rec := range records {
		matcher := r.search.NewSessionMatcher()
		matcher.SetThreshold(rec.ScoreThreshold)

		manager := selection.NewManager(r.log)
		if len(rec.Selections) > 0 {
			var snap selection.Snapshot
			if err := msgpack.Unmarshal(rec.Selections, &snap); err != nil {
				r.log.Warn().Err(err).Str("session_id", rec.ID).Msg("Failed to decode selection snapshot")
			} else if rebuilt, err := selection.NewManagerFromSnapshot(snap, r.log); err != nil {
				r.log.Warn().Err(err).Str("session_id", rec.ID).Msg("Discarded inconsistent selection snapshot")
			} else {
				manager = rebuilt
			}
		}

		sess := &Session{
			ID:         rec.ID,
			CreatedAt:  rec.CreatedAt,
			lastActive: rec.LastActive,
			Matcher:    matcher,
			Selections: manager,
		}

		r.mu.Lock()
		r.sessions[sess.ID] = sess
		r.mu.Unlock()
		restored++
	}

	if restored > 0 {
		r.log.Info().Int("count", restored).Msg("Sessions restored from store")
	}
	return restored, nil
}
