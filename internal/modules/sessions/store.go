package sessions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Record is one persisted session row. Selections holds the msgpack-encoded
// selection snapshot, nil when nothing was ever selected.
type Record struct {
	ID             string
	CreatedAt      time.Time
	LastActive     time.Time
	ScoreThreshold int
	Selections     []byte
}

// Store persists sessions in the sessions database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a session store over the given database handle.
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "session_store").Logger(),
	}
}

// Save writes the full session row, replacing any previous state.
func (s *Store) Save(rec Record) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, created_at, last_active, score_threshold, selections)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_active = excluded.last_active,
			score_threshold = excluded.score_threshold,
			selections = excluded.selections
	`, rec.ID, rec.CreatedAt.Unix(), rec.LastActive.Unix(), rec.ScoreThreshold, rec.Selections)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", rec.ID, err)
	}
	return nil
}

// Touch updates only the activity timestamp.
func (s *Store) Touch(id string, lastActive time.Time) error {
	_, err := s.db.Exec(`UPDATE sessions SET last_active = ? WHERE id = ?`, lastActive.Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to touch session %s: %w", id, err)
	}
	return nil
}

// Load returns the session row, or nil when it does not exist.
func (s *Store) Load(id string) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, last_active, score_threshold, selections
		FROM sessions WHERE id = ?
	`, id)

	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return &rec, nil
}

// LoadAll returns every persisted session, oldest first.
func (s *Store) LoadAll() ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, last_active, score_threshold, selections
		FROM sessions ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a session row. Deleting a missing id is not an error.
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// DeleteInactiveBefore removes sessions whose last activity is older than
// the cutoff and returns their ids.
func (s *Store) DeleteInactiveBefore(cutoff time.Time) ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM sessions WHERE last_active < ?`, cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to find expired sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := s.db.Exec(`DELETE FROM sessions WHERE last_active < ?`, cutoff.Unix()); err != nil {
		return nil, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return ids, nil
}

// Count returns the number of persisted sessions.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

func scanRecord(scan func(dest ...interface{}) error) (Record, error) {
	var (
		rec        Record
		createdAt  int64
		lastActive int64
		selections []byte
	)
	if err := scan(&rec.ID, &createdAt, &lastActive, &rec.ScoreThreshold, &selections); err != nil {
		return Record{}, err
	}
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	rec.LastActive = time.Unix(lastActive, 0).UTC()
	rec.Selections = selections
	return rec, nil
}
