package scheduler

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RunRecord is one recorded job execution.
type RunRecord struct {
	ID         int64     `json:"id"`
	JobName    string    `json:"job_name"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// History records job executions in the cache database.
type History struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistory creates a job history recorder.
func NewHistory(db *sql.DB, log zerolog.Logger) *History {
	return &History{
		db:  db,
		log: log.With().Str("component", "job_history").Logger(),
	}
}

// Record stores the outcome of one job run.
func (h *History) Record(jobName string, startedAt time.Time, duration time.Duration, runErr error) error {
	errMsg := ""
	success := 1
	if runErr != nil {
		errMsg = runErr.Error()
		success = 0
	}

	_, err := h.db.Exec(
		`INSERT INTO job_history (job_name, started_at, duration_ms, success, error)
		 VALUES (?, ?, ?, ?, ?)`,
		jobName, startedAt.Unix(), duration.Milliseconds(), success, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record job run: %w", err)
	}

	return nil
}

// Recent returns the latest job runs, newest first.
func (h *History) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.Query(
		`SELECT id, job_name, started_at, duration_ms, success, error
		 FROM job_history
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query job history: %w", err)
	}
	defer rows.Close()

	records := make([]RunRecord, 0, limit)
	for rows.Next() {
		var rec RunRecord
		var startedAt int64
		var success int
		if err := rows.Scan(&rec.ID, &rec.JobName, &startedAt, &rec.DurationMs, &success, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan job history row: %w", err)
		}
		rec.StartedAt = time.Unix(startedAt, 0).UTC()
		rec.Success = success == 1
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Prune deletes history entries older than the retention window and
// returns the number removed.
func (h *History) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()

	res, err := h.db.Exec(`DELETE FROM job_history WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune job history: %w", err)
	}

	return res.RowsAffected()
}
