// Package scheduler runs background jobs on cron schedules and records
// their outcomes in the job history.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/events"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron         *cron.Cron
	history      *History
	eventManager *events.Manager
	log          zerolog.Logger
}

// New creates a new scheduler. history and eventManager may be nil when
// run outcomes don't need recording.
func New(history *History, eventManager *events.Manager, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithSeconds()),
		history:      history,
		eventManager: eventManager,
		log:          log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "0 0 * * * *"        - Every hour
//   - "0 30 2 * * *"       - 02:30 daily
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		_ = s.runJob(job)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.runJob(job)
}

// runJob executes a job, records the outcome and publishes lifecycle events
func (s *Scheduler) runJob(job Job) error {
	start := time.Now()
	s.log.Debug().Str("job", job.Name()).Msg("Running job")
	s.emitStatus(job.Name(), "started", nil, 0)

	err := job.Run()
	duration := time.Since(start)

	if s.history != nil {
		if recErr := s.history.Record(job.Name(), start, duration, err); recErr != nil {
			s.log.Warn().Err(recErr).Str("job", job.Name()).Msg("Failed to record job run")
		}
	}

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Dur("duration", duration).
			Msg("Job failed")
		s.emitStatus(job.Name(), "failed", err, duration)
		return err
	}

	s.log.Debug().
		Str("job", job.Name()).
		Dur("duration", duration).
		Msg("Job completed")
	s.emitStatus(job.Name(), "completed", nil, duration)

	return nil
}

func (s *Scheduler) emitStatus(jobName, status string, err error, duration time.Duration) {
	if s.eventManager == nil {
		return
	}

	data := &events.JobStatusData{
		JobName:   jobName,
		Status:    status,
		Duration:  duration.Seconds(),
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		data.Error = err.Error()
	}

	s.eventManager.EmitTyped(data.EventType(), "scheduler", data)
}
