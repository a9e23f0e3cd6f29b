package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Timer measures the duration of an operation and logs it on Stop.
// Used around universe loads and imports, which can take a while on large
// instrument tables.
type Timer struct {
	start time.Time
	name  string
	log   zerolog.Logger
}

// NewTimer creates a timer named after the operation being measured.
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
		log:   log,
	}
}

// Elapsed returns the time since the timer started without logging.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop stops the timer, logs the duration, and returns it.
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)

	t.log.Debug().
		Str("operation", t.name).
		Dur("duration_ms", duration).
		Msg("Operation timed")

	if duration > 10*time.Second {
		t.log.Warn().
			Str("operation", t.name).
			Dur("duration", duration).
			Msg("Slow operation detected (>10s)")
	}

	return duration
}
