// Package events provides the in-process publish/subscribe event system.
package events

// EventType identifies a kind of system event
type EventType string

const (
	// Search lifecycle
	SearchExecuted EventType = "search.executed"

	// Selection lifecycle
	SelectionAdded    EventType = "selection.added"
	SelectionRemoved  EventType = "selection.removed"
	SelectionsCleared EventType = "selections.cleared"

	// Session lifecycle
	SessionCreated EventType = "session.created"
	SessionDeleted EventType = "session.deleted"
	SessionExpired EventType = "session.expired"

	// Universe lifecycle
	UniverseImported EventType = "universe.imported"
	UniverseReloaded EventType = "universe.reloaded"

	// Settings
	SettingsChanged EventType = "settings.changed"

	// Backups
	BackupCompleted EventType = "backup.completed"

	// Job lifecycle
	JobStarted   EventType = "job.started"
	JobCompleted EventType = "job.completed"
	JobFailed    EventType = "job.failed"
)

// AllEventTypes lists every event type the stream endpoint can subscribe to.
func AllEventTypes() []EventType {
	return []EventType{
		SearchExecuted,
		SelectionAdded,
		SelectionRemoved,
		SelectionsCleared,
		SessionCreated,
		SessionDeleted,
		SessionExpired,
		UniverseImported,
		UniverseReloaded,
		SettingsChanged,
		BackupCompleted,
		JobStarted,
		JobCompleted,
		JobFailed,
	}
}
