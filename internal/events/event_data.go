package events

import (
	"encoding/json"
	"time"
)

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// SearchExecutedData contains data for SearchExecuted events
type SearchExecutedData struct {
	SessionID   string  `json:"session_id,omitempty"`
	Query       string  `json:"query"`
	WalletID    string  `json:"wallet_id,omitempty"`
	ResultCount int     `json:"result_count"`
	DurationMs  float64 `json:"duration_ms"`
}

// EventType returns the event type for SearchExecutedData
func (d *SearchExecutedData) EventType() EventType {
	return SearchExecuted
}

// SelectionAddedData contains data for SelectionAdded events
type SelectionAddedData struct {
	SessionID     string `json:"session_id"`
	InstrumentKey string `json:"instrument_key"`
	Name          string `json:"name"`
	Ticker        string `json:"ticker,omitempty"`
	SourceQuery   string `json:"source_query"`
}

// EventType returns the event type for SelectionAddedData
func (d *SelectionAddedData) EventType() EventType {
	return SelectionAdded
}

// SelectionRemovedData contains data for SelectionRemoved events
type SelectionRemovedData struct {
	SessionID     string `json:"session_id"`
	InstrumentKey string `json:"instrument_key"`
}

// EventType returns the event type for SelectionRemovedData
func (d *SelectionRemovedData) EventType() EventType {
	return SelectionRemoved
}

// SelectionsClearedData contains data for SelectionsCleared events
type SelectionsClearedData struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"` // selections removed by the clear
}

// EventType returns the event type for SelectionsClearedData
func (d *SelectionsClearedData) EventType() EventType {
	return SelectionsCleared
}

// SessionData contains data for session lifecycle events.
// The event type is determined by the Status field.
type SessionData struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"` // "created", "deleted", "expired"
}

// EventType returns the event type for SessionData
func (d *SessionData) EventType() EventType {
	switch d.Status {
	case "deleted":
		return SessionDeleted
	case "expired":
		return SessionExpired
	default:
		return SessionCreated
	}
}

// UniverseImportedData contains data for UniverseImported events
type UniverseImportedData struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Source   string `json:"source,omitempty"`
}

// EventType returns the event type for UniverseImportedData
func (d *UniverseImportedData) EventType() EventType {
	return UniverseImported
}

// UniverseReloadedData contains data for UniverseReloaded events
type UniverseReloadedData struct {
	InstrumentCount int `json:"instrument_count"`
}

// EventType returns the event type for UniverseReloadedData
func (d *UniverseReloadedData) EventType() EventType {
	return UniverseReloaded
}

// SettingsChangedData contains data for SettingsChanged events
type SettingsChangedData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// EventType returns the event type for SettingsChangedData
func (d *SettingsChangedData) EventType() EventType {
	return SettingsChanged
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Archive   string `json:"archive"`
	SizeBytes int64  `json:"size_bytes"`
	Uploaded  bool   `json:"uploaded"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// JobStatusData contains data for job lifecycle events
type JobStatusData struct {
	JobName   string    `json:"job_name"`
	Status    string    `json:"status"` // "started", "completed", "failed"
	Error     string    `json:"error,omitempty"`
	Duration  float64   `json:"duration,omitempty"` // seconds
	Timestamp time.Time `json:"timestamp"`
}

// EventType returns the event type for JobStatusData
// Note: The actual event type is determined by the Status field
func (d *JobStatusData) EventType() EventType {
	switch d.Status {
	case "completed":
		return JobCompleted
	case "failed":
		return JobFailed
	default:
		return JobStarted
	}
}

// EventWithData represents an event with typed data
type EventWithData struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// MarshalJSON customizes JSON serialization for EventWithData
func (e *EventWithData) MarshalJSON() ([]byte, error) {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON customizes JSON deserialization for EventWithData
func (e *EventWithData) UnmarshalJSON(data []byte) error {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.Data) > 0 {
		var eventData EventData
		switch aux.Type {
		case SearchExecuted:
			eventData = &SearchExecutedData{}
		case SelectionAdded:
			eventData = &SelectionAddedData{}
		case SelectionRemoved:
			eventData = &SelectionRemovedData{}
		case SelectionsCleared:
			eventData = &SelectionsClearedData{}
		case SessionCreated, SessionDeleted, SessionExpired:
			eventData = &SessionData{}
		case UniverseImported:
			eventData = &UniverseImportedData{}
		case UniverseReloaded:
			eventData = &UniverseReloadedData{}
		case SettingsChanged:
			eventData = &SettingsChangedData{}
		case BackupCompleted:
			eventData = &BackupCompletedData{}
		case JobStarted, JobCompleted, JobFailed:
			eventData = &JobStatusData{}
		default:
			var rawData map[string]interface{}
			if err := json.Unmarshal(aux.Data, &rawData); err != nil {
				return err
			}
			eventData = &GenericEventData{Type: aux.Type, Data: rawData}
		}

		if err := json.Unmarshal(aux.Data, eventData); err != nil {
			return err
		}
		e.Data = eventData
	}

	return nil
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON customizes JSON deserialization for GenericEventData
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}
