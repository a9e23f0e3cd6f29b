package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is the unit of delivery on the bus. Data is a loosely-typed map so
// subscribers (such as the SSE stream) can forward it without knowing every
// payload shape; use Manager.EmitTyped to publish typed payloads.
type Event struct {
	Type      EventType              `json:"type"`
	Module    string                 `json:"module"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(*Event)

// Bus is an in-process publish/subscribe event bus
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	log      zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for an event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all handlers subscribed to its type.
// A panicking handler is logged and skipped; it never takes down the
// publisher.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Module:    module,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[eventType]))
	copy(handlers, b.handlers[eventType])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(event, handler)
	}
}

func (b *Bus) dispatch(event *Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("event_type", string(event.Type)).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	handler(event)
}

// SubscriberCount returns the number of handlers registered for a type
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// Manager wraps the bus with typed-payload publishing
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a new event manager over a bus
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("component", "event_manager").Logger(),
	}
}

// Bus returns the underlying bus (for subscribers)
func (m *Manager) Bus() *Bus {
	if m == nil {
		return nil
	}
	return m.bus
}

// EmitTyped publishes a typed payload. The payload is converted to the
// loosely-typed map form via its JSON representation so every subscriber
// sees the same field names the API uses.
func (m *Manager) EmitTyped(eventType EventType, module string, data EventData) {
	if m == nil {
		return
	}

	payload, err := toMap(data)
	if err != nil {
		m.log.Error().
			Err(err).
			Str("event_type", string(eventType)).
			Msg("Failed to encode event payload")
		return
	}

	m.bus.Emit(eventType, module, payload)
}

func toMap(data EventData) (map[string]interface{}, error) {
	if data == nil {
		return nil, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return out, nil
}
