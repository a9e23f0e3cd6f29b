package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/donkruger/share-transfer-template-sub000/internal/events"
)

func streamOnce(t *testing.T, bus *events.Bus, target string, publish func()) string {
	t.Helper()

	log := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewEventsStreamHandler(bus, log)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	go func() {
		// Give ServeHTTP time to subscribe before publishing
		time.Sleep(50 * time.Millisecond)
		publish()
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	handler.ServeHTTP(rec, req)

	return rec.Body.String()
}

func TestEventsStreamHandler_ForwardsEvents(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	bus := events.NewBus(log)

	body := streamOnce(t, bus, "/api/events/stream", func() {
		bus.Emit(events.SessionCreated, "sessions", map[string]interface{}{
			"session_id": "abc-123",
		})
	})

	assert.Contains(t, body, `"type":"connected"`)
	assert.Contains(t, body, `"type":"session.created"`)
	assert.Contains(t, body, `"session_id":"abc-123"`)
}

func TestEventsStreamHandler_TypeFilter(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	bus := events.NewBus(log)

	body := streamOnce(t, bus, "/api/events/stream?types=selection.added", func() {
		bus.Emit(events.SessionCreated, "sessions", nil)
		bus.Emit(events.SelectionAdded, "selection", map[string]interface{}{
			"instrument_key": "NASDAQ|AAPL|AAPL.US",
		})
	})

	assert.Contains(t, body, `"type":"connected"`)
	assert.Contains(t, body, `"type":"selection.added"`)
	assert.NotContains(t, body, `"type":"session.created"`)
}

func TestEventsStreamHandler_MethodNotAllowed(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	bus := events.NewBus(log)
	handler := NewEventsStreamHandler(bus, log)

	req := httptest.NewRequest(http.MethodPost, "/api/events/stream", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
