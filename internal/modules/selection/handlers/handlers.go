// Package handlers provides HTTP handlers for selection operations. All
// routes are session-scoped and mounted under /sessions/{id}/selections.
package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles selection HTTP requests
type Handler struct {
	registry     *sessions.Registry
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new selections handler
func NewHandler(registry *sessions.Registry, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		registry:     registry,
		eventManager: eventManager,
		log:          log.With().Str("handler", "selections").Logger(),
	}
}

// AddSelectionRequest is the body for POST /sessions/{id}/selections.
type AddSelectionRequest struct {
	Result      domain.SearchResult `json:"result"`
	SourceQuery string              `json:"source_query"`
}

// HandleList handles GET /api/sessions/{id}/selections
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	selections := sess.Selections.Selections()
	metadata := make(map[string]domain.SelectionMetadata, len(selections))
	for _, sel := range selections {
		if meta, found := sess.Selections.MetadataByKey(sel.Key()); found {
			metadata[sel.Key()] = meta
		}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session_id":         sess.ID,
			"selections":         selections,
			"selection_metadata": metadata,
			"count":              len(selections),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleAdd handles POST /api/sessions/{id}/selections
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Result.Name == "" && req.Result.InstrumentID == 0 {
		http.Error(w, "result is required", http.StatusBadRequest)
		return
	}

	if !sess.Selections.Add(req.Result, req.SourceQuery) {
		http.Error(w, "instrument already selected", http.StatusConflict)
		return
	}
	h.persist(sess)

	h.eventManager.EmitTyped(events.SelectionAdded, "selection", &events.SelectionAddedData{
		SessionID:     sess.ID,
		InstrumentKey: req.Result.Key(),
		Name:          req.Result.Name,
		Ticker:        req.Result.Ticker,
		SourceQuery:   req.SourceQuery,
	})

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session_id":     sess.ID,
			"instrument_key": req.Result.Key(),
			"count":          sess.Selections.Count(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusCreated, response)
}

// HandleGet handles GET /api/sessions/{id}/selections/{key}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	key := h.keyParam(r)
	selected := sess.Selections.SelectionByKey(key)
	if selected == nil {
		http.Error(w, "selection not found", http.StatusNotFound)
		return
	}
	meta, _ := sess.Selections.MetadataByKey(key)

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session_id": sess.ID,
			"selection":  selected,
			"selected":   meta,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleRemove handles DELETE /api/sessions/{id}/selections/{key}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	key := h.keyParam(r)
	if !sess.Selections.RemoveKey(key) {
		http.Error(w, "selection not found", http.StatusNotFound)
		return
	}
	h.persist(sess)

	h.eventManager.EmitTyped(events.SelectionRemoved, "selection", &events.SelectionRemovedData{
		SessionID:     sess.ID,
		InstrumentKey: key,
	})

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session_id":     sess.ID,
			"instrument_key": key,
			"count":          sess.Selections.Count(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleClear handles POST /api/sessions/{id}/selections/clear?confirm=true
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("confirm") != "true" {
		http.Error(w, "clear requires confirm=true", http.StatusBadRequest)
		return
	}

	cleared := sess.Selections.Count()
	sess.Selections.Clear(true)
	h.persist(sess)

	h.eventManager.EmitTyped(events.SelectionsCleared, "selection", &events.SelectionsClearedData{
		SessionID: sess.ID,
		Count:     cleared,
	})

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session_id": sess.ID,
			"cleared":    cleared,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSummary handles GET /api/sessions/{id}/selections/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session_id": sess.ID,
			"summary":    sess.Selections.Summary(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// keyParam extracts the instrument key path segment. Keys contain pipes, so
// clients usually send them percent-encoded and chi leaves them that way.
func (h *Handler) keyParam(r *http.Request) string {
	raw := chi.URLParam(r, "key")
	if key, err := url.PathUnescape(raw); err == nil {
		return key
	}
	return raw
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*sessions.Session, bool) {
	sess, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// persist writes the session snapshot after a mutation. The in-memory state
// is already updated, so a store failure is logged rather than surfaced.
func (h *Handler) persist(sess *sessions.Session) {
	if err := h.registry.Persist(sess); err != nil {
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to persist selections")
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
