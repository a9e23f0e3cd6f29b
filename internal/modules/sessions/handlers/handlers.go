// Package handlers provides HTTP handlers for session operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/modules/search"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SelectionRoutes is implemented by the selections handler; its routes are
// mounted under each session.
type SelectionRoutes interface {
	RegisterRoutes(r chi.Router)
}

// Handler handles session HTTP requests
type Handler struct {
	registry   *sessions.Registry
	search     *search.Service
	selections SelectionRoutes
	log        zerolog.Logger
}

// NewHandler creates a new sessions handler
func NewHandler(registry *sessions.Registry, searchService *search.Service, selections SelectionRoutes, log zerolog.Logger) *Handler {
	return &Handler{
		registry:   registry,
		search:     searchService,
		selections: selections,
		log:        log.With().Str("handler", "sessions").Logger(),
	}
}

// ThresholdRequest is the body for PUT /sessions/{id}/threshold.
type ThresholdRequest struct {
	Threshold int `json:"threshold"`
}

// HandleCreate handles POST /api/sessions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.registry.Create()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create session")
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session": sess.Info(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusCreated, response)
}

// HandleList handles GET /api/sessions
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	infos := h.registry.List()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"sessions": infos,
			"count":    len(infos),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGet handles GET /api/sessions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session": sess.Info(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDelete handles DELETE /api/sessions/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.registry.Delete(id) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session_id": id,
			"deleted":    true,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSetThreshold handles PUT /api/sessions/{id}/threshold
func (h *Handler) HandleSetThreshold(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ThresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Threshold < 0 || req.Threshold > 100 {
		http.Error(w, "threshold must be between 0 and 100", http.StatusBadRequest)
		return
	}

	sess.Matcher.SetThreshold(req.Threshold)
	if err := h.registry.Persist(sess); err != nil {
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to persist session threshold")
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session": sess.Info(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSearch handles GET /api/sessions/{id}/search?q=apple&wallet_id=10
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	walletID := r.URL.Query().Get("wallet_id")

	maxResults := search.UseDefaultMaxResults
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "max_results must be a non-negative integer", http.StatusBadRequest)
			return
		}
		maxResults = parsed
	}

	start := time.Now()
	results := sess.Matcher.Search(query, walletID, h.search.ResolveMaxResults(maxResults))
	h.search.RecordSearch(sess.ID, query, walletID, results, time.Since(start))

	// Flag results the session has already selected so clients can render
	// them without a second request.
	selected := make([]bool, len(results))
	for i, res := range results {
		selected[i] = sess.Selections.IsSelected(res)
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session_id": sess.ID,
			"query":      query,
			"wallet_id":  walletID,
			"results":    results,
			"selected":   selected,
			"count":      len(results),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*sessions.Session, bool) {
	sess, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
