// Package handlers provides HTTP handlers for settings operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/settings"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles settings HTTP requests
type Handler struct {
	repo         *settings.Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(repo *settings.Repository, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("handler", "settings").Logger(),
	}
}

// SetRequest represents a request to update a setting
type SetRequest struct {
	Value string `json:"value"`
}

// HandleGetAll handles GET /api/settings
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load settings")
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"settings": all,
			"count":    len(all),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGet handles GET /api/settings/{key}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := h.repo.Get(key)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to load setting")
		http.Error(w, "Failed to load setting", http.StatusInternalServerError)
		return
	}
	if value == nil {
		http.Error(w, "Setting not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"key":   key,
			"value": *value,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSet handles PUT /api/settings/{key}
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req SetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.Set(key, req.Value); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to store setting")
		http.Error(w, "Failed to store setting", http.StatusInternalServerError)
		return
	}

	h.eventManager.EmitTyped(events.SettingsChanged, "settings", &events.SettingsChangedData{
		Key:   key,
		Value: req.Value,
	})

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"key":   key,
			"value": req.Value,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDelete handles DELETE /api/settings/{key}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.repo.Delete(key); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to delete setting")
		http.Error(w, "Failed to delete setting", http.StatusInternalServerError)
		return
	}

	h.eventManager.EmitTyped(events.SettingsChanged, "settings", &events.SettingsChangedData{
		Key:   key,
		Value: nil,
	})

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"key":     key,
			"deleted": true,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
