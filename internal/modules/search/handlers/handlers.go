// Package handlers provides HTTP handlers for search operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/modules/search"
	"github.com/rs/zerolog"
)

// Handler handles search HTTP requests
type Handler struct {
	service *search.Service
	log     zerolog.Logger
}

// NewHandler creates a new search handler
func NewHandler(service *search.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "search").Logger(),
	}
}

// HandleSearch handles GET /api/search?q=apple&wallet_id=10&max_results=20
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
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

	results := h.service.Search(query, walletID, maxResults)

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"query":     query,
			"wallet_id": walletID,
			"results":   results,
			"count":     len(results),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleMetrics handles GET /api/search/metrics
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"data": map[string]interface{}{
			"metrics":          h.service.Metrics().Snapshot(),
			"instrument_count": h.service.InstrumentCount(),
			"score_threshold":  h.service.Threshold(),
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
