// Package handlers provides HTTP handlers for universe operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/universe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles universe HTTP requests
type Handler struct {
	repo         *universe.Repository
	importer     *universe.Importer
	cache        *universe.Cache
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new universe handler
func NewHandler(
	repo *universe.Repository,
	importer *universe.Importer,
	cache *universe.Cache,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		repo:         repo,
		importer:     importer,
		cache:        cache,
		eventManager: eventManager,
		log:          log.With().Str("handler", "universe").Logger(),
	}
}

// ImportRequest represents a request to import an instrument table
type ImportRequest struct {
	Path string `json:"path"`
}

// HandleListInstruments handles GET /api/instruments
func (h *Handler) HandleListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments := h.cache.Instruments()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"instruments": instruments,
			"count":       len(instruments),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetInstrument handles GET /api/instruments/{id}
func (h *Handler) HandleGetInstrument(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid instrument id", http.StatusBadRequest)
		return
	}

	inst, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to load instrument")
		http.Error(w, "Failed to load instrument", http.StatusInternalServerError)
		return
	}
	if inst == nil {
		http.Error(w, "Instrument not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"instrument": inst,
			"key":        inst.Key(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleStats handles GET /api/universe/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.Count()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count instruments")
		http.Error(w, "Failed to load universe stats", http.StatusInternalServerError)
		return
	}

	exchanges, err := h.repo.DistinctExchanges()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load exchanges")
		http.Error(w, "Failed to load universe stats", http.StatusInternalServerError)
		return
	}

	assetTypes, err := h.repo.DistinctAssetTypes()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load asset types")
		http.Error(w, "Failed to load universe stats", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"instrument_count": count,
			"cached_count":     h.cache.Count(),
			"cache_loaded_at":  h.cache.LoadedAt().Format(time.RFC3339),
			"exchanges":        exchanges,
			"asset_types":      assetTypes,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleImport handles POST /api/universe/import
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	stats, err := h.importer.ImportCSV(req.Path)
	if err != nil {
		h.log.Error().Err(err).Str("path", req.Path).Msg("Import failed")
		http.Error(w, "Import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.eventManager.EmitTyped(events.UniverseImported, "universe", &events.UniverseImportedData{
		Imported: stats.Imported,
		Skipped:  stats.Skipped,
		Source:   req.Path,
	})

	if err := h.reloadCache(); err != nil {
		http.Error(w, "Import stored but cache reload failed", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"imported": stats.Imported,
			"skipped":  stats.Skipped,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleReload handles POST /api/universe/reload
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.reloadCache(); err != nil {
		http.Error(w, "Reload failed", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"instrument_count": h.cache.Count(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) reloadCache() error {
	if err := h.cache.Reload(); err != nil {
		h.log.Error().Err(err).Msg("Cache reload failed")
		return err
	}

	h.eventManager.EmitTyped(events.UniverseReloaded, "universe", &events.UniverseReloadedData{
		InstrumentCount: h.cache.Count(),
	})
	return nil
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
