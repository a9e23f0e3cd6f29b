// Package handlers provides HTTP handlers for wallet operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/modules/wallets"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles wallet HTTP requests
type Handler struct {
	engine *wallets.Engine
	log    zerolog.Logger
}

// NewHandler creates a new wallets handler
func NewHandler(engine *wallets.Engine, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log.With().Str("handler", "wallets").Logger(),
	}
}

// HandleListWallets handles GET /api/wallets
func (h *Handler) HandleListWallets(w http.ResponseWriter, r *http.Request) {
	all := h.engine.GetAllWallets()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"wallets": all,
			"count":   len(all),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleResolveFilter handles GET /api/wallets/resolve?filter=2,10
func (h *Handler) HandleResolveFilter(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")

	available := h.engine.GetAvailableWallets(filter)

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"filter":  filter,
			"wallets": available,
			"count":   len(available),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleCheckAvailability handles GET /api/wallets/check?filter=2,10&name=eur-main
func (h *Handler) HandleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	name := r.URL.Query().Get("name")

	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	available := h.engine.IsAvailableInWallet(filter, name)

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"filter":    filter,
			"wallet":    name,
			"available": available,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetDisplayName handles GET /api/wallets/{id}/display-name
func (h *Handler) HandleGetDisplayName(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"wallet_id":    walletID,
			"display_name": h.engine.GetWalletDisplayName(walletID),
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
