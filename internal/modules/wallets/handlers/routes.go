package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all wallet routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/wallets", func(r chi.Router) {
		r.Get("/", h.HandleListWallets)
		r.Get("/resolve", h.HandleResolveFilter)
		r.Get("/check", h.HandleCheckAvailability)
		r.Get("/{id}/display-name", h.HandleGetDisplayName)
	})
}
