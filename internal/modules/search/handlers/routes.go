package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all search routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/search", func(r chi.Router) {
		r.Get("/", h.HandleSearch)
		r.Get("/metrics", h.HandleMetrics)
		r.Get("/live", h.HandleLiveSearch)
	})
}
