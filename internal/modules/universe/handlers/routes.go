package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all universe routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/instruments", func(r chi.Router) {
		r.Get("/", h.HandleListInstruments)
		r.Get("/{id}", h.HandleGetInstrument)
	})

	r.Route("/universe", func(r chi.Router) {
		r.Get("/stats", h.HandleStats)
		r.Post("/import", h.HandleImport)
		r.Post("/reload", h.HandleReload)
	})
}
