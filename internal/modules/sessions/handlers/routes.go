package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all session routes, including the per-session
// selection routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)
		r.Delete("/{id}", h.HandleDelete)
		r.Put("/{id}/threshold", h.HandleSetThreshold)
		r.Get("/{id}/search", h.HandleSearch)

		if h.selections != nil {
			r.Route("/{id}/selections", h.selections.RegisterRoutes)
		}
	})
}
