package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Get("/{key}", h.HandleGet)
		r.Put("/{key}", h.HandleSet)
		r.Delete("/{key}", h.HandleDelete)
	})
}
