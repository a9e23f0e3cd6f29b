package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers selection routes relative to the session prefix,
// typically /sessions/{id}/selections.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleAdd)
	r.Post("/clear", h.HandleClear)
	r.Get("/summary", h.HandleSummary)
	r.Get("/{key}", h.HandleGet)
	r.Delete("/{key}", h.HandleRemove)
}
