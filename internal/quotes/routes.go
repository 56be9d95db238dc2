package quotes

import "github.com/go-chi/chi/v5"

// MountRoutes registers the quote API below the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/next-number", h.nextNumber)
	r.Get("/stats", h.stats)
	r.Get("/selected", h.selected)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/status", h.setStatus)
	r.Post("/{id}/invoice", h.invoice)
}
