package catalog

import "github.com/go-chi/chi/v5"

// MountRoutes registers the catalog API below the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.replace)
	r.Put("/selection", h.selectCategory)
	r.Post("/main", h.addMain)
	r.Delete("/main/{id}", h.deleteMain)
	r.Post("/main/{id}/sub", h.addSub)
	r.Delete("/main/{mainID}/sub/{id}", h.deleteSub)
	r.Post("/sub/{subID}/articles", h.addArticle)
	r.Patch("/sub/{subID}/articles/{id}", h.updateArticle)
	r.Delete("/sub/{subID}/articles/{id}", h.deleteArticle)
}
