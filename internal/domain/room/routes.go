package room

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns room router
func (h *Handler) Routes(authMiddleware, ownerMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	// Mutations are owner-only
	r.Group(func(r chi.Router) {
		r.Use(ownerMiddleware)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Deactivate)
	})

	return r
}
