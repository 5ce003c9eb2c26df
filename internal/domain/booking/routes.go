package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns booking router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Put("/{id}/move", h.Move)
	r.Put("/{id}/resize", h.Resize)
	r.Delete("/{id}", h.Cancel)

	return r
}
