package businesshours

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns business-hours router
func (h *Handler) Routes(authMiddleware, ownerMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.GetWeek)
	r.With(ownerMiddleware).Put("/{weekday}", h.UpsertDay)

	return r
}
