package room

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kbx/kbx-api/internal/middleware"
	"github.com/kbx/kbx-api/internal/pkg/response"
	"github.com/kbx/kbx-api/internal/pkg/validator"
)

// Handler handles room HTTP requests
type Handler struct {
	repo Repository
}

// NewHandler creates room handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /rooms?active=true
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	activeOnly := r.URL.Query().Get("active") == "true"

	rooms, err := h.repo.ListByTenant(r.Context(), tenantID, activeOnly)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to list rooms")
		response.InternalError(w)
		return
	}

	response.OK(w, rooms)
}

// Get handles GET /rooms/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid room id")
		return
	}

	result, err := h.repo.GetByID(r.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Room not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, result)
}

// Create handles POST /rooms
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	category := Category(req.Category)
	if category == "" {
		category = CategoryStandard
	}

	result := &Room{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     req.Name,
		Capacity: req.Capacity,
		Category: category,
		Active:   true,
	}

	if err := h.repo.Create(r.Context(), result); err != nil {
		if errors.Is(err, ErrNameTaken) {
			response.Conflict(w, "A room with this name already exists")
			return
		}
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to create room")
		response.InternalError(w)
		return
	}

	response.Created(w, result)
}

// Update handles PUT /rooms/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid room id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.repo.GetByID(r.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Room not found")
			return
		}
		response.InternalError(w)
		return
	}

	result.Name = req.Name
	result.Capacity = req.Capacity
	if req.Category != "" {
		result.Category = Category(req.Category)
	}

	if err := h.repo.Update(r.Context(), result); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Room not found")
		case errors.Is(err, ErrNameTaken):
			response.Conflict(w, "A room with this name already exists")
		default:
			log.Error().Err(err).Str("room_id", id.String()).Msg("failed to update room")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

// Deactivate handles DELETE /rooms/{id}. Rooms are never physically removed,
// existing bookings keep referencing them.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid room id")
		return
	}

	if err := h.repo.SetActive(r.Context(), tenantID, id, false); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Room not found")
			return
		}
		log.Error().Err(err).Str("room_id", id.String()).Msg("failed to deactivate room")
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}
