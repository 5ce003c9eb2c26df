package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kbx/kbx-api/internal/domain/room"
	"github.com/kbx/kbx-api/internal/middleware"
	"github.com/kbx/kbx-api/internal/pkg/response"
	"github.com/kbx/kbx-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates booking handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /bookings
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

	b, err := h.svc.Create(r.Context(), tenantID, &req)
	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.As(err, &conflict):
			response.JSON(w, http.StatusConflict, map[string]interface{}{
				"code":      "OCCUPIED",
				"conflicts": conflict.Conflicts,
			})
		case errors.Is(err, ErrInvalidInterval):
			response.Error(w, http.StatusBadRequest, "INVALID_INTERVAL", "end_time must be after start_time and meet the minimum duration")
		case errors.Is(err, ErrOutsideBusinessHours):
			response.Error(w, http.StatusBadRequest, "OUTSIDE_BUSINESS_HOURS", "Booking must fall entirely within business hours")
		case errors.Is(err, ErrConcurrentConflict):
			response.Conflict(w, "The slot was taken by a concurrent booking, please retry")
		case errors.Is(err, room.ErrNotFound):
			response.NotFound(w, "Room not found")
		case errors.Is(err, ErrRoomInactive):
			response.BadRequest(w, "Room is not active")
		default:
			log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to create booking")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, b)
}

// List handles GET /bookings?from=...&to=...&room_id=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	from, to, err := parseRange(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	var roomID *uuid.UUID
	if raw := r.URL.Query().Get("room_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid room_id")
			return
		}
		roomID = &id
	}

	bookings, err := h.svc.List(r.Context(), tenantID, from, to, roomID)
	if err != nil {
		if errors.Is(err, ErrInvalidInterval) {
			response.BadRequest(w, "to must be after from")
			return
		}
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to list bookings")
		response.InternalError(w)
		return
	}

	response.OK(w, bookings)
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	b, err := h.svc.Get(r.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Booking not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, b)
}

// Update handles PUT /bookings/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
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

	b, err := h.svc.Update(r.Context(), tenantID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, ErrConcurrentConflict):
			// Reviving a cancelled booking re-arms the overlap check; the
			// interval may have been taken in the meantime
			response.Conflict(w, "The booking's slot is no longer free")
		default:
			log.Error().Err(err).Str("booking_id", id.String()).Msg("failed to update booking")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, b)
}

// Move handles PUT /bookings/{id}/move
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.svc.Move(r.Context(), tenantID, id, req.RoomID,
		Interval{Start: req.StartTime, End: req.EndTime})
	if err != nil {
		h.writePlacementError(w, id, err)
		return
	}

	h.writePlanResult(w, result)
}

// Resize handles PUT /bookings/{id}/resize
func (h *Handler) Resize(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.svc.Resize(r.Context(), tenantID, id, Edge(req.Edge), req.Boundary)
	if err != nil {
		h.writePlacementError(w, id, err)
		return
	}

	h.writePlanResult(w, result)
}

// Cancel handles DELETE /bookings/{id} (soft delete)
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	if err := h.svc.Cancel(r.Context(), tenantID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Booking not found")
			return
		}
		log.Error().Err(err).Str("booking_id", id.String()).Msg("failed to cancel booking")
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// writePlanResult renders a MoveResult: committed plans as 200 with the plan
// type and updated bookings, rejected plans as 400 with the reason
func (h *Handler) writePlanResult(w http.ResponseWriter, result *MoveResult) {
	if result.Plan.Type == PlanRejected {
		response.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"type":      PlanRejected,
			"reason":    result.Plan.Reason,
			"conflicts": result.Plan.Conflicts,
		})
		return
	}

	response.OK(w, result)
}

func (h *Handler) writePlacementError(w http.ResponseWriter, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, room.ErrNotFound):
		response.NotFound(w, "Room not found")
	case errors.Is(err, ErrRoomInactive):
		response.BadRequest(w, "Room is not active")
	case errors.Is(err, ErrConcurrentConflict):
		response.Conflict(w, "The slot was taken by a concurrent booking, please retry")
	default:
		log.Error().Err(err).Str("booking_id", id.String()).Msg("placement failed")
		response.InternalError(w)
	}
}

// parseRange reads from/to query params. Absent bounds stay zero; the service
// fills them in venue-local time.
func parseRange(r *http.Request) (from, to time.Time, err error) {
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be RFC3339")
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be RFC3339")
		}
	}
	return from, to, nil
}
