package businesshours

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/kbx/kbx-api/internal/middleware"
	"github.com/kbx/kbx-api/internal/pkg/response"
	"github.com/kbx/kbx-api/internal/pkg/validator"
)

// Handler handles business-hours HTTP requests
type Handler struct {
	repo Repository
}

// NewHandler creates business-hours handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// GetWeek handles GET /business-hours
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	week, err := h.repo.GetWeek(r.Context(), tenantID)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to load business hours")
		response.InternalError(w)
		return
	}

	response.OK(w, week[:])
}

// UpsertDay handles PUT /business-hours/{weekday}
func (h *Handler) UpsertDay(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	weekday, err := strconv.Atoi(chi.URLParam(r, "weekday"))
	if err != nil || weekday < 0 || weekday > 6 {
		response.BadRequest(w, "weekday must be 0 (Sunday) through 6 (Saturday)")
		return
	}

	var req UpsertDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	hours := &Hours{
		TenantID:     tenantID,
		Weekday:      weekday,
		OpenMinutes:  req.OpenMinutes,
		CloseMinutes: req.CloseMinutes,
		Closed:       req.Closed,
	}

	if err := h.repo.UpsertDay(r.Context(), hours); err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Int("weekday", weekday).
			Msg("failed to upsert business hours")
		response.InternalError(w)
		return
	}

	response.OK(w, hours)
}
