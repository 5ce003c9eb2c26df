package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kbx/kbx-api/internal/domain/businesshours"
	"github.com/kbx/kbx-api/internal/domain/room"
	"github.com/kbx/kbx-api/internal/domain/tenant"
)

// EventPublisher pushes booking mutations to connected calendar clients.
// A nil publisher disables realtime updates.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, tenantID uuid.UUID, event string, payload interface{})
}

// TenantResolver looks up the tenant owning a request, used for its timezone
type TenantResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
}

// Service drives the booking flows: it gathers state, runs the pure
// availability engine, and applies the resulting plan through the repository.
// The conflict check and the commit are separated in time, so every apply may
// come back with ErrConcurrentConflict; the decide-then-apply cycle is retried
// once before the error is surfaced.
type Service struct {
	repo        Repository
	rooms       room.Repository
	hours       businesshours.Repository
	tenants     TenantResolver
	events      EventPublisher
	minDuration time.Duration
}

// NewService creates booking service
func NewService(repo Repository, rooms room.Repository, hours businesshours.Repository, tenants TenantResolver, events EventPublisher, minDuration time.Duration) *Service {
	return &Service{
		repo:        repo,
		rooms:       rooms,
		hours:       hours,
		tenants:     tenants,
		events:      events,
		minDuration: minDuration,
	}
}

// MoveResult carries the committed outcome of a move/resize flow. For a
// rejected plan Bookings is empty and nothing was persisted.
type MoveResult struct {
	Plan     Plan      `json:"plan"`
	Bookings []Booking `json:"bookings,omitempty"`
}

// Create places a new booking. The create flow has no swap semantics: any
// non-empty conflict set rejects the request with a ConflictError listing the
// blocking bookings.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req *CreateRequest) (*Booking, error) {
	iv := Interval{Start: req.StartTime, End: req.EndTime}
	if !iv.IsValid() || iv.Duration() < s.minDuration {
		return nil, ErrInvalidInterval
	}

	rm, err := s.rooms.GetByID(ctx, tenantID, req.RoomID)
	if err != nil {
		return nil, err
	}
	if !rm.Active {
		return nil, ErrRoomInactive
	}

	loc, err := s.venueLocation(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	iv = localize(iv, loc)

	week, err := s.hours.GetWeek(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !WithinBusinessHours(week, iv) {
		return nil, ErrOutsideBusinessHours
	}

	status := StatusConfirmed
	if req.Status != "" {
		status = Status(req.Status)
	}

	b := &Booking{
		ID:            uuid.New(),
		TenantID:      tenantID,
		RoomID:        req.RoomID,
		CustomerName:  req.CustomerName,
		CustomerPhone: nullString(req.CustomerPhone),
		StartTime:     iv.Start,
		EndTime:       iv.End,
		Status:        status,
		PriceCents:    nullInt64(req.PriceCents),
		Notes:         nullString(req.Notes),
	}

	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.repo.ListActiveByRooms(ctx, tenantID, []uuid.UUID{req.RoomID})
		if err != nil {
			return nil, err
		}
		conflicts, err := CheckConflict(existing, req.RoomID, iv)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, &ConflictError{Conflicts: conflicts}
		}

		err = s.repo.Create(ctx, b)
		if err == nil {
			s.publish(ctx, tenantID, "booking.created", b)
			return b, nil
		}
		if !errors.Is(err, ErrConcurrentConflict) {
			return nil, err
		}
		// Lost the race, re-run the conflict check once so the caller gets
		// the blocking bookings instead of a bare error
	}
	return nil, ErrConcurrentConflict
}

// Get returns one booking
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Booking, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// List returns bookings overlapping [from, to), optionally for one room.
// Zero bounds default to midnight of the venue's current day and the 7 days
// after it; "today" is the venue's today, not the server's.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, from, to time.Time, roomID *uuid.UUID) ([]Booking, error) {
	if from.IsZero() || to.IsZero() {
		loc, err := s.venueLocation(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		now := time.Now().In(loc)
		if from.IsZero() {
			from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		}
		if to.IsZero() {
			to = from.AddDate(0, 0, 7)
		}
	}
	if !to.After(from) {
		return nil, ErrInvalidInterval
	}
	return s.repo.ListRange(ctx, tenantID, from, to, roomID)
}

// Update edits the non-placement fields of a booking
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req *UpdateRequest) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.CustomerName != "" {
		b.CustomerName = req.CustomerName
	}
	if req.CustomerPhone != nil {
		b.CustomerPhone = nullString(*req.CustomerPhone)
	}
	if req.Status != "" {
		b.Status = Status(req.Status)
	}
	if req.PriceCents != nil {
		b.PriceCents = nullInt64(*req.PriceCents)
	}
	if req.Notes != nil {
		b.Notes = nullString(*req.Notes)
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, tenantID, "booking.updated", b)
	return b, nil
}

// Cancel soft-deletes a booking by transitioning it to cancelled, which
// releases its interval
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.UpdateStatus(ctx, tenantID, id, StatusCancelled); err != nil {
		return err
	}
	s.publish(ctx, tenantID, "booking.cancelled", map[string]uuid.UUID{"id": id})
	return nil
}

// Move resolves a drag-and-drop of bookingID onto targetRoomID/target and,
// when the plan is a Move or Swap, commits it. A rejected plan is returned
// with a nil error; the caller branches on Plan.Type.
func (s *Service) Move(ctx context.Context, tenantID, bookingID, targetRoomID uuid.UUID, target Interval) (*MoveResult, error) {
	targetRoom, err := s.rooms.GetByID(ctx, tenantID, targetRoomID)
	if err != nil {
		return nil, err
	}
	if !targetRoom.Active {
		return nil, ErrRoomInactive
	}

	loc, err := s.venueLocation(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	target = localize(target, loc)

	week, err := s.hours.GetWeek(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		moving, err := s.repo.GetByID(ctx, tenantID, bookingID)
		if err != nil {
			return nil, err
		}
		*moving = localizeBooking(*moving, loc)

		bookings, err := s.repo.ListActiveByRooms(ctx, tenantID, []uuid.UUID{moving.RoomID, targetRoomID})
		if err != nil {
			return nil, err
		}
		for i := range bookings {
			bookings[i] = localizeBooking(bookings[i], loc)
		}

		plan := ResolvePlacement(*moving, targetRoomID, target, bookings, week)
		if plan.Type == PlanRejected {
			return &MoveResult{Plan: plan}, nil
		}

		committed, err := s.repo.ApplyPlan(ctx, tenantID, plan)
		if err == nil {
			result := &MoveResult{Plan: plan, Bookings: committed}
			s.publish(ctx, tenantID, "booking.moved", result)
			return result, nil
		}
		if !errors.Is(err, ErrConcurrentConflict) {
			return nil, err
		}
		lastErr = err
		log.Warn().Str("booking_id", bookingID.String()).Int("attempt", attempt+1).
			Msg("placement raced with a concurrent booking, retrying")
	}
	return nil, lastErr
}

// Resize adjusts one edge of a booking, keeping it in its room
func (s *Service) Resize(ctx context.Context, tenantID, bookingID uuid.UUID, edge Edge, newBoundary time.Time) (*MoveResult, error) {
	loc, err := s.venueLocation(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	newBoundary = newBoundary.In(loc)

	week, err := s.hours.GetWeek(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		b, err := s.repo.GetByID(ctx, tenantID, bookingID)
		if err != nil {
			return nil, err
		}
		*b = localizeBooking(*b, loc)

		bookings, err := s.repo.ListActiveByRooms(ctx, tenantID, []uuid.UUID{b.RoomID})
		if err != nil {
			return nil, err
		}
		for i := range bookings {
			bookings[i] = localizeBooking(bookings[i], loc)
		}

		plan := ResolveResize(*b, edge, newBoundary, bookings, week, s.minDuration)
		if plan.Type == PlanRejected {
			return &MoveResult{Plan: plan}, nil
		}

		committed, err := s.repo.ApplyPlan(ctx, tenantID, plan)
		if err == nil {
			result := &MoveResult{Plan: plan, Bookings: committed}
			s.publish(ctx, tenantID, "booking.resized", result)
			return result, nil
		}
		if !errors.Is(err, ErrConcurrentConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// venueLocation resolves the tenant's timezone; business hours are wall-clock
// times in the venue's own zone
func (s *Service) venueLocation(ctx context.Context, tenantID uuid.UUID) (*time.Location, error) {
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		log.Warn().Str("tenant_id", tenantID.String()).Str("timezone", t.Timezone).
			Msg("invalid tenant timezone, falling back to UTC")
		return time.UTC, nil
	}
	return loc, nil
}

func (s *Service) publish(ctx context.Context, tenantID uuid.UUID, event string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.PublishBookingEvent(ctx, tenantID, event, payload)
}

func localize(iv Interval, loc *time.Location) Interval {
	return Interval{Start: iv.Start.In(loc), End: iv.End.In(loc)}
}

func localizeBooking(b Booking, loc *time.Location) Booking {
	b.StartTime = b.StartTime.In(loc)
	b.EndTime = b.EndTime.In(loc)
	return b
}

func nullString(s string) (ns sql.NullString) {
	if s != "" {
		ns.String = s
		ns.Valid = true
	}
	return ns
}

func nullInt64(v int64) (ni sql.NullInt64) {
	if v != 0 {
		ni.Int64 = v
		ni.Valid = true
	}
	return ni
}
