package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbx/kbx-api/internal/domain/businesshours"
)

// PlanType classifies the outcome of a placement resolution
type PlanType string

const (
	PlanMove     PlanType = "move"
	PlanSwap     PlanType = "swap"
	PlanRejected PlanType = "rejected"
)

// RejectReason explains why a plan was rejected
type RejectReason string

const (
	ReasonInvalidInterval      RejectReason = "INVALID_INTERVAL"
	ReasonMultipleConflicts    RejectReason = "MULTIPLE_CONFLICTS"
	ReasonOutsideBusinessHours RejectReason = "OUTSIDE_BUSINESS_HOURS"
	ReasonOccupied             RejectReason = "OCCUPIED"
)

// Change is one booking's proposed new placement
type Change struct {
	BookingID uuid.UUID `json:"booking_id"`
	RoomID    uuid.UUID `json:"room_id"`
	Interval  Interval  `json:"interval"`
}

// Plan is a proposed, not-yet-committed set of booking mutations. Applying it
// is the store's job; a plan may be abandoned without cleanup.
type Plan struct {
	Type      PlanType     `json:"type"`
	Changes   []Change     `json:"changes,omitempty"`
	Reason    RejectReason `json:"reason,omitempty"`
	Conflicts []Booking    `json:"conflicts,omitempty"`
}

func rejected(reason RejectReason, conflicts []Booking) Plan {
	return Plan{Type: PlanRejected, Reason: reason, Conflicts: conflicts}
}

// Edge selects which boundary of an interval a resize adjusts
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// CheckConflict returns the bookings in the given room whose intervals overlap
// the candidate. Cancelled bookings and any booking in exclude are skipped.
// Endpoints may touch: a booking ending at the candidate's start (or starting
// at its end) does not conflict.
func CheckConflict(bookings []Booking, roomID uuid.UUID, candidate Interval, exclude ...uuid.UUID) ([]Booking, error) {
	if !candidate.IsValid() {
		return nil, ErrInvalidInterval
	}

	var conflicts []Booking
	for _, b := range bookings {
		if b.RoomID != roomID || !b.Status.Blocks() {
			continue
		}
		if containsID(exclude, b.ID) {
			continue
		}
		if b.Interval().Overlaps(candidate) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}

// ResolvePlacement decides what dropping `moving` onto targetRoomID/target
// means. An empty slot yields a Move. Exactly one overlapping booking yields a
// Swap: the other booking relocates to moving's original room, anchored at
// moving's original start and keeping its own duration. Two or more
// overlapping bookings are ambiguous and always rejected.
//
// bookings must contain the active bookings of both the target room and
// moving's original room; week is the tenant's business hours. The returned
// plan is a proposal only, nothing is persisted here.
func ResolvePlacement(moving Booking, targetRoomID uuid.UUID, target Interval, bookings []Booking, week businesshours.Week) Plan {
	conflicts, err := CheckConflict(bookings, targetRoomID, target, moving.ID)
	if err != nil {
		return rejected(ReasonInvalidInterval, nil)
	}

	switch len(conflicts) {
	case 0:
		if !WithinBusinessHours(week, target) {
			return rejected(ReasonOutsideBusinessHours, nil)
		}
		return Plan{
			Type: PlanMove,
			Changes: []Change{
				{BookingID: moving.ID, RoomID: targetRoomID, Interval: target},
			},
		}

	case 1:
		other := conflicts[0]
		otherDest := Interval{
			Start: moving.StartTime,
			End:   moving.StartTime.Add(other.Interval().Duration()),
		}

		// The vacated slot must actually fit the displaced booking.
		blocked, _ := CheckConflict(bookings, moving.RoomID, otherDest, moving.ID, other.ID)
		if len(blocked) > 0 {
			return rejected(ReasonOccupied, blocked)
		}

		// On a same-room drag the two halves of the swap land in one room;
		// if they overlap each other the plan itself breaks the no-overlap
		// invariant, which no conflict scan above can see.
		if targetRoomID == moving.RoomID && target.Overlaps(otherDest) {
			return rejected(ReasonOccupied, []Booking{other})
		}

		if !WithinBusinessHours(week, target) || !WithinBusinessHours(week, otherDest) {
			return rejected(ReasonOutsideBusinessHours, nil)
		}

		return Plan{
			Type: PlanSwap,
			Changes: []Change{
				{BookingID: moving.ID, RoomID: targetRoomID, Interval: target},
				{BookingID: other.ID, RoomID: moving.RoomID, Interval: otherDest},
			},
		}

	default:
		return rejected(ReasonMultipleConflicts, conflicts)
	}
}

// ResolveResize adjusts one edge of the booking's interval to newBoundary,
// keeping the other edge fixed. Resizing never changes rooms, so there are no
// swap semantics: any overlap is a hard reject.
func ResolveResize(b Booking, edge Edge, newBoundary time.Time, bookings []Booking, week businesshours.Week, minDuration time.Duration) Plan {
	resized := b.Interval()
	switch edge {
	case EdgeStart:
		resized.Start = newBoundary
	case EdgeEnd:
		resized.End = newBoundary
	default:
		return rejected(ReasonInvalidInterval, nil)
	}

	if !resized.IsValid() || resized.Duration() < minDuration {
		return rejected(ReasonInvalidInterval, nil)
	}

	conflicts, err := CheckConflict(bookings, b.RoomID, resized, b.ID)
	if err != nil {
		return rejected(ReasonInvalidInterval, nil)
	}
	if len(conflicts) > 0 {
		return rejected(ReasonOccupied, conflicts)
	}

	if !WithinBusinessHours(week, resized) {
		return rejected(ReasonOutsideBusinessHours, nil)
	}

	return Plan{
		Type: PlanMove,
		Changes: []Change{
			{BookingID: b.ID, RoomID: b.RoomID, Interval: resized},
		},
	}
}

// WithinBusinessHours reports whether the interval lies entirely inside the
// tenant's open window. The window is taken from the weekday of the interval's
// start; when that fails, the previous day's window is consulted in case it
// runs overnight past midnight (an 01:00 booking under "open 20:00, close
// 04:00" belongs to the previous day's window). Partial containment is never
// accepted.
func WithinBusinessHours(week businesshours.Week, iv Interval) bool {
	if !iv.IsValid() {
		return false
	}

	if start, end, ok := week.On(iv.Start.Weekday()).WindowOn(iv.Start); ok {
		if !iv.Start.Before(start) && !iv.End.After(end) {
			return true
		}
	}

	prevDay := iv.Start.AddDate(0, 0, -1)
	prev := week.On(prevDay.Weekday())
	if prev.IsOvernight() {
		if start, end, ok := prev.WindowOn(prevDay); ok {
			if !iv.Start.Before(start) && !iv.End.After(end) {
				return true
			}
		}
	}

	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
