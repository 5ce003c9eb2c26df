package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kbx/kbx-api/internal/domain/businesshours"
)

// monday is a fixed reference day so weekday-dependent hours are stable
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}

func openWeek(openMin, closeMin int) businesshours.Week {
	var week businesshours.Week
	for i := range week {
		week[i] = businesshours.Hours{Weekday: i, OpenMinutes: openMin, CloseMinutes: closeMin}
	}
	return week
}

func confirmed(roomID uuid.UUID, start, end time.Time) Booking {
	return Booking{
		ID:        uuid.New(),
		RoomID:    roomID,
		StartTime: start,
		EndTime:   end,
		Status:    StatusConfirmed,
	}
}

func TestIntervalOverlaps(t *testing.T) {
	base := Interval{Start: at(monday, 18, 0), End: at(monday, 20, 0)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", Interval{at(monday, 18, 0), at(monday, 20, 0)}, true},
		{"partial overlap", Interval{at(monday, 19, 0), at(monday, 21, 0)}, true},
		{"contained", Interval{at(monday, 18, 30), at(monday, 19, 30)}, true},
		{"containing", Interval{at(monday, 17, 0), at(monday, 21, 0)}, true},
		{"touching at end", Interval{at(monday, 20, 0), at(monday, 22, 0)}, false},
		{"touching at start", Interval{at(monday, 16, 0), at(monday, 18, 0)}, false},
		{"disjoint", Interval{at(monday, 21, 0), at(monday, 22, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Fatalf("Overlaps = %v, want %v", got, tt.want)
			}
			// overlap is symmetric
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Fatalf("reverse Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckConflictSkipsCancelledAndOtherRooms(t *testing.T) {
	room1 := uuid.New()
	room2 := uuid.New()

	cancelled := confirmed(room1, at(monday, 18, 0), at(monday, 20, 0))
	cancelled.Status = StatusCancelled
	otherRoom := confirmed(room2, at(monday, 18, 0), at(monday, 20, 0))
	blocking := confirmed(room1, at(monday, 19, 0), at(monday, 21, 0))

	conflicts, err := CheckConflict(
		[]Booking{cancelled, otherRoom, blocking},
		room1,
		Interval{Start: at(monday, 18, 0), End: at(monday, 20, 0)},
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].ID != blocking.ID {
		t.Fatalf("expected only the confirmed same-room booking, got %v", conflicts)
	}
}

func TestCheckConflictExcludesSelf(t *testing.T) {
	roomID := uuid.New()
	b := confirmed(roomID, at(monday, 18, 0), at(monday, 20, 0))

	conflicts, err := CheckConflict([]Booking{b}, roomID, b.Interval(), b.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("booking must not conflict with itself, got %v", conflicts)
	}
}

func TestCheckConflictInvalidInterval(t *testing.T) {
	_, err := CheckConflict(nil, uuid.New(), Interval{Start: at(monday, 20, 0), End: at(monday, 18, 0)})
	if err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestResolvePlacementEmptySlotIsMove(t *testing.T) {
	room1 := uuid.New()
	room2 := uuid.New()
	week := openWeek(10*60, 22*60)

	moving := confirmed(room1, at(monday, 18, 0), at(monday, 20, 0))
	target := Interval{Start: at(monday, 14, 0), End: at(monday, 16, 0)}

	plan := ResolvePlacement(moving, room2, target, []Booking{moving}, week)
	if plan.Type != PlanMove {
		t.Fatalf("expected move, got %s (%s)", plan.Type, plan.Reason)
	}
	if len(plan.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(plan.Changes))
	}
	c := plan.Changes[0]
	if c.BookingID != moving.ID || c.RoomID != room2 || c.Interval != target {
		t.Fatalf("unexpected change %+v", c)
	}
}

func TestResolvePlacementSameRoomShiftIsMove(t *testing.T) {
	roomID := uuid.New()
	week := openWeek(10*60, 22*60)

	moving := confirmed(roomID, at(monday, 18, 0), at(monday, 20, 0))
	// shifting within its own slot must not conflict with itself
	target := Interval{Start: at(monday, 19, 0), End: at(monday, 21, 0)}

	plan := ResolvePlacement(moving, roomID, target, []Booking{moving}, week)
	if plan.Type != PlanMove {
		t.Fatalf("expected move, got %s (%s)", plan.Type, plan.Reason)
	}
}

func TestResolvePlacementSingleConflictIsSwap(t *testing.T) {
	room1 := uuid.New()
	room2 := uuid.New()
	week := openWeek(10*60, 22*60)

	// A occupies Room1 18:00-20:00, B occupies Room2 19:00-21:00. Dropping A
	// onto B's slot swaps them: B lands in Room1 anchored at A's original
	// start, keeping its own 2h duration.
	a := confirmed(room1, at(monday, 18, 0), at(monday, 20, 0))
	b := confirmed(room2, at(monday, 19, 0), at(monday, 21, 0))
	target := b.Interval()

	plan := ResolvePlacement(a, room2, target, []Booking{a, b}, week)
	if plan.Type != PlanSwap {
		t.Fatalf("expected swap, got %s (%s)", plan.Type, plan.Reason)
	}
	if len(plan.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(plan.Changes))
	}

	movA, movB := plan.Changes[0], plan.Changes[1]
	if movA.BookingID != a.ID || movA.RoomID != room2 || movA.Interval != target {
		t.Fatalf("unexpected change for moving booking: %+v", movA)
	}
	wantB := Interval{Start: at(monday, 18, 0), End: at(monday, 20, 0)}
	if movB.BookingID != b.ID || movB.RoomID != room1 || movB.Interval != wantB {
		t.Fatalf("unexpected change for displaced booking: %+v", movB)
	}
}

func TestResolvePlacementSwapKeepsDisplacedDuration(t *testing.T) {
	room1 := uuid.New()
	room2 := uuid.New()
	week := openWeek(10*60, 22*60)

	// A is 2h, B is 3h. After the swap B still runs 3h from A's old start.
	a := confirmed(room1, at(monday, 18, 0), at(monday, 20, 0))
	b := confirmed(room2, at(monday, 17, 0), at(monday, 20, 0))

	plan := ResolvePlacement(a, room2, b.Interval(), []Booking{a, b}, week)
	if plan.Type != PlanSwap {
		t.Fatalf("expected swap, got %s (%s)", plan.Type, plan.Reason)
	}
	wantB := Interval{Start: at(monday, 18, 0), End: at(monday, 21, 0)}
	if plan.Changes[1].Interval != wantB {
		t.Fatalf("displaced interval = %+v, want %+v", plan.Changes[1].Interval, wantB)
	}
}

func TestResolvePlacementMultipleConflictsRejected(t *testing.T) {
	room1 := uuid.New()
	room2 := uuid.New()
	week := openWeek(10*60, 22*60)

	a := confirmed(room1, at(monday, 18, 0), at(monday, 20, 0))
	b1 := confirmed(room2, at(monday, 18, 0), at(monday, 19, 0))
	b2 := confirmed(room2, at(monday, 19, 0), at(monday, 20, 0))

	plan := ResolvePlacement(a, room2, Interval{at(monday, 18, 0), at(monday, 20, 0)}, []Booking{a, b1, b2}, week)
	if plan.Type != PlanRejected || plan.Reason != ReasonMultipleConflicts {
		t.Fatalf("expected rejection with MULTIPLE_CONFLICTS, got %s (%s)", plan.Type, plan.Reason)
	}
	if len(plan.Conflicts) != 2 {
		t.Fatalf("expected both conflicts reported, got %d", len(plan.Conflicts))
	}
}

func TestResolvePlacementSwapDestinationOccupied(t *testing.T) {
	room1 := uuid.New()
	room2 := uuid.New()
	week := openWeek(10*60, 22*60)

	// The vacated slot in Room1 is already taken by a third booking, so the
	// displaced booking has nowhere to go.
	a := confirmed(room1, at(monday, 14, 0), at(monday, 16, 0))
	b := confirmed(room2, at(monday, 18, 0), at(monday, 20, 0))
	third := confirmed(room1, at(monday, 14, 0), at(monday, 15, 0))

	plan := ResolvePlacement(a, room2, b.Interval(), []Booking{a, b, third}, week)
	if plan.Type != PlanRejected || plan.Reason != ReasonOccupied {
		t.Fatalf("expected rejection with OCCUPIED, got %s (%s)", plan.Type, plan.Reason)
	}
	if len(plan.Conflicts) != 1 || plan.Conflicts[0].ID != third.ID {
		t.Fatalf("expected the blocking booking reported, got %v", plan.Conflicts)
	}
}

func TestResolvePlacementSameRoomOverlappingSwapRejected(t *testing.T) {
	roomID := uuid.New()
	week := openWeek(10*60, 22*60)

	// Dragging onto an overlapping neighbor in the same room: the displaced
	// booking would anchor at 18:00 and run 3h, overlapping the mover's new
	// 19:00-21:00 slot in the very same room. That plan must never come back
	// as a swap.
	a := confirmed(roomID, at(monday, 18, 0), at(monday, 20, 0))
	b := confirmed(roomID, at(monday, 18, 30), at(monday, 21, 30))

	plan := ResolvePlacement(a, roomID, Interval{at(monday, 19, 0), at(monday, 21, 0)}, []Booking{a, b}, week)
	if plan.Type != PlanRejected || plan.Reason != ReasonOccupied {
		t.Fatalf("expected rejection with OCCUPIED, got %s (%s)", plan.Type, plan.Reason)
	}
	if len(plan.Conflicts) != 1 || plan.Conflicts[0].ID != b.ID {
		t.Fatalf("expected the neighbor reported, got %v", plan.Conflicts)
	}
}

func TestResolvePlacementSameRoomDisjointSwapAllowed(t *testing.T) {
	roomID := uuid.New()
	week := openWeek(10*60, 22*60)

	// Same-room swap where the exchanged slots do not collide: A 12:00-13:00
	// dropped onto B 14:00-16:00; B relocates to 12:00-14:00 which only
	// touches A's new 14:00-16:00 slot at the boundary.
	a := confirmed(roomID, at(monday, 12, 0), at(monday, 13, 0))
	b := confirmed(roomID, at(monday, 14, 0), at(monday, 16, 0))

	plan := ResolvePlacement(a, roomID, b.Interval(), []Booking{a, b}, week)
	if plan.Type != PlanSwap {
		t.Fatalf("expected swap, got %s (%s)", plan.Type, plan.Reason)
	}
	if plan.Changes[0].Interval.Overlaps(plan.Changes[1].Interval) {
		t.Fatalf("swap changes must not overlap: %+v", plan.Changes)
	}
}

func TestResolvePlacementOutsideHoursRejected(t *testing.T) {
	room1 := uuid.New()
	room2 := uuid.New()
	week := openWeek(9*60, 17*60)

	moving := confirmed(room1, at(monday, 10, 0), at(monday, 12, 0))
	target := Interval{Start: at(monday, 16, 0), End: at(monday, 18, 0)}

	plan := ResolvePlacement(moving, room2, target, []Booking{moving}, week)
	if plan.Type != PlanRejected || plan.Reason != ReasonOutsideBusinessHours {
		t.Fatalf("expected rejection with OUTSIDE_BUSINESS_HOURS, got %s (%s)", plan.Type, plan.Reason)
	}
}

func TestResolvePlacementSwapChecksDisplacedHours(t *testing.T) {
	room1 := uuid.New()
	room2 := uuid.New()

	// Tuesday closes at 20:00, so the displaced 3h booking anchored at 18:00
	// would run past close.
	week := openWeek(10*60, 22*60)
	tuesday := int(time.Tuesday)
	week[tuesday].CloseMinutes = 20 * 60

	day := monday.AddDate(0, 0, 1)
	a := confirmed(room1, at(day, 18, 0), at(day, 19, 0))
	b := confirmed(room2, at(day, 16, 0), at(day, 19, 0))

	plan := ResolvePlacement(a, room2, Interval{at(day, 16, 0), at(day, 17, 0)}, []Booking{a, b}, week)
	if plan.Type != PlanRejected || plan.Reason != ReasonOutsideBusinessHours {
		t.Fatalf("expected rejection with OUTSIDE_BUSINESS_HOURS, got %s (%s)", plan.Type, plan.Reason)
	}
}

func TestWithinBusinessHours(t *testing.T) {
	day := openWeek(9*60, 17*60)
	night := openWeek(20*60, 4*60)

	closed := openWeek(9*60, 17*60)
	for i := range closed {
		closed[i].Closed = true
	}

	tuesday := monday.AddDate(0, 0, 1)

	tests := []struct {
		name string
		week businesshours.Week
		iv   Interval
		want bool
	}{
		{"inside window", day, Interval{at(monday, 9, 0), at(monday, 17, 0)}, true},
		{"runs past close", day, Interval{at(monday, 16, 0), at(monday, 18, 0)}, false},
		{"starts before open", day, Interval{at(monday, 8, 0), at(monday, 10, 0)}, false},
		{"closed day", closed, Interval{at(monday, 10, 0), at(monday, 11, 0)}, false},
		{"overnight crossing midnight", night, Interval{at(monday, 23, 0), at(tuesday, 1, 0)}, true},
		{"overnight early morning tail", night, Interval{at(tuesday, 1, 0), at(tuesday, 3, 0)}, true},
		{"overnight past close", night, Interval{at(tuesday, 3, 0), at(tuesday, 5, 0)}, false},
		{"overnight daytime gap", night, Interval{at(monday, 12, 0), at(monday, 14, 0)}, false},
		{"invalid interval", day, Interval{at(monday, 12, 0), at(monday, 11, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinBusinessHours(tt.week, tt.iv); got != tt.want {
				t.Fatalf("WithinBusinessHours = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveResize(t *testing.T) {
	roomID := uuid.New()
	week := openWeek(10*60, 22*60)
	minDuration := 15 * time.Minute

	b := confirmed(roomID, at(monday, 18, 0), at(monday, 20, 0))
	neighbor := confirmed(roomID, at(monday, 20, 30), at(monday, 21, 30))
	all := []Booking{b, neighbor}

	t.Run("extend end into free space", func(t *testing.T) {
		plan := ResolveResize(b, EdgeEnd, at(monday, 20, 30), all, week, minDuration)
		if plan.Type != PlanMove {
			t.Fatalf("expected move, got %s (%s)", plan.Type, plan.Reason)
		}
		want := Interval{Start: at(monday, 18, 0), End: at(monday, 20, 30)}
		if plan.Changes[0].Interval != want || plan.Changes[0].RoomID != roomID {
			t.Fatalf("unexpected change %+v", plan.Changes[0])
		}
	})

	t.Run("extend end into neighbor", func(t *testing.T) {
		plan := ResolveResize(b, EdgeEnd, at(monday, 21, 0), all, week, minDuration)
		if plan.Type != PlanRejected || plan.Reason != ReasonOccupied {
			t.Fatalf("expected rejection with OCCUPIED, got %s (%s)", plan.Type, plan.Reason)
		}
	})

	t.Run("shrink start", func(t *testing.T) {
		plan := ResolveResize(b, EdgeStart, at(monday, 19, 0), all, week, minDuration)
		if plan.Type != PlanMove {
			t.Fatalf("expected move, got %s (%s)", plan.Type, plan.Reason)
		}
	})

	t.Run("shrink below minimum duration", func(t *testing.T) {
		plan := ResolveResize(b, EdgeStart, at(monday, 19, 50), all, week, minDuration)
		if plan.Type != PlanRejected || plan.Reason != ReasonInvalidInterval {
			t.Fatalf("expected rejection with INVALID_INTERVAL, got %s (%s)", plan.Type, plan.Reason)
		}
	})

	t.Run("inverted interval", func(t *testing.T) {
		plan := ResolveResize(b, EdgeEnd, at(monday, 17, 0), all, week, minDuration)
		if plan.Type != PlanRejected || plan.Reason != ReasonInvalidInterval {
			t.Fatalf("expected rejection with INVALID_INTERVAL, got %s (%s)", plan.Type, plan.Reason)
		}
	})

	t.Run("extend past close", func(t *testing.T) {
		plan := ResolveResize(b, EdgeEnd, at(monday, 22, 30), []Booking{b}, week, minDuration)
		if plan.Type != PlanRejected || plan.Reason != ReasonOutsideBusinessHours {
			t.Fatalf("expected rejection with OUTSIDE_BUSINESS_HOURS, got %s (%s)", plan.Type, plan.Reason)
		}
	})

	t.Run("unknown edge", func(t *testing.T) {
		plan := ResolveResize(b, Edge("middle"), at(monday, 21, 0), all, week, minDuration)
		if plan.Type != PlanRejected || plan.Reason != ReasonInvalidInterval {
			t.Fatalf("expected rejection with INVALID_INTERVAL, got %s (%s)", plan.Type, plan.Reason)
		}
	})
}
