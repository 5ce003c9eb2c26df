package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents booking lifecycle state (matches booking_status enum)
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Blocks reports whether a booking in this status occupies its time slot.
// Only cancelled bookings release their interval.
func (s Status) Blocks() bool {
	return s != StatusCancelled
}

// Interval is a half-open time range [Start, End). Adjacent intervals that
// share a boundary instant do not overlap.
type Interval struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// IsValid reports whether the interval has positive duration
func (iv Interval) IsValid() bool {
	return iv.End.After(iv.Start)
}

// Duration returns End - Start
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two half-open intervals intersect
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Booking is a reservation of one room for one interval
type Booking struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	TenantID      uuid.UUID      `db:"tenant_id" json:"tenant_id"`
	RoomID        uuid.UUID      `db:"room_id" json:"room_id"`
	CustomerName  string         `db:"customer_name" json:"customer_name"`
	CustomerPhone sql.NullString `db:"customer_phone" json:"customer_phone,omitempty"`
	StartTime     time.Time      `db:"start_time" json:"start_time"`
	EndTime       time.Time      `db:"end_time" json:"end_time"`
	Status        Status         `db:"status" json:"status"`
	PriceCents    sql.NullInt64  `db:"price_cents" json:"price_cents,omitempty"`
	Notes         sql.NullString `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Interval returns the booking's occupied time range
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}
