package booking

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /bookings
type CreateRequest struct {
	RoomID        uuid.UUID `json:"room_id" validate:"required"`
	CustomerName  string    `json:"customer_name" validate:"required,min=1,max=200"`
	CustomerPhone string    `json:"customer_phone" validate:"omitempty,max=32"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
	Status        string    `json:"status" validate:"booking_status"`
	PriceCents    int64     `json:"price_cents" validate:"gte=0"`
	Notes         string    `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateRequest for PUT /bookings/{id}. Pointer fields distinguish
// "not provided" from "set to empty".
type UpdateRequest struct {
	CustomerName  string  `json:"customer_name" validate:"omitempty,min=1,max=200"`
	CustomerPhone *string `json:"customer_phone" validate:"omitempty,max=32"`
	Status        string  `json:"status" validate:"booking_status"`
	PriceCents    *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
}

// MoveRequest for PUT /bookings/{id}/move
type MoveRequest struct {
	RoomID    uuid.UUID `json:"room_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// ResizeRequest for PUT /bookings/{id}/resize
type ResizeRequest struct {
	Edge     string    `json:"edge" validate:"required,oneof=start end"`
	Boundary time.Time `json:"boundary" validate:"required"`
}
