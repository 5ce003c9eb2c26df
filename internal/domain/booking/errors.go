package booking

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("booking not found")
	ErrInvalidInterval      = errors.New("invalid booking interval")
	ErrOutsideBusinessHours = errors.New("interval is outside business hours")
	ErrConcurrentConflict   = errors.New("interval was taken by a concurrent booking")
	ErrRoomInactive         = errors.New("room is not active")
)

// ConflictError reports the bookings blocking a requested interval
type ConflictError struct {
	Conflicts []Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval occupied by %d booking(s)", len(e.Conflicts))
}
