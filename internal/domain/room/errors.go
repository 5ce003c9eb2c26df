package room

import "errors"

var (
	ErrNotFound  = errors.New("room not found")
	ErrNameTaken = errors.New("room name already in use")
)
