package user

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidRole   = errors.New("invalid user role")
	ErrInvalidTenant = errors.New("user does not belong to tenant")
)
