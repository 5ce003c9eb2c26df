package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents user role within a tenant (matches user_role enum)
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// User represents a staff account scoped to one tenant
type User struct {
	ID           uuid.UUID `db:"id"`
	TenantID     uuid.UUID `db:"tenant_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`

	// Login tracking
	LastLoginAt sql.NullTime   `db:"last_login_at"`
	LastLoginIP sql.NullString `db:"last_login_ip"`

	// Timestamps
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsOwner returns true if user owns the tenant
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// ValidRoles returns list of valid roles for account creation
func ValidRoles() []Role {
	return []Role{RoleOwner, RoleStaff}
}

// IsValidRole checks if role is valid for account creation
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}
