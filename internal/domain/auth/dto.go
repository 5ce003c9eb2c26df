package auth

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest for POST /auth/register. Creates the tenant (venue)
// together with its owner account.
type RegisterRequest struct {
	VenueName string `json:"venue_name" validate:"required,min=2,max=200"`
	Timezone  string `json:"timezone" validate:"omitempty,max=64"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest for POST /auth/refresh and /auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse returned after login/register
type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

// UserResponse represents user in API response
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
}

// TokensResponse represents tokens in API response
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds until access token expires
}

// NewUserResponse creates UserResponse from user data
func NewUserResponse(id, tenantID uuid.UUID, email, role string, createdAt time.Time) UserResponse {
	return UserResponse{
		ID:        id,
		TenantID:  tenantID,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt.Format(time.RFC3339),
	}
}
