package room

import (
	"time"

	"github.com/google/uuid"
)

// Category groups rooms for pricing and browsing
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryPremium  Category = "premium"
	CategoryVIP      Category = "vip"
	CategoryParty    Category = "party"
)

// Room is a bookable karaoke room owned by a tenant
type Room struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Category  Category  `db:"category" json:"category"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
