package tenant

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated venue organization. Every room, booking and
// business-hours row carries its id.
type Tenant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Timezone  string    `db:"timezone" json:"timezone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
