package businesshours

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines business-hours data access
type Repository interface {
	GetWeek(ctx context.Context, tenantID uuid.UUID) (Week, error)
	UpsertDay(ctx context.Context, hours *Hours) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates business-hours repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// GetWeek returns all seven weekday rows for the tenant. Days the tenant has
// never configured fall back to the default window.
func (r *repository) GetWeek(ctx context.Context, tenantID uuid.UUID) (Week, error) {
	var rows []Hours
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM business_hours WHERE tenant_id = $1 ORDER BY weekday`, tenantID)
	if err != nil {
		return Week{}, err
	}

	week := DefaultWeek(tenantID)
	for _, h := range rows {
		if h.Weekday >= 0 && h.Weekday < 7 {
			week[h.Weekday] = h
		}
	}
	return week, nil
}

// UpsertDay writes one weekday's window
func (r *repository) UpsertDay(ctx context.Context, hours *Hours) error {
	query := `
		INSERT INTO business_hours (tenant_id, weekday, open_minutes, close_minutes, closed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, weekday)
		DO UPDATE SET open_minutes = $3, close_minutes = $4, closed = $5, updated_at = now()
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		hours.TenantID, hours.Weekday, hours.OpenMinutes, hours.CloseMinutes, hours.Closed).
		Scan(&hours.UpdatedAt)
}
