package room

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines room data access
type Repository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Room, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*Room, error)
	Update(ctx context.Context, room *Room) error
	SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates room repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, room *Room) error {
	query := `
		INSERT INTO rooms (id, tenant_id, name, capacity, category, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		room.ID, room.TenantID, room.Name, room.Capacity, room.Category, room.Active).
		Scan(&room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Room, error) {
	var room Room
	err := r.db.GetContext(ctx, &room,
		`SELECT * FROM rooms WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*Room, error) {
	query := `SELECT * FROM rooms WHERE tenant_id = $1`
	if activeOnly {
		query += ` AND active = true`
	}
	query += ` ORDER BY name`

	var rooms []*Room
	if err := r.db.SelectContext(ctx, &rooms, query, tenantID); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *repository) Update(ctx context.Context, room *Room) error {
	query := `
		UPDATE rooms
		SET name = $1, capacity = $2, category = $3, updated_at = now()
		WHERE tenant_id = $4 AND id = $5
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		room.Name, room.Capacity, room.Category, room.TenantID, room.ID).
		Scan(&room.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET active = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3`,
		active, tenantID, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
