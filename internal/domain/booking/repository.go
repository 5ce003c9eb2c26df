package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines booking data access. The bookings table carries a
// deferrable exclusion constraint on (room_id, tstzrange(start_time, end_time))
// for rows whose status is not cancelled, so the no-overlap invariant is
// re-validated at commit time regardless of what the engine decided earlier.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Booking, error)
	ListActiveByRooms(ctx context.Context, tenantID uuid.UUID, roomIDs []uuid.UUID) ([]Booking, error)
	ListRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, roomID *uuid.UUID) ([]Booking, error)
	Update(ctx context.Context, b *Booking) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error
	ApplyPlan(ctx context.Context, tenantID uuid.UUID, plan Plan) ([]Booking, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates booking repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (id, tenant_id, room_id, customer_name, customer_phone,
		                      start_time, end_time, status, price_cents, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		b.ID, b.TenantID, b.RoomID, b.CustomerName, b.CustomerPhone,
		b.StartTime, b.EndTime, b.Status, b.PriceCents, b.Notes).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return mapOverlapError(err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b,
		`SELECT * FROM bookings WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListActiveByRooms returns every non-cancelled booking in the given rooms
func (r *repository) ListActiveByRooms(ctx context.Context, tenantID uuid.UUID, roomIDs []uuid.UUID) ([]Booking, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT * FROM bookings
		WHERE tenant_id = $1 AND room_id = ANY($2) AND status <> 'cancelled'
		ORDER BY start_time
	`
	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, tenantID, pq.Array(roomIDs)); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListRange returns bookings overlapping [from, to), optionally for one room
func (r *repository) ListRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, roomID *uuid.UUID) ([]Booking, error) {
	query := `
		SELECT * FROM bookings
		WHERE tenant_id = $1 AND start_time < $3 AND end_time > $2
	`
	args := []interface{}{tenantID, from, to}
	if roomID != nil {
		query += ` AND room_id = $4`
		args = append(args, *roomID)
	}
	query += ` ORDER BY start_time`

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Update persists the editable fields of a booking
func (r *repository) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings
		SET customer_name = $1, customer_phone = $2, status = $3,
		    price_cents = $4, notes = $5, updated_at = now()
		WHERE tenant_id = $6 AND id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		b.CustomerName, b.CustomerPhone, b.Status, b.PriceCents, b.Notes,
		b.TenantID, b.ID).
		Scan(&b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return mapOverlapError(err)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3`,
		status, tenantID, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyPlan commits every change of a Move/Swap plan in one transaction. The
// exclusion constraint is deferred inside the transaction because a swap
// briefly places both bookings across each other's slots; it is re-checked as
// a whole at commit. Either all changes land or none do.
func (r *repository) ApplyPlan(ctx context.Context, tenantID uuid.UUID, plan Plan) ([]Booking, error) {
	if plan.Type != PlanMove && plan.Type != PlanSwap {
		return nil, ErrInvalidInterval
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SET CONSTRAINTS bookings_no_overlap DEFERRED`); err != nil {
		return nil, err
	}

	committed := make([]Booking, 0, len(plan.Changes))
	for _, change := range plan.Changes {
		var b Booking
		err := tx.GetContext(ctx, &b, `
			UPDATE bookings
			SET room_id = $1, start_time = $2, end_time = $3, updated_at = now()
			WHERE tenant_id = $4 AND id = $5
			RETURNING *
		`, change.RoomID, change.Interval.Start, change.Interval.End, tenantID, change.BookingID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, mapOverlapError(err)
		}
		committed = append(committed, b)
	}

	// Deferred constraints fire here
	if err := tx.Commit(); err != nil {
		return nil, mapOverlapError(err)
	}
	return committed, nil
}

// mapOverlapError converts a Postgres exclusion violation (class 23P01) into
// the engine-visible concurrent-conflict error
func mapOverlapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23P01" {
		return ErrConcurrentConflict
	}
	return err
}
