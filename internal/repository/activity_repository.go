package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/NorthFirstGroup/backend/internal/model"
)

// ActivityRepo reads activities from the catalog tables.  The reservation
// core never writes activities; catalog management owns those rows.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo returns a new ActivityRepo bound to the given database.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// GetActiveTx loads an activity by ID within the caller's transaction,
// skipping soft-deleted rows.  It returns ErrActivityNotFound when the
// activity does not exist or has been deleted.
func (r *ActivityRepo) GetActiveTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Activity, error) {
	const q = `SELECT id, name, start_time, sales_start_time, sales_end_time, is_deleted, created_at, updated_at
	           FROM activities
	           WHERE id = ? AND is_deleted = 0`
	var a model.Activity
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.Name, &a.StartTime, &a.SalesStartTime, &a.SalesEndTime,
		&a.IsDeleted, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
