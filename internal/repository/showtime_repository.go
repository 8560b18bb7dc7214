package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/NorthFirstGroup/backend/internal/model"
)

// ShowtimeRepo manages showtimes and their priced sections.  Section
// vacancy is the durable remaining-seat count; it is only ever decremented
// through DeductVacancyTx inside the order transaction, mirroring a
// deduction the Redis counter has already admitted.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo returns a new ShowtimeRepo bound to the given database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// GetWithSectionsTx loads a showtime and all of its sections within the
// caller's transaction.  The showtime must belong to the given activity;
// otherwise ErrShowtimeNotFound is returned.  Sections are ordered by
// zone label for deterministic output.
func (r *ShowtimeRepo) GetWithSectionsTx(ctx context.Context, tx *sql.Tx, showtimeID string, activityID int64) (*model.Showtime, error) {
	const q = `SELECT id, activity_id, site_id, start_time, created_at, updated_at
	           FROM showtimes
	           WHERE id = ? AND activity_id = ?`
	var s model.Showtime
	err := tx.QueryRowContext(ctx, q, showtimeID, activityID).Scan(
		&s.ID, &s.ActivityID, &s.SiteID, &s.StartTime, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowtimeNotFound
	}
	if err != nil {
		return nil, err
	}

	const secQ = `SELECT id, showtime_id, section, price, capacity, vacancy
	              FROM showtime_sections
	              WHERE showtime_id = ?
	              ORDER BY section`
	rows, err := tx.QueryContext(ctx, secQ, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sec model.ShowtimeSection
		if err := rows.Scan(&sec.ID, &sec.ShowtimeID, &sec.Section, &sec.Price, &sec.Capacity, &sec.Vacancy); err != nil {
			return nil, err
		}
		s.Sections = append(s.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSections returns all sections of a showtime outside any transaction.
// It is used when seeding or rebuilding the seat counter cache.  An empty
// slice with ErrShowtimeNotFound is returned when the showtime has no
// sections at all.
func (r *ShowtimeRepo) ListSections(ctx context.Context, showtimeID string) ([]model.ShowtimeSection, error) {
	const q = `SELECT id, showtime_id, section, price, capacity, vacancy
	           FROM showtime_sections
	           WHERE showtime_id = ?
	           ORDER BY section`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sections []model.ShowtimeSection
	for rows.Next() {
		var sec model.ShowtimeSection
		if err := rows.Scan(&sec.ID, &sec.ShowtimeID, &sec.Section, &sec.Price, &sec.Capacity, &sec.Vacancy); err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, ErrShowtimeNotFound
	}
	return sections, nil
}

// DeductVacancyTx decrements a section's durable vacancy by qty within the
// caller's transaction.  The WHERE guard refuses to take the count below
// zero; when it triggers, no row is updated and ErrVacancyConflict is
// returned so the caller aborts and compensates the cache reservation.
func (r *ShowtimeRepo) DeductVacancyTx(ctx context.Context, tx *sql.Tx, showtimeID, zone string, qty int) error {
	const q = `UPDATE showtime_sections
	           SET vacancy = vacancy - ?
	           WHERE showtime_id = ? AND section = ? AND vacancy >= ?`
	res, err := tx.ExecContext(ctx, q, qty, showtimeID, zone, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVacancyConflict
	}
	return nil
}
