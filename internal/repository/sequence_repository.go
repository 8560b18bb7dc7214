package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Order numbers are the date key (YYYYMMDD) followed by a zero-padded
// daily sequence: 8 + 5 = 13 characters.
const (
	dateKeyLayout    = "20060102"
	sequenceWidth    = 5
	orderNumberLen   = 13
	maxDailySequence = 99999
)

// ErrInvalidOrderNumber indicates that an order number is malformed or
// that its embedded date falls outside the accepted window.
var ErrInvalidOrderNumber = errors.New("invalid order number")

// ErrSequenceExhausted is returned when a date's sequence would exceed the
// five-digit space.  At that point no further orders can be numbered for
// the day.
var ErrSequenceExhausted = errors.New("daily sequence exhausted")

// SequenceRepo allocates the per-day monotonic counter used to build
// order numbers.  The counter row is locked for the duration of the
// enclosing transaction, so concurrent allocations for the same date
// serialize and an aborted transaction gives its increment back (leaving
// an acceptable gap).
type SequenceRepo struct {
	db *sql.DB
}

// NewSequenceRepo returns a new SequenceRepo bound to the given database.
func NewSequenceRepo(db *sql.DB) *SequenceRepo { return &SequenceRepo{db: db} }

// NextTx increments and returns the sequence for dateKey within the
// caller's transaction.  The row is created at 0 on first use, then read
// under FOR UPDATE so only one transaction at a time can advance a date.
// Only a single row is ever locked per allocation, so there is no lock
// ordering to get wrong.
func (r *SequenceRepo) NextTx(ctx context.Context, tx *sql.Tx, dateKey string) (int, error) {
	const ensure = `INSERT IGNORE INTO daily_sequences (date_key, sequence) VALUES (?, 0)`
	if _, err := tx.ExecContext(ctx, ensure, dateKey); err != nil {
		return 0, fmt.Errorf("ensure sequence row %s: %w", dateKey, err)
	}
	const lock = `SELECT sequence FROM daily_sequences WHERE date_key = ? FOR UPDATE`
	var seq int
	if err := tx.QueryRowContext(ctx, lock, dateKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("lock sequence row %s: %w", dateKey, err)
	}
	if seq >= maxDailySequence {
		return 0, fmt.Errorf("date %s: %w", dateKey, ErrSequenceExhausted)
	}
	seq++
	const update = `UPDATE daily_sequences SET sequence = ? WHERE date_key = ?`
	if _, err := tx.ExecContext(ctx, update, seq, dateKey); err != nil {
		return 0, fmt.Errorf("advance sequence row %s: %w", dateKey, err)
	}
	return seq, nil
}

// DateKey formats an instant as the YYYYMMDD key used for sequence rows
// and order number prefixes.  The UTC day is used everywhere so that one
// calendar date maps to exactly one counter row.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateKeyLayout)
}

// FormatOrderNumber builds the externally visible order number from a
// date key and an allocated sequence value.
func FormatOrderNumber(dateKey string, seq int) string {
	return fmt.Sprintf("%s%0*d", dateKey, sequenceWidth, seq)
}

// ValidateOrderNumber checks that an order number has the expected shape
// and that its embedded date lies within the retention window: no older
// than retentionDays before now and no later than tomorrow (to tolerate
// clock skew around midnight).  It returns ErrInvalidOrderNumber wrapped
// with the reason on failure.
func ValidateOrderNumber(orderNumber string, now time.Time, retentionDays int) error {
	if len(orderNumber) != orderNumberLen {
		return fmt.Errorf("%w: want %d characters, got %d", ErrInvalidOrderNumber, orderNumberLen, len(orderNumber))
	}
	for _, r := range orderNumber {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: non-digit character", ErrInvalidOrderNumber)
		}
	}
	day, err := time.ParseInLocation(dateKeyLayout, orderNumber[:len(dateKeyLayout)], time.UTC)
	if err != nil {
		return fmt.Errorf("%w: bad date prefix", ErrInvalidOrderNumber)
	}
	oldest := now.UTC().AddDate(0, 0, -retentionDays)
	newest := now.UTC().AddDate(0, 0, 1)
	if day.Before(oldest.Truncate(24*time.Hour)) || day.After(newest) {
		return fmt.Errorf("%w: date outside retention window", ErrInvalidOrderNumber)
	}
	return nil
}
