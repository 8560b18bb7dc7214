// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// order service and handlers to distinguish between different failure
// scenarios without string matching.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrActivityNotFound indicates that no active (non-deleted) activity
// exists for the requested ID.
var ErrActivityNotFound = errors.New("activity not found")

// ErrShowtimeNotFound indicates that the showtime does not exist or does
// not belong to the requested activity.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrOrderNotFound indicates that no order with the requested number
// exists for the calling user.
var ErrOrderNotFound = errors.New("order not found")

// ErrVacancyConflict is returned when the guarded vacancy decrement would
// drive a section's durable remaining count below zero.  Because the Redis
// counter already admitted the reservation this points at counter drift
// and the booking must be aborted and compensated.
var ErrVacancyConflict = errors.New("section vacancy below requested quantity")

// IsLockWaitTimeout reports whether err is a MySQL lock-wait timeout
// (error 1205), which the daily sequence allocator surfaces under heavy
// contention on its single counter row.
func IsLockWaitTimeout(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1205
}

// IsDuplicateEntry reports whether err is a MySQL duplicate-key violation
// (error 1062), e.g. on the unique order_number index.
func IsDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
