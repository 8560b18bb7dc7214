package service

import "errors"

// Sentinel errors returned by the order service.  Handlers translate
// these into HTTP statuses with errors.Is; repositories contribute their
// own not-found sentinels which pass through unchanged.
var (
	// ErrValidation marks structurally invalid input.  It is always
	// returned before any side effect.
	ErrValidation = errors.New("invalid request")

	// ErrZoneNotFound means a requested zone does not exist among the
	// showtime's sections.
	ErrZoneNotFound = errors.New("zone not found in showtime")

	// ErrShowtimeUnconfigured means the showtime exists but has no priced
	// sections, so nothing can be sold for it.
	ErrShowtimeUnconfigured = errors.New("showtime has no sections")

	// ErrSalesWindowClosed means the current time lies outside the
	// activity's sales window.
	ErrSalesWindowClosed = errors.New("sales window closed")

	// ErrPriceMismatch means a submitted price differs from the section's
	// current price (stale-price protection).
	ErrPriceMismatch = errors.New("price mismatch")

	// ErrInsufficientSeats means a zone counter had fewer seats left than
	// requested.  Any zones already reserved by the attempt are released.
	ErrInsufficientSeats = errors.New("insufficient seats")

	// ErrAllocationContention means the daily sequence row could not be
	// locked in time.  The attempt may be retried.
	ErrAllocationContention = errors.New("order number allocation contention")

	// ErrPaymentMismatch means the gateway-confirmed amount does not equal
	// the order's total price.
	ErrPaymentMismatch = errors.New("payment amount mismatch")

	// ErrOrderNotPayable means the order is not in a state that accepts a
	// payment confirmation.
	ErrOrderNotPayable = errors.New("order not payable")
)
