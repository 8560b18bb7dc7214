package model

import "time"

// Order status values.  An order is created PROCESSING together with its
// line items and tickets; the payment collaborator later moves it to
// COMPLETED or CANCELLED.
const (
	OrderStatusProcessing = "PROCESSING"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// Payment status values reported by the payment gateway collaborator.
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusPaid      = "PAID"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
	PaymentStatusExpired   = "EXPIRED"
	PaymentStatusCancelled = "CANCELLED"
)

// Pickup status values.
const (
	PickupStatusNotPickedUp = "NOT_PICKED_UP"
	PickupStatusPickedUp    = "PICKED_UP"
	PickupStatusInvalid     = "INVALID"
)

// Order records one purchase of tickets for a showtime.  OrderNumber is the
// externally visible identifier: an 8-digit date followed by a 5-digit
// daily sequence, unique across all orders.
type Order struct {
	ID            int64      // orders.id
	UserID        string     // orders.user_id (UUID)
	ShowtimeID    string     // orders.showtime_id (UUID)
	OrderNumber   string     // orders.order_number (unique)
	Status        string     // orders.status
	TotalCount    int        // orders.total_count
	TotalPrice    int        // orders.total_price
	PaymentMethod string     // orders.payment_method
	PaymentStatus string     // orders.payment_status
	PickupStatus  string     // orders.pickup_status
	CreatedAt     time.Time  // orders.created_at
	PaidAt        *time.Time // orders.paid_at (nullable)
	UpdatedAt     time.Time  // orders.updated_at
}

// OrderItem is one zone-level line of an order: quantity tickets of one
// section at one unit price.
type OrderItem struct {
	ID         int64  // order_items.id
	OrderID    int64  // order_items.order_id
	Section    string // order_items.section
	Price      int    // order_items.price
	Quantity   int    // order_items.quantity
	TicketType int    // order_items.ticket_type (1 = electronic)
}

// Ticket status values.
const (
	TicketStatusUnused = 0
	TicketStatusUsed   = 1
)

// Ticket is one physical seat unit.  Quantity on the order item is expanded
// into one ticket row per seat, each with its own admission code.
type Ticket struct {
	ID          string // tickets.id (UUID)
	OrderID     int64  // tickets.order_id
	OrderItemID int64  // tickets.order_item_id
	OrderNumber string // tickets.order_number
	Section     string // tickets.section
	Price       int    // tickets.price
	TicketCode  string // tickets.ticket_code
	Status      int    // tickets.status (0 unused, 1 used)
}
