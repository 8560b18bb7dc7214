// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCreatedEvent is published after an order commits.  It carries
// enough information for downstream consumers (payment watchdogs,
// notification senders, analytics) without querying the primary database.
type OrderCreatedEvent struct {
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id"`
	ActivityID  int64  `json:"activity_id"`
	ShowtimeID  string `json:"showtime_id"`
	TotalCount  int    `json:"total_count"`
	TotalPrice  int    `json:"total_price"`
	CreatedAt   string `json:"created_at"`
}
