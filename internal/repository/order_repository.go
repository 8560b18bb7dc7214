package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/NorthFirstGroup/backend/internal/model"
)

// OrderRepo persists orders, their zone line items and the per-seat
// ticket rows.  All three are written inside one transaction so a
// purchase attempt is either fully visible or not visible at all.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateTx inserts the order, its items and its tickets within the
// caller's transaction.  Generated IDs are written back onto the order
// and items; each ticket's OrderID/OrderItemID is filled from its
// position: tickets must be ordered so that itemIndex[i] names the index
// of the item that ticket i belongs to.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, order *model.Order, items []model.OrderItem, tickets []model.Ticket, itemIndex []int) error {
	const insOrder = `INSERT INTO orders
	    (user_id, showtime_id, order_number, status, total_count, total_price, payment_method, payment_status, pickup_status)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, insOrder,
		order.UserID, order.ShowtimeID, order.OrderNumber, order.Status,
		order.TotalCount, order.TotalPrice, order.PaymentMethod, order.PaymentStatus, order.PickupStatus,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = id

	// Items are inserted one by one (at most four per order) because each
	// generated ID is needed to link the ticket rows below.
	const insItem = `INSERT INTO order_items (order_id, section, price, quantity, ticket_type) VALUES (?, ?, ?, ?, ?)`
	for i := range items {
		items[i].OrderID = order.ID
		res, err := tx.ExecContext(ctx, insItem, items[i].OrderID, items[i].Section, items[i].Price, items[i].Quantity, items[i].TicketType)
		if err != nil {
			return err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		items[i].ID = itemID
	}

	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (id, order_id, order_item_id, order_number, section, price, ticket_code, status) VALUES `
	args := make([]interface{}, 0, len(tickets)*8)
	for i := range tickets {
		tickets[i].OrderID = order.ID
		tickets[i].OrderItemID = items[itemIndex[i]].ID
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			tickets[i].ID, tickets[i].OrderID, tickets[i].OrderItemID, tickets[i].OrderNumber,
			tickets[i].Section, tickets[i].Price, tickets[i].TicketCode, tickets[i].Status,
		)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// PaymentInfo carries the fields the payment boundary needs to verify and
// settle an order.
type PaymentInfo struct {
	OrderID       int64
	TotalPrice    int
	Status        string
	PaymentStatus string
}

// GetForPaymentTx locks the order row for the given number and returns
// the fields relevant to payment settlement.  ErrOrderNotFound is
// returned when no order carries the number.
func (r *OrderRepo) GetForPaymentTx(ctx context.Context, tx *sql.Tx, orderNumber string) (*PaymentInfo, error) {
	const q = `SELECT id, total_price, status, payment_status FROM orders WHERE order_number = ? FOR UPDATE`
	var p PaymentInfo
	err := tx.QueryRowContext(ctx, q, orderNumber).Scan(&p.OrderID, &p.TotalPrice, &p.Status, &p.PaymentStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkPaidTx settles an order after the payment gateway confirms: status
// COMPLETED, payment PAID, paid_at recorded.
func (r *OrderRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID int64, paidAt time.Time) error {
	const q = `UPDATE orders SET status = ?, payment_status = ?, paid_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.OrderStatusCompleted, model.PaymentStatusPaid, paidAt, orderID)
	return err
}

// TicketView is one seat unit as shown to the ticket holder.
type TicketView struct {
	TicketCode string `json:"ticket_code"`
	Section    string `json:"section"`
	Price      int    `json:"price"`
	Status     string `json:"status"`
}

// OrderDetail is the full view of one order returned to its owner,
// including event context and every ticket.
type OrderDetail struct {
	OrderNumber   string       `json:"order_number"`
	Status        string       `json:"status"`
	PaymentStatus string       `json:"payment_status"`
	EventName     string       `json:"event_name"`
	EventDate     string       `json:"event_date"`
	TotalCount    int          `json:"total_count"`
	TotalPrice    int          `json:"total_price"`
	CreatedAt     string       `json:"created_at"`
	Tickets       []TicketView `json:"tickets"`
}

// GetDetailByNumberForUser loads the order with the given number when it
// belongs to userID, including its tickets ordered by code.  It returns
// ErrOrderNotFound when the order does not exist or is owned by someone
// else; ownership and existence are deliberately indistinguishable.
func (r *OrderRepo) GetDetailByNumberForUser(ctx context.Context, userID, orderNumber string) (*OrderDetail, error) {
	const q = `SELECT o.order_number, o.status, o.payment_status, o.total_count, o.total_price, o.created_at,
	                  a.name, s.start_time
	           FROM orders o
	           JOIN showtimes s ON s.id = o.showtime_id
	           JOIN activities a ON a.id = s.activity_id
	           WHERE o.order_number = ? AND o.user_id = ?`
	var det OrderDetail
	var createdAt, startTime time.Time
	err := r.db.QueryRowContext(ctx, q, orderNumber, userID).Scan(
		&det.OrderNumber, &det.Status, &det.PaymentStatus, &det.TotalCount, &det.TotalPrice,
		&createdAt, &det.EventName, &startTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	det.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	det.EventDate = startTime.UTC().Format(time.RFC3339)

	const ticketQ = `SELECT t.ticket_code, t.section, t.price, t.status
	                 FROM tickets t
	                 JOIN orders o ON o.id = t.order_id
	                 WHERE o.order_number = ?
	                 ORDER BY t.ticket_code`
	rows, err := r.db.QueryContext(ctx, ticketQ, orderNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.Tickets = []TicketView{}
	for rows.Next() {
		var tv TicketView
		var status int
		if err := rows.Scan(&tv.TicketCode, &tv.Section, &tv.Price, &status); err != nil {
			return nil, err
		}
		tv.Status = ticketStatusLabel(status)
		det.Tickets = append(det.Tickets, tv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}

func ticketStatusLabel(status int) string {
	if status == model.TicketStatusUsed {
		return "USED"
	}
	return "UNUSED"
}

// OrderSummary is one row of a user's order listing.
type OrderSummary struct {
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	EventName     string `json:"event_name"`
	EventDate     string `json:"event_date"`
	TotalCount    int    `json:"total_count"`
	TotalPrice    int    `json:"total_price"`
	CreatedAt     string `json:"created_at"`
}

// OrderPage is a page of order summaries plus the total number of orders
// the user has across all pages.
type OrderPage struct {
	Items []OrderSummary `json:"items"`
	Total int            `json:"total"`
}

// ListParams controls pagination and ordering of ListByUser.  SortBy must
// be one of the whitelisted logical names accepted by sortColumn.
type ListParams struct {
	Page     int
	PageSize int
	SortBy   string
	Desc     bool
}

// sortColumn maps a caller-supplied logical sort name onto a real column
// expression.  Only whitelisted names are accepted; everything else is
// rejected before any SQL is assembled.
func sortColumn(sortBy string) (string, bool) {
	switch sortBy {
	case "event_date":
		return "s.start_time", true
	case "created_at":
		return "o.created_at", true
	case "total_price":
		return "o.total_price", true
	default:
		return "", false
	}
}

// ListByUser returns one page of the user's orders together with the
// overall count.  The sort column comes from the whitelist above and the
// direction from ListParams.Desc; page numbering starts at 1.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string, p ListParams) (*OrderPage, error) {
	col, ok := sortColumn(p.SortBy)
	if !ok {
		return nil, errors.New("unsupported sort column: " + p.SortBy)
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}

	const countQ = `SELECT COUNT(*) FROM orders WHERE user_id = ?`
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT o.order_number, o.status, o.payment_status, o.total_count, o.total_price, o.created_at,
	             a.name, s.start_time
	      FROM orders o
	      JOIN showtimes s ON s.id = o.showtime_id
	      JOIN activities a ON a.id = s.activity_id
	      WHERE o.user_id = ?
	      ORDER BY ` + col + ` ` + dir + `
	      LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, p.PageSize, (p.Page-1)*p.PageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := &OrderPage{Items: []OrderSummary{}, Total: total}
	for rows.Next() {
		var s OrderSummary
		var createdAt, startTime time.Time
		if err := rows.Scan(&s.OrderNumber, &s.Status, &s.PaymentStatus, &s.TotalCount, &s.TotalPrice,
			&createdAt, &s.EventName, &startTime); err != nil {
			return nil, err
		}
		s.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		s.EventDate = startTime.UTC().Format(time.RFC3339)
		page.Items = append(page.Items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return page, nil
}
