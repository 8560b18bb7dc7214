// Package service implements the order transaction coordinator: the unit
// of work that validates a purchase request, reserves seats against the
// Redis counters, allocates the daily order number and persists the order
// durably, compensating the counters whenever a later step fails.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/NorthFirstGroup/backend/internal/clock"
	"github.com/NorthFirstGroup/backend/internal/inventory"
	"github.com/NorthFirstGroup/backend/internal/model"
	"github.com/NorthFirstGroup/backend/internal/queue"
	"github.com/NorthFirstGroup/backend/internal/repository"
)

// Request bounds.  At most four zones per order and four seats per zone.
const (
	maxLineItems   = 4
	maxZoneQty     = 4
	maxPageSize    = 10
	compensateWait = 5 * time.Second
)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

// ActivityStore reads catalog activities.
type ActivityStore interface {
	GetActiveTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Activity, error)
}

// ShowtimeStore reads showtimes with their sections and mirrors admitted
// reservations into the durable vacancy counts.
type ShowtimeStore interface {
	GetWithSectionsTx(ctx context.Context, tx *sql.Tx, showtimeID string, activityID int64) (*model.Showtime, error)
	DeductVacancyTx(ctx context.Context, tx *sql.Tx, showtimeID, zone string, qty int) error
	ListSections(ctx context.Context, showtimeID string) ([]model.ShowtimeSection, error)
}

// SequenceStore allocates the per-date order number sequence.
type SequenceStore interface {
	NextTx(ctx context.Context, tx *sql.Tx, dateKey string) (int, error)
}

// OrderStore persists and reads orders.
type OrderStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, order *model.Order, items []model.OrderItem, tickets []model.Ticket, itemIndex []int) error
	GetForPaymentTx(ctx context.Context, tx *sql.Tx, orderNumber string) (*repository.PaymentInfo, error)
	MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID int64, paidAt time.Time) error
	GetDetailByNumberForUser(ctx context.Context, userID, orderNumber string) (*repository.OrderDetail, error)
	ListByUser(ctx context.Context, userID string, p repository.ListParams) (*repository.OrderPage, error)
}

// EventPublisher fans out domain events after commit.  Publishing is best
// effort; failures are logged and never fail the order.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, ev queue.OrderCreatedEvent) error
}

// OrderService coordinates seat reservation and order issuance.  The Redis
// seat counters sit outside the database transaction boundary, so every
// failure after a successful Reserve must release exactly the zones this
// attempt reserved.
type OrderService struct {
	tx            TxRunner
	activities    ActivityStore
	showtimes     ShowtimeStore
	sequences     SequenceStore
	orders        OrderStore
	seats         inventory.SeatCache
	events        EventPublisher
	clock         clock.Clock
	retentionDays int
}

// NewOrderService constructs an OrderService.  All dependencies except the
// event publisher must be non-nil; a nil publisher disables event fan-out.
func NewOrderService(tx TxRunner, activities ActivityStore, showtimes ShowtimeStore, sequences SequenceStore, orders OrderStore, seats inventory.SeatCache, events EventPublisher, clk clock.Clock, retentionDays int) *OrderService {
	if tx == nil || activities == nil || showtimes == nil || sequences == nil || orders == nil || seats == nil || clk == nil {
		panic("nil dependency passed to NewOrderService")
	}
	return &OrderService{
		tx:            tx,
		activities:    activities,
		showtimes:     showtimes,
		sequences:     sequences,
		orders:        orders,
		seats:         seats,
		events:        events,
		clock:         clk,
		retentionDays: retentionDays,
	}
}

// LineItem is one requested zone of a purchase.
type LineItem struct {
	Zone     string `json:"zone"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// CreateOrderInput is a purchase request for one showtime.
type CreateOrderInput struct {
	UserID     string
	ActivityID int64
	ShowtimeID string
	Items      []LineItem
}

// validate performs the structural checks that must fail before any side
// effect: field presence, UUID shape, item count and per-item bounds.
func (in *CreateOrderInput) validate() error {
	if uuid.Validate(in.UserID) != nil {
		return fmt.Errorf("%w: user id must be a UUID", ErrValidation)
	}
	if in.ActivityID <= 0 {
		return fmt.Errorf("%w: activity id must be positive", ErrValidation)
	}
	if uuid.Validate(in.ShowtimeID) != nil {
		return fmt.Errorf("%w: showtime id must be a UUID", ErrValidation)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: at least one line item is required", ErrValidation)
	}
	if len(in.Items) > maxLineItems {
		return fmt.Errorf("%w: at most %d line items allowed", ErrValidation, maxLineItems)
	}
	for i, it := range in.Items {
		if it.Zone == "" {
			return fmt.Errorf("%w: item %d: zone is required", ErrValidation, i)
		}
		if it.Price < 0 {
			return fmt.Errorf("%w: item %d: price must not be negative", ErrValidation, i)
		}
		if it.Quantity < 1 || it.Quantity > maxZoneQty {
			return fmt.Errorf("%w: item %d: quantity must be between 1 and %d", ErrValidation, i, maxZoneQty)
		}
	}
	return nil
}

// reservedZone tracks one successful cache deduction so it can be given
// back if the attempt fails later.
type reservedZone struct {
	zone string
	qty  int
}

// CreateOrder runs one purchase attempt end to end and returns the
// allocated order number.  Sequence of steps: structural validation, then
// inside one transaction: catalog checks, sales-window check, per-zone
// price verification, per-zone cache reservation, durable vacancy mirror,
// order number allocation and persistence of order + items + tickets.
// On any failure after a reservation succeeded, the transaction rolls
// back and every reserved zone is released against the cache, which the
// rollback cannot reach.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	var (
		orderNumber string
		reserved    []reservedZone
		event       queue.OrderCreatedEvent
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		activity, err := s.activities.GetActiveTx(ctx, tx, in.ActivityID)
		if err != nil {
			return err
		}
		showtime, err := s.showtimes.GetWithSectionsTx(ctx, tx, in.ShowtimeID, in.ActivityID)
		if err != nil {
			return err
		}
		if len(showtime.Sections) == 0 {
			return ErrShowtimeUnconfigured
		}

		now := s.clock.Now()
		if !activity.SalesOpenAt(now) {
			return ErrSalesWindowClosed
		}

		// Stale-price protection: every zone must exist and every submitted
		// price must exactly match the section's current price before any
		// counter is touched.
		for _, item := range in.Items {
			sec := showtime.SectionByZone(item.Zone)
			if sec == nil {
				return fmt.Errorf("%w: %s", ErrZoneNotFound, item.Zone)
			}
			if sec.Price != item.Price {
				return fmt.Errorf("%w: zone %s", ErrPriceMismatch, item.Zone)
			}
		}

		// Reserve zone by zone.  Zones are independent, not one multi-key
		// atomic set; the first failure stops the loop and the zones
		// collected in reserved are released by the caller's compensation.
		for _, item := range in.Items {
			ok, err := s.seats.Reserve(ctx, in.ShowtimeID, item.Zone, item.Quantity)
			if err != nil {
				// Counter store unreachable or unseeded: fail closed.
				return fmt.Errorf("seat reservation failed: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w: zone %s", ErrInsufficientSeats, item.Zone)
			}
			reserved = append(reserved, reservedZone{zone: item.Zone, qty: item.Quantity})
		}

		// Mirror each admitted deduction into the durable vacancy inside
		// the open transaction.
		for _, item := range in.Items {
			if err := s.showtimes.DeductVacancyTx(ctx, tx, in.ShowtimeID, item.Zone, item.Quantity); err != nil {
				return err
			}
		}

		dateKey := repository.DateKey(now)
		seq, err := s.sequences.NextTx(ctx, tx, dateKey)
		if err != nil {
			if repository.IsLockWaitTimeout(err) {
				return fmt.Errorf("%w: %v", ErrAllocationContention, err)
			}
			return err
		}
		orderNumber = repository.FormatOrderNumber(dateKey, seq)

		order, items, tickets, itemIndex := buildOrder(in, orderNumber)
		if err := s.orders.CreateTx(ctx, tx, order, items, tickets, itemIndex); err != nil {
			// A unique-index hit on order_number means the sequence row and
			// the orders table disagree; the caller may simply retry.
			if repository.IsDuplicateEntry(err) {
				return fmt.Errorf("%w: order number %s already taken", ErrAllocationContention, orderNumber)
			}
			return err
		}

		event = queue.OrderCreatedEvent{
			OrderNumber: orderNumber,
			UserID:      in.UserID,
			ActivityID:  in.ActivityID,
			ShowtimeID:  in.ShowtimeID,
			TotalCount:  order.TotalCount,
			TotalPrice:  order.TotalPrice,
			CreatedAt:   now.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		s.releaseReserved(ctx, in.ShowtimeID, reserved)
		return "", err
	}

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, event); err != nil {
			log.Printf("order-service: publish order.created for %s failed: %v", orderNumber, err)
		}
	}
	return orderNumber, nil
}

// buildOrder expands a validated request into the rows to persist: the
// order header, one item per zone and one ticket per seat unit.  Ticket
// codes derive from order number, zone and the seat's index within the
// zone.  itemIndex[i] names the item that ticket i belongs to so the
// repository can link generated item IDs.
func buildOrder(in CreateOrderInput, orderNumber string) (*model.Order, []model.OrderItem, []model.Ticket, []int) {
	totalCount := 0
	totalPrice := 0
	items := make([]model.OrderItem, 0, len(in.Items))
	var tickets []model.Ticket
	var itemIndex []int
	for i, item := range in.Items {
		totalCount += item.Quantity
		totalPrice += item.Price * item.Quantity
		items = append(items, model.OrderItem{
			Section:    item.Zone,
			Price:      item.Price,
			Quantity:   item.Quantity,
			TicketType: 1,
		})
		for seat := 1; seat <= item.Quantity; seat++ {
			tickets = append(tickets, model.Ticket{
				ID:          uuid.NewString(),
				OrderNumber: orderNumber,
				Section:     item.Zone,
				Price:       item.Price,
				TicketCode:  fmt.Sprintf("%s-%s-%02d", orderNumber, item.Zone, seat),
				Status:      model.TicketStatusUnused,
			})
			itemIndex = append(itemIndex, i)
		}
	}
	order := &model.Order{
		UserID:        in.UserID,
		ShowtimeID:    in.ShowtimeID,
		OrderNumber:   orderNumber,
		Status:        model.OrderStatusProcessing,
		TotalCount:    totalCount,
		TotalPrice:    totalPrice,
		PaymentMethod: "CREDIT_CARD",
		PaymentStatus: model.PaymentStatusPending,
		PickupStatus:  model.PickupStatusNotPickedUp,
	}
	return order, items, tickets, itemIndex
}

// releaseReserved gives back every zone this attempt reserved.  It runs on
// a context detached from the request so a cancelled request still gets
// compensated.  A failed release is logged as a reconciliation warning
// and not retried; the system biases toward under-selling over
// double-selling.
func (s *OrderService) releaseReserved(ctx context.Context, showtimeID string, reserved []reservedZone) {
	if len(reserved) == 0 {
		return
	}
	relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateWait)
	defer cancel()
	for _, r := range reserved {
		if err := s.seats.Release(relCtx, showtimeID, r.zone, r.qty); err != nil {
			log.Printf("order-service: reconciliation warning: release %d seats showtime=%s zone=%s failed: %v",
				r.qty, showtimeID, r.zone, err)
		}
	}
}

// GetOrderDetail returns the full view of one order owned by userID.  The
// order number's shape and embedded date are validated before the lookup.
func (s *OrderService) GetOrderDetail(ctx context.Context, userID, orderNumber string) (*repository.OrderDetail, error) {
	if uuid.Validate(userID) != nil {
		return nil, fmt.Errorf("%w: user id must be a UUID", ErrValidation)
	}
	if err := repository.ValidateOrderNumber(orderNumber, s.clock.Now(), s.retentionDays); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.orders.GetDetailByNumberForUser(ctx, userID, orderNumber)
}

// ListOrdersInput controls pagination and ordering of a user's order
// listing.  Zero values take the defaults: page 1, page size 10, newest
// created first.
type ListOrdersInput struct {
	Page     int
	PageSize int
	SortBy   string
	Order    string
}

// ListOrders returns one page of the user's orders.  Page size is capped
// at 10 and only whitelisted sort fields are accepted.
func (s *OrderService) ListOrders(ctx context.Context, userID string, in ListOrdersInput) (*repository.OrderPage, error) {
	if uuid.Validate(userID) != nil {
		return nil, fmt.Errorf("%w: user id must be a UUID", ErrValidation)
	}
	if in.Page == 0 {
		in.Page = 1
	}
	if in.PageSize == 0 {
		in.PageSize = maxPageSize
	}
	if in.SortBy == "" {
		in.SortBy = "created_at"
	}
	if in.Order == "" {
		in.Order = "desc"
	}
	if in.Page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", ErrValidation)
	}
	if in.PageSize < 1 || in.PageSize > maxPageSize {
		return nil, fmt.Errorf("%w: page size must be between 1 and %d", ErrValidation, maxPageSize)
	}
	switch in.SortBy {
	case "created_at", "event_date", "total_price":
	default:
		return nil, fmt.Errorf("%w: unsupported sort field %q", ErrValidation, in.SortBy)
	}
	var desc bool
	switch in.Order {
	case "asc":
	case "desc":
		desc = true
	default:
		return nil, fmt.Errorf("%w: order must be asc or desc", ErrValidation)
	}
	return s.orders.ListByUser(ctx, userID, repository.ListParams{
		Page:     in.Page,
		PageSize: in.PageSize,
		SortBy:   in.SortBy,
		Desc:     desc,
	})
}

// MarkOrderPaid settles an order after the payment gateway confirms the
// given amount.  It is idempotent: confirming an already paid order with
// the same amount succeeds without effect.  A committed order can only
// move forward here, never be revoked.
func (s *OrderService) MarkOrderPaid(ctx context.Context, orderNumber string, amount int) error {
	if err := repository.ValidateOrderNumber(orderNumber, s.clock.Now(), s.retentionDays); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		info, err := s.orders.GetForPaymentTx(ctx, tx, orderNumber)
		if err != nil {
			return err
		}
		if info.TotalPrice != amount {
			return fmt.Errorf("%w: order %s wants %d, gateway confirmed %d", ErrPaymentMismatch, orderNumber, info.TotalPrice, amount)
		}
		if info.PaymentStatus == model.PaymentStatusPaid {
			return nil
		}
		if info.Status != model.OrderStatusProcessing || info.PaymentStatus != model.PaymentStatusPending {
			return fmt.Errorf("%w: status=%s payment=%s", ErrOrderNotPayable, info.Status, info.PaymentStatus)
		}
		return s.orders.MarkPaidTx(ctx, tx, info.OrderID, s.clock.Now())
	})
}

// InitializeShowtimeInventory seeds (or rebuilds) the seat counters for a
// showtime from the durable vacancy counts.  Seeding from vacancy rather
// than capacity keeps a rebuild safe after sales have started.  It
// returns the zones written so callers can echo them back.
func (s *OrderService) InitializeShowtimeInventory(ctx context.Context, showtimeID string) ([]model.ZoneCapacity, error) {
	if uuid.Validate(showtimeID) != nil {
		return nil, fmt.Errorf("%w: showtime id must be a UUID", ErrValidation)
	}
	sections, err := s.showtimes.ListSections(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	zones := make([]model.ZoneCapacity, 0, len(sections))
	for _, sec := range sections {
		zones = append(zones, model.ZoneCapacity{Zone: sec.Section, Capacity: sec.Vacancy})
	}
	if err := s.seats.Initialize(ctx, showtimeID, zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// ClearShowtimeInventory drops every seat counter for a showtime, e.g.
// when the showtime is withdrawn from sale.
func (s *OrderService) ClearShowtimeInventory(ctx context.Context, showtimeID string) error {
	if uuid.Validate(showtimeID) != nil {
		return fmt.Errorf("%w: showtime id must be a UUID", ErrValidation)
	}
	return s.seats.Clear(ctx, showtimeID)
}
