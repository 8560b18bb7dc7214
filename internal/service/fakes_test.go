package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/NorthFirstGroup/backend/internal/model"
	"github.com/NorthFirstGroup/backend/internal/queue"
	"github.com/NorthFirstGroup/backend/internal/repository"
)

// fakeTx runs the unit of work without a real database.  The *sql.Tx
// passed to the callback is nil; the fake stores ignore it.  Rollbacks
// are counted so tests can assert that failed attempts never commit.
type fakeTx struct {
	mu        sync.Mutex
	begun     int
	committed int
	rolledBk  int
	beginErr  error
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	f.mu.Lock()
	f.begun++
	f.mu.Unlock()
	if f.beginErr != nil {
		return f.beginErr
	}
	if err := fn(ctx, nil); err != nil {
		f.mu.Lock()
		f.rolledBk++
		f.mu.Unlock()
		return err
	}
	f.mu.Lock()
	f.committed++
	f.mu.Unlock()
	return nil
}

type fakeActivities struct {
	byID map[int64]*model.Activity
}

func (f *fakeActivities) GetActiveTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Activity, error) {
	a, ok := f.byID[id]
	if !ok || a.IsDeleted {
		return nil, repository.ErrActivityNotFound
	}
	return a, nil
}

type fakeShowtimes struct {
	mu         sync.Mutex
	showtime   *model.Showtime
	deductions map[string]int // zone -> total deducted
	deductErr  error
}

func (f *fakeShowtimes) GetWithSectionsTx(ctx context.Context, tx *sql.Tx, showtimeID string, activityID int64) (*model.Showtime, error) {
	if f.showtime == nil || f.showtime.ID != showtimeID || f.showtime.ActivityID != activityID {
		return nil, repository.ErrShowtimeNotFound
	}
	return f.showtime, nil
}

func (f *fakeShowtimes) DeductVacancyTx(ctx context.Context, tx *sql.Tx, showtimeID, zone string, qty int) error {
	if f.deductErr != nil {
		return f.deductErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deductions == nil {
		f.deductions = map[string]int{}
	}
	f.deductions[zone] += qty
	return nil
}

func (f *fakeShowtimes) ListSections(ctx context.Context, showtimeID string) ([]model.ShowtimeSection, error) {
	if f.showtime == nil || f.showtime.ID != showtimeID || len(f.showtime.Sections) == 0 {
		return nil, repository.ErrShowtimeNotFound
	}
	return f.showtime.Sections, nil
}

type fakeSequences struct {
	mu      sync.Mutex
	counts  map[string]int
	nextErr error
}

func (f *fakeSequences) NextTx(ctx context.Context, tx *sql.Tx, dateKey string) (int, error) {
	if f.nextErr != nil {
		return 0, f.nextErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[dateKey]++
	return f.counts[dateKey], nil
}

type persistedOrder struct {
	order   model.Order
	items   []model.OrderItem
	tickets []model.Ticket
}

type fakeOrders struct {
	mu        sync.Mutex
	created   []persistedOrder
	createErr error

	payment *repository.PaymentInfo
	paidAt  *time.Time

	detail     *repository.OrderDetail
	detailUser string
	detailNum  string

	page       *repository.OrderPage
	lastParams repository.ListParams
}

func (f *fakeOrders) CreateTx(ctx context.Context, tx *sql.Tx, order *model.Order, items []model.OrderItem, tickets []model.Ticket, itemIndex []int) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = int64(len(f.created) + 1)
	f.created = append(f.created, persistedOrder{order: *order, items: items, tickets: tickets})
	return nil
}

func (f *fakeOrders) GetForPaymentTx(ctx context.Context, tx *sql.Tx, orderNumber string) (*repository.PaymentInfo, error) {
	if f.payment == nil {
		return nil, repository.ErrOrderNotFound
	}
	return f.payment, nil
}

func (f *fakeOrders) MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID int64, paidAt time.Time) error {
	f.paidAt = &paidAt
	return nil
}

func (f *fakeOrders) GetDetailByNumberForUser(ctx context.Context, userID, orderNumber string) (*repository.OrderDetail, error) {
	if f.detail == nil || userID != f.detailUser || orderNumber != f.detailNum {
		return nil, repository.ErrOrderNotFound
	}
	return f.detail, nil
}

func (f *fakeOrders) ListByUser(ctx context.Context, userID string, p repository.ListParams) (*repository.OrderPage, error) {
	f.lastParams = p
	if f.page == nil {
		return &repository.OrderPage{Items: []repository.OrderSummary{}}, nil
	}
	return f.page, nil
}

// fakeSeatCache mirrors the Redis counter semantics in memory.  Reserve
// performs its check-and-decrement under one mutex so concurrent tests
// exercise the same strict ordering the Lua script provides.
type fakeSeatCache struct {
	mu         sync.Mutex
	counters   map[string]map[string]int // showtimeID -> zone -> remaining
	reserveErr error
	releaseErr error
}

func newFakeSeatCache() *fakeSeatCache {
	return &fakeSeatCache{counters: map[string]map[string]int{}}
}

func (f *fakeSeatCache) Initialize(ctx context.Context, showtimeID string, zones []model.ZoneCapacity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]int{}
	for _, z := range zones {
		m[z.Zone] = z.Capacity
	}
	f.counters[showtimeID] = m
	return nil
}

func (f *fakeSeatCache) Reserve(ctx context.Context, showtimeID, zone string, qty int) (bool, error) {
	if f.reserveErr != nil {
		return false, f.reserveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.counters[showtimeID]
	if !ok {
		return false, nil
	}
	if _, ok := m[zone]; !ok {
		return false, nil
	}
	if m[zone] < qty {
		return false, nil
	}
	m[zone] -= qty
	return true, nil
}

func (f *fakeSeatCache) Release(ctx context.Context, showtimeID, zone string, qty int) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.counters[showtimeID]; ok {
		m[zone] += qty
	}
	return nil
}

func (f *fakeSeatCache) Peek(ctx context.Context, showtimeID, zone string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.counters[showtimeID]; ok {
		return m[zone], nil
	}
	return 0, nil
}

func (f *fakeSeatCache) Clear(ctx context.Context, showtimeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.counters, showtimeID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.OrderCreatedEvent
	err    error
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, ev queue.OrderCreatedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}
