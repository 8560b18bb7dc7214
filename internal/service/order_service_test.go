package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NorthFirstGroup/backend/internal/clock"
	"github.com/NorthFirstGroup/backend/internal/model"
	"github.com/NorthFirstGroup/backend/internal/repository"
)

const (
	testUserID     = "5f2c8b1e-3d4a-4b6c-9e8f-1a2b3c4d5e6f"
	testShowtimeID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	testActivityID = int64(42)
)

// testNow falls inside the fixture's sales window.
var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	tx         *fakeTx
	activities *fakeActivities
	showtimes  *fakeShowtimes
	sequences  *fakeSequences
	orders     *fakeOrders
	seats      *fakeSeatCache
	events     *fakePublisher
	svc        *OrderService
}

// newFixture builds a service over fakes with one showtime holding zones
// A (capacity 10, price 1200) and B (capacity 4, price 800), on sale.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tx: &fakeTx{},
		activities: &fakeActivities{byID: map[int64]*model.Activity{
			testActivityID: {
				ID:             testActivityID,
				Name:           "Summer Arena Tour",
				StartTime:      testNow.Add(30 * 24 * time.Hour),
				SalesStartTime: testNow.Add(-24 * time.Hour),
				SalesEndTime:   testNow.Add(24 * time.Hour),
			},
		}},
		showtimes: &fakeShowtimes{showtime: &model.Showtime{
			ID:         testShowtimeID,
			ActivityID: testActivityID,
			StartTime:  testNow.Add(30 * 24 * time.Hour),
			Sections: []model.ShowtimeSection{
				{Section: "A", Price: 1200, Capacity: 10, Vacancy: 10},
				{Section: "B", Price: 800, Capacity: 4, Vacancy: 4},
			},
		}},
		sequences: &fakeSequences{},
		orders:    &fakeOrders{},
		seats:     newFakeSeatCache(),
		events:    &fakePublisher{},
	}
	require.NoError(t, f.seats.Initialize(context.Background(), testShowtimeID, []model.ZoneCapacity{
		{Zone: "A", Capacity: 10},
		{Zone: "B", Capacity: 4},
	}))
	f.svc = NewOrderService(f.tx, f.activities, f.showtimes, f.sequences, f.orders, f.seats, f.events, clock.NewFixed(testNow), 180)
	return f
}

func (f *fixture) peek(t *testing.T, zone string) int {
	t.Helper()
	n, err := f.seats.Peek(context.Background(), testShowtimeID, zone)
	require.NoError(t, err)
	return n
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		UserID:     testUserID,
		ActivityID: testActivityID,
		ShowtimeID: testShowtimeID,
		Items: []LineItem{
			{Zone: "A", Price: 1200, Quantity: 2},
			{Zone: "B", Price: 800, Quantity: 1},
		},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(t)

	num, err := f.svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "2026051000001", num)
	assert.Equal(t, 8, f.peek(t, "A"))
	assert.Equal(t, 3, f.peek(t, "B"))
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, f.showtimes.deductions)
	assert.Equal(t, 1, f.tx.committed)
	assert.Equal(t, 0, f.tx.rolledBk)

	require.Len(t, f.orders.created, 1)
	p := f.orders.created[0]
	assert.Equal(t, num, p.order.OrderNumber)
	assert.Equal(t, model.OrderStatusProcessing, p.order.Status)
	assert.Equal(t, model.PaymentStatusPending, p.order.PaymentStatus)
	assert.Equal(t, 3, p.order.TotalCount)
	assert.Equal(t, 2*1200+800, p.order.TotalPrice)
	require.Len(t, p.items, 2)
	require.Len(t, p.tickets, 3)
	assert.Equal(t, num+"-A-01", p.tickets[0].TicketCode)
	assert.Equal(t, num+"-A-02", p.tickets[1].TicketCode)
	assert.Equal(t, num+"-B-01", p.tickets[2].TicketCode)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, num, f.events.events[0].OrderNumber)
	assert.Equal(t, 3, f.events.events[0].TotalCount)
}

// The order's totals must always agree with its line items: total count
// is the sum of quantities, total price the sum of price*quantity, and
// exactly one ticket exists per seat unit.
func TestCreateOrder_TotalsMatchItems(t *testing.T) {
	f := newFixture(t)
	in := CreateOrderInput{
		UserID:     testUserID,
		ActivityID: testActivityID,
		ShowtimeID: testShowtimeID,
		Items: []LineItem{
			{Zone: "A", Price: 1200, Quantity: 4},
			{Zone: "B", Price: 800, Quantity: 3},
		},
	}
	_, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	p := f.orders.created[0]
	wantCount, wantPrice := 0, 0
	for _, it := range p.items {
		wantCount += it.Quantity
		wantPrice += it.Price * it.Quantity
	}
	assert.Equal(t, wantCount, p.order.TotalCount)
	assert.Equal(t, wantPrice, p.order.TotalPrice)
	assert.Len(t, p.tickets, wantCount)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(in *CreateOrderInput)
	}{
		{"bad user id", func(in *CreateOrderInput) { in.UserID = "not-a-uuid" }},
		{"bad showtime id", func(in *CreateOrderInput) { in.ShowtimeID = "123" }},
		{"zero activity id", func(in *CreateOrderInput) { in.ActivityID = 0 }},
		{"no items", func(in *CreateOrderInput) { in.Items = nil }},
		{"five zones", func(in *CreateOrderInput) {
			in.Items = []LineItem{
				{Zone: "A", Price: 1200, Quantity: 1},
				{Zone: "B", Price: 800, Quantity: 1},
				{Zone: "C", Price: 500, Quantity: 1},
				{Zone: "D", Price: 500, Quantity: 1},
				{Zone: "E", Price: 500, Quantity: 1},
			}
		}},
		{"empty zone", func(in *CreateOrderInput) { in.Items[0].Zone = "" }},
		{"negative price", func(in *CreateOrderInput) { in.Items[0].Price = -1 }},
		{"zero quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }},
		{"quantity above cap", func(in *CreateOrderInput) { in.Items[0].Quantity = 5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := f.svc.CreateOrder(ctx, in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	// Validation failures happen before any side effect.
	assert.Equal(t, 0, f.tx.begun)
	assert.Equal(t, 10, f.peek(t, "A"))
	assert.Equal(t, 4, f.peek(t, "B"))
	assert.Empty(t, f.orders.created)
	assert.Empty(t, f.events.events)
}

func TestCreateOrder_CatalogNotFound(t *testing.T) {
	t.Run("unknown activity", func(t *testing.T) {
		f := newFixture(t)
		in := validInput()
		in.ActivityID = 999
		_, err := f.svc.CreateOrder(context.Background(), in)
		require.ErrorIs(t, err, repository.ErrActivityNotFound)
		assert.Equal(t, 10, f.peek(t, "A"))
	})
	t.Run("deleted activity", func(t *testing.T) {
		f := newFixture(t)
		f.activities.byID[testActivityID].IsDeleted = true
		_, err := f.svc.CreateOrder(context.Background(), validInput())
		require.ErrorIs(t, err, repository.ErrActivityNotFound)
	})
	t.Run("unknown showtime", func(t *testing.T) {
		f := newFixture(t)
		in := validInput()
		in.ShowtimeID = "0e1d2c3b-4a59-4687-9504-13221100ffee"
		_, err := f.svc.CreateOrder(context.Background(), in)
		require.ErrorIs(t, err, repository.ErrShowtimeNotFound)
	})
	t.Run("showtime without sections", func(t *testing.T) {
		f := newFixture(t)
		f.showtimes.showtime.Sections = nil
		_, err := f.svc.CreateOrder(context.Background(), validInput())
		require.ErrorIs(t, err, ErrShowtimeUnconfigured)
	})
}

func TestCreateOrder_SalesWindow(t *testing.T) {
	t.Run("before sales start", func(t *testing.T) {
		f := newFixture(t)
		f.activities.byID[testActivityID].SalesStartTime = testNow.Add(time.Hour)
		_, err := f.svc.CreateOrder(context.Background(), validInput())
		require.ErrorIs(t, err, ErrSalesWindowClosed)
		assert.Equal(t, 10, f.peek(t, "A"))
		assert.Empty(t, f.showtimes.deductions)
		assert.Empty(t, f.orders.created)
	})
	t.Run("after sales end", func(t *testing.T) {
		f := newFixture(t)
		f.activities.byID[testActivityID].SalesEndTime = testNow.Add(-time.Minute)
		_, err := f.svc.CreateOrder(context.Background(), validInput())
		require.ErrorIs(t, err, ErrSalesWindowClosed)
		assert.Equal(t, 1, f.tx.rolledBk)
		assert.Empty(t, f.orders.created)
	})
	t.Run("exactly at sales end", func(t *testing.T) {
		f := newFixture(t)
		f.activities.byID[testActivityID].SalesEndTime = testNow
		_, err := f.svc.CreateOrder(context.Background(), validInput())
		require.NoError(t, err)
	})
}

func TestCreateOrder_PriceMismatch(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Items[1].Price = 750 // stale price for zone B

	_, err := f.svc.CreateOrder(context.Background(), in)
	require.ErrorIs(t, err, ErrPriceMismatch)

	// Prices are verified for every zone before any reservation, so even
	// zone A's counter must be untouched.
	assert.Equal(t, 10, f.peek(t, "A"))
	assert.Equal(t, 4, f.peek(t, "B"))
	assert.Empty(t, f.showtimes.deductions)
	assert.Empty(t, f.orders.created)
}

func TestCreateOrder_UnknownZone(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Items[0].Zone = "VIP"

	_, err := f.svc.CreateOrder(context.Background(), in)
	require.ErrorIs(t, err, ErrZoneNotFound)
	assert.Equal(t, 10, f.peek(t, "A"))
	assert.Equal(t, 4, f.peek(t, "B"))
}

// A later zone failing to reserve must give back every earlier zone.
func TestCreateOrder_InsufficientSeatsCompensates(t *testing.T) {
	f := newFixture(t)
	// Drain zone B so the second line item fails after A succeeded.
	ok, err := f.seats.Reserve(context.Background(), testShowtimeID, "B", 4)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.CreateOrder(context.Background(), validInput())
	require.ErrorIs(t, err, ErrInsufficientSeats)

	assert.Equal(t, 10, f.peek(t, "A"), "reserved zone A must be released")
	assert.Equal(t, 0, f.peek(t, "B"))
	assert.Equal(t, 1, f.tx.rolledBk)
	assert.Empty(t, f.orders.created)
	assert.Empty(t, f.events.events)
}

func TestCreateOrder_PersistFailureCompensates(t *testing.T) {
	f := newFixture(t)
	f.orders.createErr = errors.New("disk full")

	_, err := f.svc.CreateOrder(context.Background(), validInput())
	require.Error(t, err)

	assert.Equal(t, 10, f.peek(t, "A"))
	assert.Equal(t, 4, f.peek(t, "B"))
	assert.Equal(t, 1, f.tx.rolledBk)
	assert.Empty(t, f.events.events)
}

func TestCreateOrder_VacancyConflictCompensates(t *testing.T) {
	f := newFixture(t)
	f.showtimes.deductErr = repository.ErrVacancyConflict

	_, err := f.svc.CreateOrder(context.Background(), validInput())
	require.ErrorIs(t, err, repository.ErrVacancyConflict)

	assert.Equal(t, 10, f.peek(t, "A"))
	assert.Equal(t, 4, f.peek(t, "B"))
}

func TestCreateOrder_SeatCacheUnavailableFailsClosed(t *testing.T) {
	f := newFixture(t)
	f.seats.reserveErr = errors.New("dial tcp: connection refused")

	_, err := f.svc.CreateOrder(context.Background(), validInput())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientSeats)
	assert.Empty(t, f.orders.created)
}

func TestCreateOrder_AllocationContention(t *testing.T) {
	f := newFixture(t)
	f.sequences.nextErr = &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}

	_, err := f.svc.CreateOrder(context.Background(), validInput())
	require.ErrorIs(t, err, ErrAllocationContention)

	// Seats were reserved before the allocator ran; they must come back.
	assert.Equal(t, 10, f.peek(t, "A"))
	assert.Equal(t, 4, f.peek(t, "B"))
}

func TestCreateOrder_SequenceExhausted(t *testing.T) {
	f := newFixture(t)
	f.sequences.nextErr = fmt.Errorf("date 20260510: %w", repository.ErrSequenceExhausted)

	_, err := f.svc.CreateOrder(context.Background(), validInput())
	require.ErrorIs(t, err, repository.ErrSequenceExhausted)
	assert.Equal(t, 10, f.peek(t, "A"))
	assert.Equal(t, 4, f.peek(t, "B"))
	assert.Empty(t, f.orders.created)
}

func TestCreateOrder_DuplicateOrderNumber(t *testing.T) {
	f := newFixture(t)
	f.orders.createErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

	_, err := f.svc.CreateOrder(context.Background(), validInput())
	require.ErrorIs(t, err, ErrAllocationContention)
	assert.Equal(t, 10, f.peek(t, "A"))
	assert.Equal(t, 4, f.peek(t, "B"))
}

func TestCreateOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	num, err := f.svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, num)
	assert.Len(t, f.orders.created, 1)
}

// Same-day orders get strictly increasing, zero-padded suffixes on a
// shared date prefix.
func TestCreateOrder_SequentialNumbers(t *testing.T) {
	f := newFixture(t)
	in := CreateOrderInput{
		UserID:     testUserID,
		ActivityID: testActivityID,
		ShowtimeID: testShowtimeID,
		Items:      []LineItem{{Zone: "A", Price: 1200, Quantity: 1}},
	}

	first, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "2026051000001", first)
	assert.Equal(t, "2026051000002", second)
}

// Two buyers race for the last seat; exactly one wins and the loser
// leaves no trace.
func TestCreateOrder_LastSeatRace(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.seats.Initialize(context.Background(), testShowtimeID, []model.ZoneCapacity{{Zone: "A", Capacity: 1}}))

	in := CreateOrderInput{
		UserID:     testUserID,
		ActivityID: testActivityID,
		ShowtimeID: testShowtimeID,
		Items:      []LineItem{{Zone: "A", Price: 1200, Quantity: 1}},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateOrder(context.Background(), in)
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrInsufficientSeats)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
	assert.Equal(t, 0, f.peek(t, "A"))
	assert.Len(t, f.orders.created, 1)
}

// Many concurrent buyers never oversell the zone, and every winner gets
// a distinct order number.
func TestCreateOrder_ConcurrentNoOversell(t *testing.T) {
	f := newFixture(t)
	const capacity = 10
	const buyers = 30

	in := CreateOrderInput{
		UserID:     testUserID,
		ActivityID: testActivityID,
		ShowtimeID: testShowtimeID,
		Items:      []LineItem{{Zone: "A", Price: 1200, Quantity: 1}},
	}

	var wg sync.WaitGroup
	results := make([]struct {
		num string
		err error
	}, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i].num, results[i].err = f.svc.CreateOrder(context.Background(), in)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	wins := 0
	for _, r := range results {
		if r.err != nil {
			require.ErrorIs(t, r.err, ErrInsufficientSeats)
			continue
		}
		wins++
		require.Len(t, r.num, 13)
		require.True(t, strings.HasPrefix(r.num, "20260510"), "number %s", r.num)
		require.False(t, seen[r.num], "duplicate order number %s", r.num)
		seen[r.num] = true
	}
	assert.Equal(t, capacity, wins)
	assert.Equal(t, 0, f.peek(t, "A"))
	assert.Len(t, f.orders.created, capacity)
	assert.Equal(t, capacity, f.showtimes.deductions["A"])
}

func TestGetOrderDetail(t *testing.T) {
	f := newFixture(t)
	f.orders.detail = &repository.OrderDetail{OrderNumber: "2026051000001", Status: model.OrderStatusProcessing}
	f.orders.detailUser = testUserID
	f.orders.detailNum = "2026051000001"

	t.Run("found", func(t *testing.T) {
		d, err := f.svc.GetOrderDetail(context.Background(), testUserID, "2026051000001")
		require.NoError(t, err)
		assert.Equal(t, "2026051000001", d.OrderNumber)
	})
	t.Run("bad user id", func(t *testing.T) {
		_, err := f.svc.GetOrderDetail(context.Background(), "nope", "2026051000001")
		require.ErrorIs(t, err, ErrValidation)
	})
	t.Run("malformed number", func(t *testing.T) {
		for _, num := range []string{"", "12345", "20260510abcde", "2026059900001", "0000000000001"} {
			_, err := f.svc.GetOrderDetail(context.Background(), testUserID, num)
			require.ErrorIs(t, err, ErrValidation, "number %q", num)
		}
	})
	t.Run("someone else's order", func(t *testing.T) {
		_, err := f.svc.GetOrderDetail(context.Background(), "11111111-2222-4333-8444-555566667777", "2026051000001")
		require.ErrorIs(t, err, repository.ErrOrderNotFound)
	})
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)

	t.Run("defaults", func(t *testing.T) {
		_, err := f.svc.ListOrders(context.Background(), testUserID, ListOrdersInput{})
		require.NoError(t, err)
		assert.Equal(t, repository.ListParams{Page: 1, PageSize: 10, SortBy: "created_at", Desc: true}, f.orders.lastParams)
	})
	t.Run("explicit params", func(t *testing.T) {
		_, err := f.svc.ListOrders(context.Background(), testUserID, ListOrdersInput{Page: 3, PageSize: 5, SortBy: "total_price", Order: "asc"})
		require.NoError(t, err)
		assert.Equal(t, repository.ListParams{Page: 3, PageSize: 5, SortBy: "total_price", Desc: false}, f.orders.lastParams)
	})
	t.Run("rejects bad input", func(t *testing.T) {
		cases := []ListOrdersInput{
			{Page: -1},
			{PageSize: 11},
			{PageSize: -2},
			{SortBy: "password"},
			{Order: "sideways"},
		}
		for _, in := range cases {
			_, err := f.svc.ListOrders(context.Background(), testUserID, in)
			require.ErrorIs(t, err, ErrValidation, "%+v", in)
		}
	})
	t.Run("bad user id", func(t *testing.T) {
		_, err := f.svc.ListOrders(context.Background(), "x", ListOrdersInput{})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestMarkOrderPaid(t *testing.T) {
	const num = "2026051000001"

	t.Run("settles a pending order", func(t *testing.T) {
		f := newFixture(t)
		f.orders.payment = &repository.PaymentInfo{
			OrderID:       7,
			TotalPrice:    3200,
			Status:        model.OrderStatusProcessing,
			PaymentStatus: model.PaymentStatusPending,
		}
		require.NoError(t, f.svc.MarkOrderPaid(context.Background(), num, 3200))
		require.NotNil(t, f.orders.paidAt)
		assert.Equal(t, testNow, *f.orders.paidAt)
	})
	t.Run("idempotent when already paid", func(t *testing.T) {
		f := newFixture(t)
		f.orders.payment = &repository.PaymentInfo{
			OrderID:       7,
			TotalPrice:    3200,
			Status:        model.OrderStatusCompleted,
			PaymentStatus: model.PaymentStatusPaid,
		}
		require.NoError(t, f.svc.MarkOrderPaid(context.Background(), num, 3200))
		assert.Nil(t, f.orders.paidAt)
	})
	t.Run("amount mismatch", func(t *testing.T) {
		f := newFixture(t)
		f.orders.payment = &repository.PaymentInfo{
			OrderID:       7,
			TotalPrice:    3200,
			Status:        model.OrderStatusProcessing,
			PaymentStatus: model.PaymentStatusPending,
		}
		err := f.svc.MarkOrderPaid(context.Background(), num, 100)
		require.ErrorIs(t, err, ErrPaymentMismatch)
		assert.Nil(t, f.orders.paidAt)
	})
	t.Run("cancelled order is not payable", func(t *testing.T) {
		f := newFixture(t)
		f.orders.payment = &repository.PaymentInfo{
			OrderID:       7,
			TotalPrice:    3200,
			Status:        model.OrderStatusCancelled,
			PaymentStatus: model.PaymentStatusPending,
		}
		err := f.svc.MarkOrderPaid(context.Background(), num, 3200)
		require.ErrorIs(t, err, ErrOrderNotPayable)
	})
	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.MarkOrderPaid(context.Background(), num, 3200)
		require.ErrorIs(t, err, repository.ErrOrderNotFound)
	})
	t.Run("malformed number", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.MarkOrderPaid(context.Background(), "bogus", 3200)
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, 0, f.tx.begun)
	})
}

func TestInitializeShowtimeInventory(t *testing.T) {
	t.Run("seeds counters from vacancy", func(t *testing.T) {
		f := newFixture(t)
		// Simulate earlier sales reflected in the durable vacancy.
		f.showtimes.showtime.Sections[0].Vacancy = 7

		zones, err := f.svc.InitializeShowtimeInventory(context.Background(), testShowtimeID)
		require.NoError(t, err)
		assert.Equal(t, []model.ZoneCapacity{{Zone: "A", Capacity: 7}, {Zone: "B", Capacity: 4}}, zones)
		assert.Equal(t, 7, f.peek(t, "A"))
		assert.Equal(t, 4, f.peek(t, "B"))
	})
	t.Run("unknown showtime", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.InitializeShowtimeInventory(context.Background(), "11111111-2222-4333-8444-555566667777")
		require.ErrorIs(t, err, repository.ErrShowtimeNotFound)
	})
	t.Run("bad id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.InitializeShowtimeInventory(context.Background(), "nope")
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestClearShowtimeInventory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.ClearShowtimeInventory(context.Background(), testShowtimeID))
	assert.Equal(t, 0, f.peek(t, "A"))

	err := f.svc.ClearShowtimeInventory(context.Background(), "nope")
	require.ErrorIs(t, err, ErrValidation)
}

func TestBuildOrder(t *testing.T) {
	in := validInput()
	order, items, tickets, itemIndex := buildOrder(in, "2026051000007")

	assert.Equal(t, 3, order.TotalCount)
	assert.Equal(t, 3200, order.TotalPrice)
	require.Len(t, items, 2)
	require.Len(t, tickets, 3)
	require.Equal(t, []int{0, 0, 1}, itemIndex)
	for i, tk := range tickets {
		assert.Equal(t, "2026051000007", tk.OrderNumber)
		assert.Equal(t, model.TicketStatusUnused, tk.Status)
		assert.Equal(t, fmt.Sprintf("2026051000007-%s-%02d", tk.Section, i%2+1), tk.TicketCode)
	}
}
