package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/NorthFirstGroup/backend/internal/repository"
	"github.com/NorthFirstGroup/backend/internal/service"
)

// OrderAPI is the slice of the order service the HTTP layer needs.  It is
// an interface so handler tests can substitute a stub.
type OrderAPI interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (string, error)
	GetOrderDetail(ctx context.Context, userID, orderNumber string) (*repository.OrderDetail, error)
	ListOrders(ctx context.Context, userID string, in service.ListOrdersInput) (*repository.OrderPage, error)
}

// OrderHandler serves the customer-facing order endpoints.  All methods
// assume JWT authentication has already run; they return 401 when no user
// ID can be extracted from the context.
type OrderHandler struct {
	Svc OrderAPI
}

// NewOrderHandler constructs an OrderHandler.  The service must be non-nil.
func NewOrderHandler(svc OrderAPI) *OrderHandler {
	if svc == nil {
		panic("nil service passed to NewOrderHandler")
	}
	return &OrderHandler{Svc: svc}
}

// createOrderReq is the request body of POST /v1/orders.
type createOrderReq struct {
	ActivityID int64              `json:"activity_id"`
	ShowtimeID string             `json:"showtime_id"`
	Tickets    []service.LineItem `json:"tickets"`
}

// CreateOrder handles POST /v1/orders.  It reserves seats for every
// requested zone and returns the allocated order number with 201 Created.
// Failures map onto the error taxonomy: 400 for structural problems, 404
// for unknown catalog references, 403 for a closed sales window, 409 for
// stale prices or sold-out zones, 503 when order numbering is contended.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createOrderReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	orderNumber, err := h.Svc.CreateOrder(c.Request().Context(), service.CreateOrderInput{
		UserID:     userID,
		ActivityID: body.ActivityID,
		ShowtimeID: body.ShowtimeID,
		Items:      body.Tickets,
	})
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"order_number": orderNumber})
}

// GetOrderDetail handles GET /v1/orders/:order_number.  Only the order's
// owner can read it; a foreign or unknown number yields 404.
func (h *OrderHandler) GetOrderDetail(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	detail, err := h.Svc.GetOrderDetail(c.Request().Context(), userID, c.Param("order_number"))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// ListOrders handles GET /v1/orders with page, page_size, sort_by and
// order query parameters.  Unparseable numbers fall through to the
// service's validation.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	in := service.ListOrdersInput{
		SortBy: c.QueryParam("sort_by"),
		Order:  c.QueryParam("order"),
	}
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "page must be an integer"})
		}
		in.Page = n
	}
	if v := c.QueryParam("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "page_size must be an integer"})
		}
		in.PageSize = n
	}
	page, err := h.Svc.ListOrders(c.Request().Context(), userID, in)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// orderError translates service and repository sentinels into HTTP
// responses.  Anything unrecognized is logged and reported as a 500
// without leaking internals.
func orderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrActivityNotFound),
		errors.Is(err, repository.ErrShowtimeNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, service.ErrZoneNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrShowtimeUnconfigured):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSalesWindowClosed):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrPriceMismatch):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientSeats):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAllocationContention):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "order numbering busy, retry shortly"})
	case errors.Is(err, repository.ErrSequenceExhausted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "daily order capacity reached"})
	default:
		log.Printf("order-handler: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
