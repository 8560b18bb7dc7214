package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/NorthFirstGroup/backend/internal/handler"
	"github.com/NorthFirstGroup/backend/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterOrders registers the customer order endpoints under /v1.  All
// of them require a valid access token; both USER and ORGANIZER roles
// may purchase.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("USER", "ORGANIZER"))
	// Create an order: reserve seats, allocate an order number, persist.
	g.POST("/orders", h.CreateOrder)
	// List the caller's orders with pagination and sorting.
	g.GET("/orders", h.ListOrders)
	// Full detail of one order, tickets included.  Owner only.
	g.GET("/orders/:order_number", h.GetOrderDetail)
}

// RegisterOwnerInventory registers the organizer-only seat counter
// management endpoints under /v1/owner.
func RegisterOwnerInventory(e *echo.Echo, h *handler.InventoryHandler, jwtSecret string) {
	g := e.Group("/v1/owner")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ORGANIZER"))
	// Seed or rebuild the seat counters from the durable vacancy counts.
	g.POST("/showtimes/:id/inventory", h.InitializeInventory)
	// Drop all counters for a showtime.
	g.DELETE("/showtimes/:id/inventory", h.ClearInventory)
}
