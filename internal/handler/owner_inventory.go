package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NorthFirstGroup/backend/internal/model"
	"github.com/NorthFirstGroup/backend/internal/repository"
	"github.com/NorthFirstGroup/backend/internal/service"
)

// InventoryAPI is the slice of the order service used by the organizer
// inventory endpoints.
type InventoryAPI interface {
	InitializeShowtimeInventory(ctx context.Context, showtimeID string) ([]model.ZoneCapacity, error)
	ClearShowtimeInventory(ctx context.Context, showtimeID string) error
}

// InventoryHandler lets organizers seed or drop the seat counters for a
// showtime.  Role enforcement (ORGANIZER) happens in middleware.
type InventoryHandler struct {
	Svc InventoryAPI
}

// NewInventoryHandler constructs an InventoryHandler.  The service must be
// non-nil.
func NewInventoryHandler(svc InventoryAPI) *InventoryHandler {
	if svc == nil {
		panic("nil service passed to NewInventoryHandler")
	}
	return &InventoryHandler{Svc: svc}
}

// InitializeInventory handles POST /v1/owner/showtimes/:id/inventory.  It
// rebuilds the showtime's seat counters from the durable vacancy counts
// and echoes back the zones written.
func (h *InventoryHandler) InitializeInventory(c echo.Context) error {
	zones, err := h.Svc.InitializeShowtimeInventory(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrShowtimeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		default:
			log.Printf("inventory-handler: initialize: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"zones": zones})
}

// ClearInventory handles DELETE /v1/owner/showtimes/:id/inventory.  It
// drops all counters for the showtime, taking it off sale until
// re-initialized.
func (h *InventoryHandler) ClearInventory(c echo.Context) error {
	if err := h.Svc.ClearShowtimeInventory(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		log.Printf("inventory-handler: clear: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}
