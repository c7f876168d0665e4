package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/rvra/ticketgate/internal/repository"
)

// TicketsHandler serves the bound identity's tickets.  No anonymous
// fallback here: tickets are meaningless without an identity, so a failed
// read surfaces directly.
type TicketsHandler struct {
    Tickets *repository.TicketRepo
}

func NewTicketsHandler(tickets *repository.TicketRepo) *TicketsHandler {
    return &TicketsHandler{Tickets: tickets}
}

// List returns the current identity's tickets.
func (h *TicketsHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    tickets, err := h.Tickets.ListMine(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, tickets)
}

// Delete removes one ticket after the explicit user action.
func (h *TicketsHandler) Delete(c echo.Context) error {
    id := c.Param("id")
    if id == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    if err := h.Tickets.Delete(ctx, id); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
