package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/purchase"
    "github.com/rvra/ticketgate/internal/repository"
)

// PurchaseHandler is the call site of the buy button.  It resolves the
// event, runs the coordinator, and on success returns the minted ticket
// together with the reloaded ticket list.
type PurchaseHandler struct {
    Coordinator *purchase.Coordinator
    Events      *repository.EventRepo
    Tickets     *repository.TicketRepo
}

func NewPurchaseHandler(co *purchase.Coordinator, events *repository.EventRepo, tickets *repository.TicketRepo) *PurchaseHandler {
    return &PurchaseHandler{Coordinator: co, Events: events, Tickets: tickets}
}

type purchaseReq struct {
    RealTransfer bool `json:"real_transfer"`
}

type purchaseResp struct {
    Ticket  model.Ticket   `json:"ticket"`
    Tickets []model.Ticket `json:"tickets"`
}

// Buy handles POST /v1/events/:id/purchase.  The whole attempt runs under
// one generous timeout; there is deliberately no per-step timeout, so a
// wallet prompt left open keeps this request in flight.
func (h *PurchaseHandler) Buy(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var req purchaseReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
    defer cancel()

    ev, found, err := h.findEvent(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    if !found {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Not found"})
    }

    ticket, err := h.Coordinator.Buy(ctx, ev, req.RealTransfer)
    if err != nil {
        return writeError(c, err)
    }

    // Success invalidates the ticket list; reload it for the response.  A
    // failed reload does not undo the purchase, the client just refreshes.
    tickets, err := h.Tickets.ListMine(ctx)
    if err != nil {
        tickets = nil
    }
    return c.JSON(http.StatusOK, purchaseResp{Ticket: ticket, Tickets: tickets})
}

// findEvent resolves the event from the catalog read (with its usual
// anonymous fallback).
func (h *PurchaseHandler) findEvent(ctx context.Context, id uint64) (model.Event, bool, error) {
    events, err := h.Events.List(ctx)
    if err != nil {
        return model.Event{}, false, err
    }
    for _, ev := range events {
        if ev.ID == id {
            return ev, true, nil
        }
    }
    return model.Event{}, false, nil
}
