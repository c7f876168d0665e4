package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/repository"
    "github.com/rvra/ticketgate/internal/session"
)

// EventsHandler serves the catalog and the create/edit/delete listing
// operations.
type EventsHandler struct {
    Events   *repository.EventRepo
    Sessions *session.Manager
}

func NewEventsHandler(events *repository.EventRepo, sessions *session.Manager) *EventsHandler {
    return &EventsHandler{Events: events, Sessions: sessions}
}

// eventView decorates an event with the affordance flag the view layer
// keys edit/delete buttons on.  The backend still enforces the creator
// rule on the actual mutation.
type eventView struct {
    model.Event
    CanEdit bool `json:"can_edit"`
}

type createEventReq struct {
    Password string         `json:"password"`
    Event    model.NewEvent `json:"event"`
}

// List returns the catalog filtered by the optional q/category/date query
// parameters.  Reads follow the anonymous-fallback policy inside the repo.
func (h *EventsHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    events, err := h.Events.List(ctx)
    if err != nil {
        return writeError(c, err)
    }
    cur := h.Sessions.Current().Identity
    q := c.QueryParam("q")
    category := c.QueryParam("category")
    date := c.QueryParam("date")

    out := make([]eventView, 0, len(events))
    for _, ev := range events {
        if !ev.Matches(q, category, date) {
            continue
        }
        out = append(out, eventView{Event: ev, CanEdit: ev.CanEdit(cur)})
    }
    return c.JSON(http.StatusOK, out)
}

// Create forwards password and payload to the backend.  The same required
// fields the original form enforced are checked here.
func (h *EventsHandler) Create(c echo.Context) error {
    var req createEventReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := validateEvent(req.Event); err != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    created, err := h.Events.Create(ctx, req.Password, req.Event)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, created)
}

// Update rewrites a listing.
func (h *EventsHandler) Update(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var ev model.NewEvent
    if err := c.Bind(&ev); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := validateEvent(ev); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    updated, err := h.Events.Update(ctx, id, ev)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, updated)
}

// Delete removes a listing.
func (h *EventsHandler) Delete(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    if err := h.Events.Delete(ctx, id); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// validateEvent checks the fields the original create form required.
// Returns an empty string when the payload is acceptable.
func validateEvent(ev model.NewEvent) string {
    for _, f := range []struct{ name, v string }{
        {"title", ev.Title},
        {"date", ev.Date},
        {"time", ev.Time},
        {"city", ev.City},
        {"category", ev.Category},
    } {
        if strings.TrimSpace(f.v) == "" {
            return "missing required field: " + f.name
        }
    }
    return ""
}
