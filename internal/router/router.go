package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/rvra/ticketgate/internal/handler"
)

// Middlewares carries the optional Redis-backed middlewares.  Either may be
// a pass-through when Redis is unavailable.
type Middlewares struct {
    CatalogCache echo.MiddlewareFunc // response cache on the public catalog read
    RateLimit    echo.MiddlewareFunc // token bucket on mutating routes
}

// Register wires every route of the gateway.  Browsing is open to anyone;
// everything that mutates state goes through the current session inside the
// core, so no authentication middleware guards these routes; the backend
// rejects what the bound identity may not do.
func Register(e *echo.Echo, s *handler.SessionHandler, ev *handler.EventsHandler, t *handler.TicketsHandler, p *handler.PurchaseHandler, mw Middlewares) {
    e.GET("/healthz", handler.Health)

    // Session binding subsystem.
    e.GET("/v1/session", s.Status)
    e.POST("/v1/session/delegated", s.ConnectDelegated, mw.RateLimit)
    e.POST("/v1/session/wallet", s.ConnectWallet, mw.RateLimit)
    e.DELETE("/v1/session", s.Release)
    e.GET("/v1/wallet/balance", s.WalletBalance)

    // Catalog.  The list read is cached; mutations are rate limited.
    e.GET("/v1/events", ev.List, mw.CatalogCache)
    e.POST("/v1/events", ev.Create, mw.RateLimit)
    e.PUT("/v1/events/:id", ev.Update, mw.RateLimit)
    e.DELETE("/v1/events/:id", ev.Delete, mw.RateLimit)

    // Purchase and tickets.
    e.POST("/v1/events/:id/purchase", p.Buy, mw.RateLimit)
    e.GET("/v1/tickets", t.List)
    e.DELETE("/v1/tickets/:id", t.Delete)
}
