// Package remote implements the capability through which every backend read
// and write is issued.  An Endpoint is bound to exactly one credential (or
// none, for the anonymous endpoint) at construction time and is never
// mutated afterwards; session changes produce a fresh Endpoint rather than
// rewiring an existing one, so an operation that captured an Endpoint keeps
// the identity it started with.
package remote

import (
    "context"

    "github.com/rvra/ticketgate/internal/model"
)

// Endpoint is the remote marketplace capability.  All calls are blocking and
// honor context cancellation; any of them may fail with a classified error
// (see errors.go).
type Endpoint interface {
    // ListEvents returns the full event catalog.  Readable anonymously.
    ListEvents(ctx context.Context) ([]model.Event, error)
    // MyTickets returns the tickets held by the bound identity.
    MyTickets(ctx context.Context) ([]model.Ticket, error)
    // CreateEvent creates a listing.  The password is validated remotely;
    // the gateway forwards it opaquely.
    CreateEvent(ctx context.Context, password string, ev model.NewEvent) (model.Event, error)
    // UpdateEvent rewrites an existing listing.  Rejected remotely unless
    // the caller is the recorded creator (or the listing has none).
    UpdateEvent(ctx context.Context, id uint64, ev model.NewEvent) (model.Event, error)
    // DeleteEvent removes a listing under the same creator rule.
    DeleteEvent(ctx context.Context, id uint64) error
    // BuyTicket mints a ticket for the bound identity.  Rejected for the
    // anonymous caller.
    BuyTicket(ctx context.Context, eventID uint64) (model.Ticket, error)
    // DeleteTicket removes one of the bound identity's tickets.
    DeleteTicket(ctx context.Context, ticketID string) error
}
