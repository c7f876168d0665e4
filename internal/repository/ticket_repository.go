package repository

import (
    "context"

    "github.com/rvra/ticketgate/internal/model"
)

// TicketRepo reads and deletes the bound identity's tickets.  Unlike the
// event catalog there is no anonymous fallback: the anonymous caller has no
// tickets, so a failed read surfaces directly.
type TicketRepo struct {
    Sessions EndpointSource
}

func NewTicketRepo(sessions EndpointSource) *TicketRepo {
    return &TicketRepo{Sessions: sessions}
}

// ListMine returns the current identity's tickets through the current
// endpoint only.
func (r *TicketRepo) ListMine(ctx context.Context) ([]model.Ticket, error) {
    return r.Sessions.CurrentEndpoint().MyTickets(ctx)
}

// Delete removes one ticket.  Pass-through; rejections are classified by
// the remote package and never retried.
func (r *TicketRepo) Delete(ctx context.Context, ticketID string) error {
    return r.Sessions.CurrentEndpoint().DeleteTicket(ctx, ticketID)
}
