package repository

import (
    "context"
    "fmt"
    "log"

    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/remote"
)

// EndpointSource supplies the endpoint a read or write should be issued
// through.  The session manager satisfies it; tests plug in fakes.
type EndpointSource interface {
    CurrentEndpoint() remote.Endpoint
}

// EventRepo reads and mutates the event catalog through the current
// endpoint.  Catalog reads follow the anonymous-fallback policy: if the
// bound endpoint's read fails for any reason, the read is retried exactly
// once through the anonymous endpoint before the caller sees
// ErrReadUnavailable.  Mutations are pass-through and never retried.
type EventRepo struct {
    Sessions EndpointSource
    Anon     remote.Endpoint
}

func NewEventRepo(sessions EndpointSource, anon remote.Endpoint) *EventRepo {
    return &EventRepo{Sessions: sessions, Anon: anon}
}

// List returns the full catalog.  At most two read attempts are ever made:
// the bound endpoint, then the anonymous one.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
    events, err := r.Sessions.CurrentEndpoint().ListEvents(ctx)
    if err == nil {
        return events, nil
    }
    log.Printf("events: bound read failed, retrying anonymously: %v", err)
    events, err2 := r.Anon.ListEvents(ctx)
    if err2 != nil {
        return nil, fmt.Errorf("%w: %v", ErrReadUnavailable, err2)
    }
    return events, nil
}

// Create forwards the password and payload.  A rejection (invalid password,
// anonymous caller) comes back classified from the remote package.
func (r *EventRepo) Create(ctx context.Context, password string, ev model.NewEvent) (model.Event, error) {
    return r.Sessions.CurrentEndpoint().CreateEvent(ctx, password, ev)
}

// Update rewrites a listing; the creator rule is enforced remotely.
func (r *EventRepo) Update(ctx context.Context, id uint64, ev model.NewEvent) (model.Event, error) {
    return r.Sessions.CurrentEndpoint().UpdateEvent(ctx, id, ev)
}

// Delete removes a listing under the same creator rule.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
    return r.Sessions.CurrentEndpoint().DeleteEvent(ctx, id)
}
