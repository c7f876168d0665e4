package repository

import (
    "context"
    "errors"
    "testing"

    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/remote"
)

// countingEndpoint fails or succeeds on demand and counts every read so the
// at-most-two-attempts policy can be asserted.
type countingEndpoint struct {
    events     []model.Event
    tickets    []model.Ticket
    failReads  bool
    listCalls  int
    mineCalls  int
    buyCalls   int
    delCalls   int
}

var errEndpointDown = errors.New("endpoint down")

func (e *countingEndpoint) ListEvents(context.Context) ([]model.Event, error) {
    e.listCalls++
    if e.failReads {
        return nil, errEndpointDown
    }
    return e.events, nil
}

func (e *countingEndpoint) MyTickets(context.Context) ([]model.Ticket, error) {
    e.mineCalls++
    if e.failReads {
        return nil, errEndpointDown
    }
    return e.tickets, nil
}

func (e *countingEndpoint) CreateEvent(_ context.Context, _ string, ev model.NewEvent) (model.Event, error) {
    return model.Event{Title: ev.Title}, nil
}

func (e *countingEndpoint) UpdateEvent(_ context.Context, id uint64, ev model.NewEvent) (model.Event, error) {
    return model.Event{ID: id, Title: ev.Title}, nil
}

func (e *countingEndpoint) DeleteEvent(context.Context, uint64) error { return nil }

func (e *countingEndpoint) BuyTicket(_ context.Context, id uint64) (model.Ticket, error) {
    e.buyCalls++
    return model.Ticket{EventID: id}, nil
}

func (e *countingEndpoint) DeleteTicket(context.Context, string) error {
    e.delCalls++
    return nil
}

type fixedSource struct{ ep remote.Endpoint }

func (s fixedSource) CurrentEndpoint() remote.Endpoint { return s.ep }

func TestListUsesBoundEndpointWhenHealthy(t *testing.T) {
    bound := &countingEndpoint{events: []model.Event{{ID: 1, Title: "MUSIC BOX FEST"}}}
    anon := &countingEndpoint{}
    repo := NewEventRepo(fixedSource{bound}, anon)

    events, err := repo.List(context.Background())
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    if len(events) != 1 || events[0].ID != 1 {
        t.Fatalf("unexpected events: %+v", events)
    }
    if bound.listCalls != 1 || anon.listCalls != 0 {
        t.Fatalf("healthy bound read must not touch the anonymous endpoint (bound=%d anon=%d)",
            bound.listCalls, anon.listCalls)
    }
}

func TestListFallsBackExactlyOnce(t *testing.T) {
    bound := &countingEndpoint{failReads: true}
    anon := &countingEndpoint{events: []model.Event{{ID: 2}}}
    repo := NewEventRepo(fixedSource{bound}, anon)

    events, err := repo.List(context.Background())
    if err != nil {
        t.Fatalf("list with healthy fallback: %v", err)
    }
    if len(events) != 1 || events[0].ID != 2 {
        t.Fatalf("expected fallback result, got %+v", events)
    }
    if bound.listCalls != 1 || anon.listCalls != 1 {
        t.Fatalf("want exactly one bound and one anonymous attempt, got bound=%d anon=%d",
            bound.listCalls, anon.listCalls)
    }
}

func TestListReportsReadUnavailableAfterTwoFailures(t *testing.T) {
    bound := &countingEndpoint{failReads: true}
    anon := &countingEndpoint{failReads: true}
    repo := NewEventRepo(fixedSource{bound}, anon)

    _, err := repo.List(context.Background())
    if !errors.Is(err, ErrReadUnavailable) {
        t.Fatalf("got %v, want ErrReadUnavailable", err)
    }
    if total := bound.listCalls + anon.listCalls; total != 2 {
        t.Fatalf("never more than two read attempts, got %d", total)
    }
}

func TestTicketsHaveNoAnonymousFallback(t *testing.T) {
    bound := &countingEndpoint{failReads: true}
    repo := NewTicketRepo(fixedSource{bound})

    _, err := repo.ListMine(context.Background())
    if !errors.Is(err, errEndpointDown) {
        t.Fatalf("ticket read failure must surface directly, got %v", err)
    }
    if bound.mineCalls != 1 {
        t.Fatalf("exactly one ticket read attempt, got %d", bound.mineCalls)
    }
}

func TestMutationsPassThroughWithoutRetry(t *testing.T) {
    bound := &countingEndpoint{}
    anon := &countingEndpoint{}
    events := NewEventRepo(fixedSource{bound}, anon)
    tickets := NewTicketRepo(fixedSource{bound})

    if _, err := events.Create(context.Background(), "1298", model.NewEvent{Title: "x"}); err != nil {
        t.Fatalf("create: %v", err)
    }
    if err := tickets.Delete(context.Background(), "7-1"); err != nil {
        t.Fatalf("delete ticket: %v", err)
    }
    if bound.delCalls != 1 {
        t.Fatalf("ticket delete should hit the bound endpoint once, got %d", bound.delCalls)
    }
    if anon.listCalls+anon.mineCalls+anon.buyCalls+anon.delCalls != 0 {
        t.Fatalf("mutations must never touch the anonymous endpoint")
    }
}
