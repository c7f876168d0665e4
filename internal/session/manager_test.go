package session

import (
    "context"
    "errors"
    "testing"

    "github.com/rvra/ticketgate/internal/identity"
    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/remote"
)

// stubEndpoint is a distinguishable remote.Endpoint; the calls themselves
// are never exercised by the manager.
type stubEndpoint struct{ name string }

func (s *stubEndpoint) ListEvents(context.Context) ([]model.Event, error) { return nil, nil }
func (s *stubEndpoint) MyTickets(context.Context) ([]model.Ticket, error) { return nil, nil }
func (s *stubEndpoint) CreateEvent(context.Context, string, model.NewEvent) (model.Event, error) {
    return model.Event{}, nil
}
func (s *stubEndpoint) UpdateEvent(context.Context, uint64, model.NewEvent) (model.Event, error) {
    return model.Event{}, nil
}
func (s *stubEndpoint) DeleteEvent(context.Context, uint64) error          { return nil }
func (s *stubEndpoint) BuyTicket(context.Context, uint64) (model.Ticket, error) {
    return model.Ticket{}, nil
}
func (s *stubEndpoint) DeleteTicket(context.Context, string) error { return nil }

// stubProvider records teardown calls into a shared trace so ordering can
// be asserted.
type stubProvider struct {
    kind          identity.Kind
    restoreID     model.Identity
    restoreEP     remote.Endpoint
    restoreErr    error
    disconnectErr error
    trace         *[]string
}

func (p *stubProvider) Kind() identity.Kind { return p.kind }

func (p *stubProvider) Restore(context.Context) (model.Identity, remote.Endpoint, error) {
    if p.restoreErr != nil {
        return model.Identity{}, nil, p.restoreErr
    }
    return p.restoreID, p.restoreEP, nil
}

func (p *stubProvider) Disconnect(context.Context) error {
    if p.trace != nil {
        *p.trace = append(*p.trace, "disconnect:"+string(p.kind))
    }
    return p.disconnectErr
}

func newStubProvider(kind identity.Kind, principal string, trace *[]string) *stubProvider {
    return &stubProvider{
        kind:      kind,
        restoreID: model.Identity{Principal: principal},
        restoreEP: &stubEndpoint{name: string(kind)},
        trace:     trace,
    }
}

func TestDefaultsToAnonymous(t *testing.T) {
    anon := &stubEndpoint{name: "anon"}
    m := NewManager(anon)

    cur := m.Current()
    if !cur.Anonymous() {
        t.Fatalf("fresh manager should be anonymous, got provider %v", cur.Provider)
    }
    if m.CurrentEndpoint() != remote.Endpoint(anon) {
        t.Fatalf("fresh manager should expose the anonymous endpoint")
    }
}

func TestRebindSameProviderRejected(t *testing.T) {
    m := NewManager(&stubEndpoint{name: "anon"})
    p := newStubProvider(identity.KindDelegated, "alice", nil)

    if err := m.Bind(context.Background(), p, p.restoreID, p.restoreEP); err != nil {
        t.Fatalf("first bind: %v", err)
    }
    err := m.Bind(context.Background(), p, p.restoreID, p.restoreEP)
    if !errors.Is(err, ErrAlreadyBound) {
        t.Fatalf("rebind of active provider: got %v, want ErrAlreadyBound", err)
    }
    if got := m.Current().Identity.Principal; got != "alice" {
        t.Fatalf("rejected rebind must not corrupt state, principal = %q", got)
    }
}

func TestSwitchTearsDownPreviousProvider(t *testing.T) {
    var trace []string
    m := NewManager(&stubEndpoint{name: "anon"})
    a := newStubProvider(identity.KindDelegated, "alice", &trace)
    b := newStubProvider(identity.KindWallet, "wallet-1", &trace)

    if err := m.Bind(context.Background(), a, a.restoreID, a.restoreEP); err != nil {
        t.Fatalf("bind a: %v", err)
    }
    if err := m.Bind(context.Background(), b, b.restoreID, b.restoreEP); err != nil {
        t.Fatalf("bind b: %v", err)
    }
    if len(trace) != 1 || trace[0] != "disconnect:delegated" {
        t.Fatalf("switching providers must tear down the old session first, trace = %v", trace)
    }
    cur := m.Current()
    if cur.Provider != Provider(b) || cur.Identity.Principal != "wallet-1" {
        t.Fatalf("current session should be the wallet binding, got %+v", cur)
    }
}

func TestReleaseAlwaysResetsEvenWhenTeardownFails(t *testing.T) {
    anon := &stubEndpoint{name: "anon"}
    m := NewManager(anon)
    p := newStubProvider(identity.KindWallet, "wallet-1", nil)
    p.disconnectErr = errors.New("agent unreachable")

    if err := m.Bind(context.Background(), p, p.restoreID, p.restoreEP); err != nil {
        t.Fatalf("bind: %v", err)
    }
    m.Release(context.Background())

    cur := m.Current()
    if !cur.Anonymous() {
        t.Fatalf("release must reset to anonymous even when teardown fails")
    }
    if cur.Endpoint != remote.Endpoint(anon) {
        t.Fatalf("reads after release must go through the anonymous endpoint")
    }
}

func TestAtMostOneIdentityAcrossSwitchSequences(t *testing.T) {
    var trace []string
    m := NewManager(&stubEndpoint{name: "anon"})
    a := newStubProvider(identity.KindDelegated, "alice", &trace)
    b := newStubProvider(identity.KindWallet, "wallet-1", &trace)

    ctx := context.Background()
    steps := []func(){
        func() { _ = m.Bind(ctx, a, a.restoreID, a.restoreEP) },
        func() { _ = m.Bind(ctx, b, b.restoreID, b.restoreEP) },
        func() { m.Release(ctx) },
        func() { _ = m.Bind(ctx, b, b.restoreID, b.restoreEP) },
        func() { _ = m.Bind(ctx, a, a.restoreID, a.restoreEP) },
        func() { m.Release(ctx) },
    }
    for i, step := range steps {
        step()
        cur := m.Current()
        if cur.Anonymous() {
            if cur.Identity.Principal != "" {
                t.Fatalf("step %d: anonymous session carries identity %q", i, cur.Identity.Principal)
            }
            continue
        }
        if cur.Identity.Principal == "" {
            t.Fatalf("step %d: bound session with empty identity", i)
        }
    }
    if !m.Current().Anonymous() {
        t.Fatalf("final release should leave the manager anonymous")
    }
}

func TestRestoreDelegatedFirstThenWallet(t *testing.T) {
    var trace []string
    m := NewManager(&stubEndpoint{name: "anon"})

    // Only the wallet has a session outstanding.
    a := newStubProvider(identity.KindDelegated, "alice", &trace)
    a.restoreErr = identity.ErrNoSession
    b := newStubProvider(identity.KindWallet, "wallet-1", &trace)

    m.Restore(context.Background(), a, b)
    if got := m.Current().Identity.Principal; got != "wallet-1" {
        t.Fatalf("wallet restore should have bound, principal = %q", got)
    }

    // Both outstanding: the later wallet restore wins and the delegated
    // session is torn down, never left dangling.
    trace = trace[:0]
    m2 := NewManager(&stubEndpoint{name: "anon"})
    a2 := newStubProvider(identity.KindDelegated, "alice", &trace)
    b2 := newStubProvider(identity.KindWallet, "wallet-1", &trace)
    m2.Restore(context.Background(), a2, b2)

    if got := m2.Current().Identity.Principal; got != "wallet-1" {
        t.Fatalf("wallet restore should win, principal = %q", got)
    }
    if len(trace) != 1 || trace[0] != "disconnect:delegated" {
        t.Fatalf("delegated session should be torn down during wallet bind, trace = %v", trace)
    }
}

func TestRestoreFailureDegradesToAnonymous(t *testing.T) {
    m := NewManager(&stubEndpoint{name: "anon"})
    a := newStubProvider(identity.KindDelegated, "alice", nil)
    a.restoreErr = errors.New("store unreachable")
    b := newStubProvider(identity.KindWallet, "wallet-1", nil)
    b.restoreErr = identity.ErrNoSession

    m.Restore(context.Background(), a, b)
    if !m.Current().Anonymous() {
        t.Fatalf("failed restores must degrade to anonymous, not error out")
    }
}
