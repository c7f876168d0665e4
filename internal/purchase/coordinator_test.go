package purchase

import (
    "context"
    "errors"
    "strings"
    "sync"
    "testing"

    "github.com/rvra/ticketgate/internal/identity"
    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/queue"
    "github.com/rvra/ticketgate/internal/remote"
    "github.com/rvra/ticketgate/internal/session"
)

// mintEndpoint counts mint calls and can block to simulate a slow backend.
type mintEndpoint struct {
    mu       sync.Mutex
    buyCalls []uint64
    buyErr   error
    block    chan struct{} // when non-nil, BuyTicket waits until closed
    started  chan struct{} // when non-nil, closed once the first mint call arrives
}

func (e *mintEndpoint) recorded() []uint64 {
    e.mu.Lock()
    defer e.mu.Unlock()
    return append([]uint64(nil), e.buyCalls...)
}

func (e *mintEndpoint) ListEvents(context.Context) ([]model.Event, error) { return nil, nil }
func (e *mintEndpoint) MyTickets(context.Context) ([]model.Ticket, error) { return nil, nil }
func (e *mintEndpoint) CreateEvent(context.Context, string, model.NewEvent) (model.Event, error) {
    return model.Event{}, nil
}
func (e *mintEndpoint) UpdateEvent(context.Context, uint64, model.NewEvent) (model.Event, error) {
    return model.Event{}, nil
}
func (e *mintEndpoint) DeleteEvent(context.Context, uint64) error  { return nil }
func (e *mintEndpoint) DeleteTicket(context.Context, string) error { return nil }

func (e *mintEndpoint) BuyTicket(_ context.Context, id uint64) (model.Ticket, error) {
    e.mu.Lock()
    e.buyCalls = append(e.buyCalls, id)
    if e.started != nil && len(e.buyCalls) == 1 {
        close(e.started)
    }
    block := e.block
    err := e.buyErr
    e.mu.Unlock()
    if block != nil {
        <-block
    }
    if err != nil {
        return model.Ticket{}, err
    }
    return model.Ticket{ID: "minted", EventID: id, Title: "E-Commerce Conference 2025"}, nil
}

// stubWallet is a TransferCapability with scripted behavior.  Both methods
// are counted: a capability probe against a real wallet agent is already a
// wallet call, so tests that require "zero wallet calls" check both.
type stubWallet struct {
    available bool
    transferErr error
    probes    int
    calls     int
    onTransfer func() // runs inside RequestTransfer, before returning
    lastAmount uint64
    lastMemo   string
    lastTo     string
}

func (w *stubWallet) CanTransfer(context.Context) bool {
    w.probes++
    return w.available
}

func (w *stubWallet) RequestTransfer(_ context.Context, to string, amountE8s uint64, memo string) error {
    w.calls++
    w.lastTo, w.lastAmount, w.lastMemo = to, amountE8s, memo
    if w.onTransfer != nil {
        w.onTransfer()
    }
    return w.transferErr
}

type boundProvider struct{ kind identity.Kind }

func (p *boundProvider) Kind() identity.Kind { return p.kind }
func (p *boundProvider) Restore(context.Context) (model.Identity, remote.Endpoint, error) {
    return model.Identity{}, nil, identity.ErrNoSession
}
func (p *boundProvider) Disconnect(context.Context) error { return nil }

// boundSessions returns a manager bound to ep under the given principal.
func boundSessions(t *testing.T, ep remote.Endpoint, principal string) *session.Manager {
    t.Helper()
    m := session.NewManager(&mintEndpoint{})
    p := &boundProvider{kind: identity.KindDelegated}
    if err := m.Bind(context.Background(), p, model.Identity{Principal: principal}, ep); err != nil {
        t.Fatalf("bind: %v", err)
    }
    return m
}

func TestAnonymousBuyMakesZeroCalls(t *testing.T) {
    anon := &mintEndpoint{}
    wallet := &stubWallet{available: true}
    m := session.NewManager(anon)
    co := NewCoordinator(m, wallet, "treasury-1", nil)

    ev := model.Event{ID: 3, Title: "E-Commerce Conference 2025", PriceE8s: 150000000}
    _, err := co.Buy(context.Background(), ev, true)
    if !errors.Is(err, ErrIdentityRequired) {
        t.Fatalf("got %v, want ErrIdentityRequired", err)
    }
    if wallet.probes != 0 || wallet.calls != 0 {
        t.Fatalf("anonymous buy must not touch the wallet, probes=%d transfers=%d", wallet.probes, wallet.calls)
    }
    if len(anon.recorded()) != 0 {
        t.Fatalf("anonymous buy must make zero remote calls, got %v", anon.recorded())
    }
}

func TestBuyWithoutRealTransferNeverTouchesWallet(t *testing.T) {
    ep := &mintEndpoint{}
    wallet := &stubWallet{available: true}
    m := boundSessions(t, ep, "alice")
    co := NewCoordinator(m, wallet, "treasury-1", nil)

    ticket, err := co.Buy(context.Background(), model.Event{ID: 7, PriceE8s: 50000000}, false)
    if err != nil {
        t.Fatalf("buy: %v", err)
    }
    if ticket.EventID != 7 {
        t.Fatalf("unexpected ticket: %+v", ticket)
    }
    if calls := ep.recorded(); len(calls) != 1 || calls[0] != 7 {
        t.Fatalf("want exactly one mint(7), got %v", calls)
    }
    if wallet.probes != 0 || wallet.calls != 0 {
        t.Fatalf("real-transfer disabled must mean zero wallet calls, got probes=%d transfers=%d", wallet.probes, wallet.calls)
    }
}

func TestMissingTreasuryAbortsBeforeAnyCall(t *testing.T) {
    ep := &mintEndpoint{}
    wallet := &stubWallet{available: true}
    m := boundSessions(t, ep, "alice")
    co := NewCoordinator(m, wallet, "", nil) // no treasury configured

    _, err := co.Buy(context.Background(), model.Event{ID: 5, PriceE8s: 200000000}, true)
    if !errors.Is(err, ErrTransferUnavailable) {
        t.Fatalf("got %v, want ErrTransferUnavailable", err)
    }
    if wallet.probes != 0 || wallet.calls != 0 {
        t.Fatalf("zero wallet calls expected, got probes=%d transfers=%d", wallet.probes, wallet.calls)
    }
    if len(ep.recorded()) != 0 {
        t.Fatalf("zero mint calls expected, got %v", ep.recorded())
    }
}

func TestMissingWalletCapabilityAborts(t *testing.T) {
    ep := &mintEndpoint{}
    m := boundSessions(t, ep, "alice")
    co := NewCoordinator(m, nil, "treasury-1", nil)

    _, err := co.Buy(context.Background(), model.Event{ID: 5, PriceE8s: 1}, true)
    if !errors.Is(err, ErrTransferUnavailable) {
        t.Fatalf("got %v, want ErrTransferUnavailable", err)
    }
    if len(ep.recorded()) != 0 {
        t.Fatalf("zero mint calls expected, got %v", ep.recorded())
    }
}

func TestFailedTransferNeverMints(t *testing.T) {
    ep := &mintEndpoint{}
    wallet := &stubWallet{available: true, transferErr: errors.New("user rejected")}
    m := boundSessions(t, ep, "alice")
    co := NewCoordinator(m, wallet, "treasury-1", nil)

    _, err := co.Buy(context.Background(), model.Event{ID: 9, PriceE8s: 150000000}, true)
    if !errors.Is(err, ErrTransferFailed) {
        t.Fatalf("got %v, want ErrTransferFailed", err)
    }
    if wallet.calls != 1 {
        t.Fatalf("exactly one transfer attempt, got %d", wallet.calls)
    }
    if len(ep.recorded()) != 0 {
        t.Fatalf("transfer failure implies zero mint calls, got %v", ep.recorded())
    }
}

func TestTransferCarriesExactPriceAndMemo(t *testing.T) {
    ep := &mintEndpoint{}
    wallet := &stubWallet{available: true}
    m := boundSessions(t, ep, "alice")
    co := NewCoordinator(m, wallet, "treasury-1", nil)

    ev := model.Event{ID: 12, PriceE8s: 150000000}
    if _, err := co.Buy(context.Background(), ev, true); err != nil {
        t.Fatalf("buy: %v", err)
    }
    if wallet.lastTo != "treasury-1" {
        t.Fatalf("transfer destination = %q, want treasury-1", wallet.lastTo)
    }
    if wallet.lastAmount != 150000000 {
        t.Fatalf("transfer must carry the exact base-unit price, got %d", wallet.lastAmount)
    }
    if !strings.HasPrefix(wallet.lastMemo, "rvra-12-") {
        t.Fatalf("memo should combine listing id and timestamp, got %q", wallet.lastMemo)
    }
}

func TestMintFailureAfterTransferIsNotReversed(t *testing.T) {
    ep := &mintEndpoint{buyErr: errors.New("event not found")}
    wallet := &stubWallet{available: true}
    m := boundSessions(t, ep, "alice")
    co := NewCoordinator(m, wallet, "treasury-1", nil)

    _, err := co.Buy(context.Background(), model.Event{ID: 4, PriceE8s: 1000}, true)
    if err == nil {
        t.Fatalf("mint failure must surface")
    }
    if errors.Is(err, ErrTransferFailed) || errors.Is(err, ErrTransferUnavailable) {
        t.Fatalf("mint failure must not masquerade as a transfer error: %v", err)
    }
    if wallet.calls != 1 || len(ep.recorded()) != 1 {
        t.Fatalf("expected one transfer and one mint attempt, got %d/%d", wallet.calls, len(ep.recorded()))
    }
}

func TestEndpointCapturedAtAttemptStart(t *testing.T) {
    ep := &mintEndpoint{}
    m := boundSessions(t, ep, "alice")
    // The wallet prompt releases the session mid-attempt, as a user
    // signing out in another tab would.
    wallet := &stubWallet{available: true, onTransfer: func() { m.Release(context.Background()) }}
    co := NewCoordinator(m, wallet, "treasury-1", nil)

    if _, err := co.Buy(context.Background(), model.Event{ID: 8, PriceE8s: 10}, true); err != nil {
        t.Fatalf("buy: %v", err)
    }
    if calls := ep.recorded(); len(calls) != 1 || calls[0] != 8 {
        t.Fatalf("mint must go through the endpoint captured at attempt start, got %v", calls)
    }
}

func TestSecondAttemptForSameEventRejectedWhileInFlight(t *testing.T) {
    ep := &mintEndpoint{block: make(chan struct{}), started: make(chan struct{})}
    m := boundSessions(t, ep, "alice")
    co := NewCoordinator(m, nil, "", nil)

    done := make(chan error, 1)
    go func() {
        _, err := co.Buy(context.Background(), model.Event{ID: 2}, false)
        done <- err
    }()

    // Wait for the first attempt to reach the (blocked) mint call.
    <-ep.started

    _, err := co.Buy(context.Background(), model.Event{ID: 2}, false)
    if !errors.Is(err, ErrAttemptInFlight) {
        t.Fatalf("got %v, want ErrAttemptInFlight", err)
    }

    close(ep.block)
    if err := <-done; err != nil {
        t.Fatalf("first attempt: %v", err)
    }
    if calls := ep.recorded(); len(calls) != 1 {
        t.Fatalf("guard must keep a single mint call, got %v", calls)
    }
}

func TestSuccessfulPurchasePublishesMintedEvent(t *testing.T) {
    ep := &mintEndpoint{}
    m := boundSessions(t, ep, "alice")
    var published []queue.TicketMintedEvent
    co := NewCoordinator(m, nil, "", func(_ context.Context, ev queue.TicketMintedEvent) error {
        published = append(published, ev)
        return nil
    })

    if _, err := co.Buy(context.Background(), model.Event{ID: 7, PriceE8s: 11, PriceUAH: 3}, false); err != nil {
        t.Fatalf("buy: %v", err)
    }
    if len(published) != 1 {
        t.Fatalf("expected one minted event, got %d", len(published))
    }
    got := published[0]
    if got.EventID != 7 || got.Principal != "alice" || got.RealTransfer {
        t.Fatalf("unexpected minted event: %+v", got)
    }
}
