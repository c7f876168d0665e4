// Package purchase orchestrates the multi-step buy flow: identity
// precondition, optional ledger transfer, then the remote mint.  The steps
// of one attempt run strictly in sequence and the session captured at the
// start of the attempt is used throughout, so a provider switch mid-flight
// cannot change whose ticket is minted.
package purchase

import (
    "context"
    "errors"
    "fmt"
    "log"
    "sync"
    "time"

    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/queue"
    "github.com/rvra/ticketgate/internal/session"
)

var (
    // ErrIdentityRequired: the buy was attempted with no bound identity.
    // Recoverable by signing in; no remote or wallet call was made.
    ErrIdentityRequired = errors.New("sign in or connect a wallet to buy")
    // ErrTransferUnavailable: real-transfer mode is on but the wallet
    // cannot transfer or no treasury account is configured.  Nothing was
    // called.
    ErrTransferUnavailable = errors.New("ledger transfer unavailable")
    // ErrTransferFailed: the wallet transfer was cancelled or failed; the
    // mint was not attempted.
    ErrTransferFailed = errors.New("payment cancelled or failed")
    // ErrAttemptInFlight: a purchase for this event is already running.
    // Mirrors the disabled buy button: it narrows, without eliminating,
    // the duplicate-mint window.
    ErrAttemptInFlight = errors.New("purchase already in progress")
)

// TransferCapability is the wallet-native payment step.  The wallet
// provider satisfies it; a nil capability means the environment has no
// wallet at all.
type TransferCapability interface {
    CanTransfer(ctx context.Context) bool
    RequestTransfer(ctx context.Context, to string, amountE8s uint64, memo string) error
}

// Publisher emits the post-mint domain event.  Failures are ignored.
type Publisher func(ctx context.Context, ev queue.TicketMintedEvent) error

// Coordinator runs purchase attempts.  Treasury is the destination account
// for real transfers; when empty, real-transfer mode is disabled entirely.
type Coordinator struct {
    Sessions *session.Manager
    Wallet   TransferCapability
    Treasury string
    Publish  Publisher // optional

    mu       sync.Mutex
    inflight map[uint64]bool
}

func NewCoordinator(sessions *session.Manager, wallet TransferCapability, treasury string, publish Publisher) *Coordinator {
    return &Coordinator{
        Sessions: sessions,
        Wallet:   wallet,
        Treasury: treasury,
        Publish:  publish,
        inflight: make(map[uint64]bool),
    }
}

// Buy executes one purchase attempt for ev and returns the minted ticket.
//
// Ordering is strict: the identity precondition is checked before anything
// else, the transfer (when enabled) completes before the mint is attempted,
// and a failed or cancelled transfer aborts the attempt with zero mint
// calls.  A transfer that succeeded is not reversed if the mint then fails;
// reconciliation is out of scope and the error tells the user so.  Minting
// is not exactly-once under retry: if the mint succeeded remotely but the
// response was lost, buying again produces a second ticket.
func (c *Coordinator) Buy(ctx context.Context, ev model.Event, realTransfer bool) (model.Ticket, error) {
    if !c.begin(ev.ID) {
        return model.Ticket{}, ErrAttemptInFlight
    }
    defer c.end(ev.ID)

    // Capture the session once; every step of this attempt uses it.
    snap := c.Sessions.Current()
    if snap.Anonymous() {
        return model.Ticket{}, ErrIdentityRequired
    }

    intent := model.NewPurchaseIntent(ev, realTransfer, time.Now().UnixMilli())

    if intent.RealTransfer {
        // The treasury guard comes first: a missing destination account
        // aborts the attempt before the wallet is probed at all.
        if c.Treasury == "" {
            return model.Ticket{}, fmt.Errorf("%w: no treasury account configured", ErrTransferUnavailable)
        }
        if c.Wallet == nil || !c.Wallet.CanTransfer(ctx) {
            return model.Ticket{}, fmt.Errorf("%w: wallet transfer not available", ErrTransferUnavailable)
        }
        if err := c.Wallet.RequestTransfer(ctx, c.Treasury, intent.Event.PriceE8s, intent.Memo); err != nil {
            return model.Ticket{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
        }
    }

    ticket, err := snap.Endpoint.BuyTicket(ctx, intent.Event.ID)
    if err != nil {
        if intent.RealTransfer {
            // The transfer already settled and is not reversed here.
            return model.Ticket{}, fmt.Errorf("mint failed after transfer (funds not refunded automatically): %w", err)
        }
        return model.Ticket{}, err
    }

    c.announce(ctx, snap, intent, ticket)
    return ticket, nil
}

// announce publishes the ticket.minted event.  Broker trouble never fails
// a purchase that already succeeded.
func (c *Coordinator) announce(ctx context.Context, snap session.Session, intent model.PurchaseIntent, t model.Ticket) {
    if c.Publish == nil {
        return
    }
    err := c.Publish(ctx, queue.TicketMintedEvent{
        TicketID:     t.ID,
        EventID:      t.EventID,
        Title:        t.Title,
        Principal:    snap.Identity.Principal,
        PriceUAH:     t.PriceUAH,
        PriceE8s:     t.PriceE8s,
        RealTransfer: intent.RealTransfer,
        Memo:         intent.Memo,
        MintedAt:     time.Now().UTC().Format(time.RFC3339),
    })
    if err != nil {
        log.Printf("purchase: publish ticket.minted failed: %v", err)
    }
}

func (c *Coordinator) begin(eventID uint64) bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.inflight[eventID] {
        return false
    }
    c.inflight[eventID] = true
    return true
}

func (c *Coordinator) end(eventID uint64) {
    c.mu.Lock()
    defer c.mu.Unlock()
    delete(c.inflight, eventID)
}

// RealTransferEnabled reports whether the deployment can do real ledger
// transfers at all (treasury configured and a wallet present).  The view
// layer uses it to grey out the toggle.
func (c *Coordinator) RealTransferEnabled() bool {
    return c.Treasury != "" && c.Wallet != nil
}
