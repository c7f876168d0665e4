package identity

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/remote"
    "github.com/rvra/ticketgate/internal/utils"
)

// DelegationStore is the adapter's own persistence for delegation tokens.
// The MySQL-backed repository.DelegationRepo satisfies it; a missing or
// expired delegation is reported as sql.ErrNoRows.
type DelegationStore interface {
    Store(ctx context.Context, principal, tokenHash, token string, exp time.Time) error
    Active(ctx context.Context) (principal, token string, err error)
    RevokeAll(ctx context.Context) error
}

// DelegatedProvider is the redirect-based authentication variant.  The user
// authenticates against an external identity issuer; the flow ends with a
// signed, time-bounded delegation token handed back to the gateway.  The
// adapter verifies that token, keeps it in its own store so the session
// survives restarts, and derives remote endpoints that call the backend
// under it.  Logout revokes the local delegation only; the issuer is not
// contacted.
type DelegatedProvider struct {
    IssuerURL string // login page the view layer redirects to
    secret    string // HS256 secret shared with the issuer
    store     DelegationStore
    anon      *remote.Client // template for deriving bound endpoints
}

func NewDelegatedProvider(issuerURL, secret string, store DelegationStore, anon *remote.Client) *DelegatedProvider {
    return &DelegatedProvider{IssuerURL: issuerURL, secret: secret, store: store, anon: anon}
}

func (p *DelegatedProvider) Kind() Kind { return KindDelegated }

// Connect completes a login: the assertion is the delegation token the
// issuer redirect handed to the user agent.  On success the delegation is
// persisted (replacing any previous one) and an endpoint bound to it is
// returned.
func (p *DelegatedProvider) Connect(ctx context.Context, assertion string) (model.Identity, remote.Endpoint, error) {
    principal, exp, err := utils.ParseDelegation(p.secret, assertion)
    if err != nil {
        return model.Identity{}, nil, fmt.Errorf("delegated connect: %w", err)
    }
    if err := p.store.Store(ctx, principal, utils.HashDelegationRaw(assertion), assertion, exp); err != nil {
        return model.Identity{}, nil, fmt.Errorf("delegated connect: store delegation: %w", err)
    }
    return model.Identity{Principal: principal}, p.anon.WithCredential(assertion), nil
}

// Restore resumes a previously stored, still-valid delegation without any
// user interaction.  ErrNoSession means there is nothing to resume.
func (p *DelegatedProvider) Restore(ctx context.Context) (model.Identity, remote.Endpoint, error) {
    principal, token, err := p.store.Active(ctx)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Identity{}, nil, ErrNoSession
    }
    if err != nil {
        return model.Identity{}, nil, fmt.Errorf("delegated restore: %w", err)
    }
    // The stored token may have been issued long ago; re-verify before use
    // so an expired delegation degrades to anonymous instead of failing
    // every subsequent call.
    if _, _, err := utils.ParseDelegation(p.secret, token); err != nil {
        return model.Identity{}, nil, ErrNoSession
    }
    return model.Identity{Principal: principal}, p.anon.WithCredential(token), nil
}

// Disconnect revokes the local delegation.  Failures are logged and
// returned, but callers treat teardown as best effort.
func (p *DelegatedProvider) Disconnect(ctx context.Context) error {
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    if err := p.store.RevokeAll(ctx); err != nil {
        log.Printf("delegated: revoke failed: %v", err)
        return err
    }
    return nil
}
