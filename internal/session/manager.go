// Package session owns the single process-wide "who am I, which endpoint do
// I use" state.  Every other component reads the current session through the
// Manager; only Bind and Release mutate it.
package session

import (
    "context"
    "errors"
    "log"

    "github.com/rvra/ticketgate/internal/identity"
    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/remote"

    "sync"
)

// ErrAlreadyBound is returned when Bind is called for the provider that is
// already the active one.  The caller sees an explicit rejection instead of
// a silent rebind.
var ErrAlreadyBound = errors.New("provider already bound")

// Provider is the part of a provider adapter the manager needs: its variant
// tag, silent session resumption, and teardown.  Both adapters in the
// identity package satisfy it.
type Provider interface {
    Kind() identity.Kind
    Restore(ctx context.Context) (model.Identity, remote.Endpoint, error)
    Disconnect(ctx context.Context) error
}

// Session is an immutable snapshot of the current binding.  Operations that
// span several remote calls (a purchase) capture one Session up front and
// use it throughout, so a concurrent provider switch cannot change the
// identity mid-flight.
type Session struct {
    Provider Provider // nil when anonymous
    Identity model.Identity
    Endpoint remote.Endpoint
}

// Anonymous reports whether this snapshot is the anonymous session.
func (s Session) Anonymous() bool { return s.Provider == nil }

// Manager mediates exclusive switching between the two provider variants
// and the anonymous fallback.
type Manager struct {
    mu   sync.Mutex
    anon remote.Endpoint
    cur  Session
}

// NewManager returns a manager bound to the anonymous endpoint.
func NewManager(anon remote.Endpoint) *Manager {
    m := &Manager{anon: anon}
    m.cur = Session{Endpoint: anon}
    return m
}

// Current returns the current session snapshot.  Always defined; defaults
// to the anonymous session.
func (m *Manager) Current() Session {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.cur
}

// CurrentEndpoint is a convenience for read paths that only need the
// capability, not the identity.
func (m *Manager) CurrentEndpoint() remote.Endpoint {
    return m.Current().Endpoint
}

// Anonymous returns the anonymous endpoint used for fallback reads.
func (m *Manager) Anonymous() remote.Endpoint { return m.anon }

// Bind atomically replaces the current identity and endpoint.  Rebinding
// the provider that is already active fails with ErrAlreadyBound.  When a
// different provider is active, its session is torn down first so its
// provider-side state does not leak into the new binding; teardown failure
// is logged but never blocks the switch.  The lock is held across the
// teardown so no reader ever observes the old identity with the new
// endpoint or vice versa.
func (m *Manager) Bind(ctx context.Context, p Provider, id model.Identity, ep remote.Endpoint) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.cur.Provider != nil {
        if m.cur.Provider.Kind() == p.Kind() {
            return ErrAlreadyBound
        }
        if err := m.cur.Provider.Disconnect(ctx); err != nil {
            log.Printf("session: teardown of %s before bind failed: %v", m.cur.Provider.Kind(), err)
        }
    }
    m.cur = Session{Provider: p, Identity: id, Endpoint: ep}
    return nil
}

// Release resets to the anonymous session regardless of which provider was
// active.  Provider-side teardown is attempted but its failure does not
// block the reset; Release always succeeds.
func (m *Manager) Release(ctx context.Context) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.cur.Provider != nil {
        if err := m.cur.Provider.Disconnect(ctx); err != nil {
            log.Printf("session: teardown of %s failed: %v", m.cur.Provider.Kind(), err)
        }
    }
    m.cur = Session{Endpoint: m.anon}
}

// Restore attempts to silently resume provider sessions in the given order
// at startup, before the API is considered ready.  A provider with nothing
// to resume or a failing restore degrades to whatever was bound before it;
// no restore failure is surfaced to the user.
func (m *Manager) Restore(ctx context.Context, providers ...Provider) {
    for _, p := range providers {
        id, ep, err := p.Restore(ctx)
        if err != nil {
            if !errors.Is(err, identity.ErrNoSession) {
                log.Printf("session: restore of %s failed: %v", p.Kind(), err)
            }
            continue
        }
        if err := m.Bind(ctx, p, id, ep); err != nil {
            log.Printf("session: restore bind of %s failed: %v", p.Kind(), err)
        }
    }
}
