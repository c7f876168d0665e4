// Package identity holds the two provider adapters a session can be bound
// through.  Each adapter owns the full lifecycle of its provider: how a
// session is established, how it is silently restored at startup, how it is
// torn down, and how its credential turns into a bound remote endpoint.
// Environment probing ("is the wallet agent even installed?") lives inside
// the adapter so call sites never feature-detect themselves.
package identity

import "errors"

// Kind names a provider variant.  Exactly two exist.
type Kind string

const (
    // KindDelegated is the redirect-based delegated-authentication provider.
    KindDelegated Kind = "delegated"
    // KindWallet is the external wallet-agent provider.
    KindWallet Kind = "wallet"
)

// ErrNoSession is returned by Restore when the provider has no previously
// established session to resume.  It is a state, not a failure.
var ErrNoSession = errors.New("no session to restore")
