package model

// Identity is the opaque principal a provider session resolved to.  The
// canonical text form is the only attribute the rest of the system compares
// on; the provider-specific internals (delegation token, wallet key) stay
// inside the adapter that produced it.  The zero value is the anonymous
// identity.
type Identity struct {
    Principal string // canonical text form, empty when anonymous
}

// Anonymous reports whether this identity is the anonymous one.
func (id Identity) Anonymous() bool { return id.Principal == "" }

// Short returns a display-friendly form of the principal.  Long principals
// are elided in the middle, mirroring how wallet UIs render addresses.
func (id Identity) Short() string {
    p := id.Principal
    if len(p) <= 20 {
        return p
    }
    return p[:8] + "…" + p[len(p)-6:]
}

// Equal compares two identities by canonical text.
func (id Identity) Equal(other Identity) bool { return id.Principal == other.Principal }
