package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/rvra/ticketgate/internal/identity"
    "github.com/rvra/ticketgate/internal/session"
)

// SessionHandler exposes the session binding subsystem: who is currently
// bound, connecting and disconnecting either provider, and the wallet
// balance readout.  These endpoints are the call sites of the original
// sign-in buttons.
type SessionHandler struct {
    Sessions  *session.Manager
    Delegated *identity.DelegatedProvider
    Wallet    *identity.WalletProvider // nil when no wallet agent is configured
}

func NewSessionHandler(s *session.Manager, d *identity.DelegatedProvider, w *identity.WalletProvider) *SessionHandler {
    return &SessionHandler{Sessions: s, Delegated: d, Wallet: w}
}

type sessionResp struct {
    Provider       string `json:"provider"` // "delegated", "wallet" or "" for anonymous
    Principal      string `json:"principal"`
    PrincipalShort string `json:"principal_short"`
    WalletStatus   string `json:"wallet_status"`
    IssuerURL      string `json:"issuer_url"`
}

func (h *SessionHandler) status(ctx context.Context) sessionResp {
    cur := h.Sessions.Current()
    resp := sessionResp{
        Principal:      cur.Identity.Principal,
        PrincipalShort: cur.Identity.Short(),
        IssuerURL:      h.Delegated.IssuerURL,
        WalletStatus:   string(identity.WalletNotInstalled),
    }
    if cur.Provider != nil {
        resp.Provider = string(cur.Provider.Kind())
    }
    if h.Wallet != nil {
        resp.WalletStatus = string(h.Wallet.Status(ctx))
    }
    return resp
}

// Status reports the current binding and the wallet's environment state.
// "not_installed" and "disconnected" are distinct values here on purpose:
// the view renders different affordances for them.
func (h *SessionHandler) Status(c echo.Context) error {
    return c.JSON(http.StatusOK, h.status(c.Request().Context()))
}

type delegatedConnectReq struct {
    Assertion string `json:"assertion"` // delegation token from the issuer redirect
}

// ConnectDelegated completes the redirect-based sign-in.  Rebinding the
// already-active delegated session is rejected explicitly rather than
// silently re-run.
func (h *SessionHandler) ConnectDelegated(c echo.Context) error {
    var req delegatedConnectReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Assertion) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "assertion required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    if cur := h.Sessions.Current(); cur.Provider != nil && cur.Provider.Kind() == identity.KindDelegated {
        return writeError(c, session.ErrAlreadyBound)
    }
    id, ep, err := h.Delegated.Connect(ctx, req.Assertion)
    if err != nil {
        return writeError(c, err)
    }
    if err := h.Sessions.Bind(ctx, h.Delegated, id, ep); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, h.status(ctx))
}

// ConnectWallet asks the wallet agent for a grant and binds the resulting
// identity.  A missing agent is a state, not a crash, so it gets a clear
// conflict response instead of a 500.
func (h *SessionHandler) ConnectWallet(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 90*time.Second) // user approval can be slow
    defer cancel()

    if h.Wallet == nil || h.Wallet.Status(ctx) == identity.WalletNotInstalled {
        return c.JSON(http.StatusConflict, echo.Map{"error": "Wallet agent is not installed."})
    }
    if cur := h.Sessions.Current(); cur.Provider != nil && cur.Provider.Kind() == identity.KindWallet {
        return writeError(c, session.ErrAlreadyBound)
    }
    id, ep, err := h.Wallet.Connect(ctx)
    if err != nil {
        return writeError(c, err)
    }
    if err := h.Sessions.Bind(ctx, h.Wallet, id, ep); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, h.status(ctx))
}

// Release resets to the anonymous session regardless of provider.  It
// always succeeds; provider-side teardown is best effort.
func (h *SessionHandler) Release(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()
    h.Sessions.Release(ctx)
    return c.JSON(http.StatusOK, h.status(ctx))
}

// WalletBalance returns the connected wallet's asset balances.
func (h *SessionHandler) WalletBalance(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()
    if h.Wallet == nil || h.Wallet.Status(ctx) != identity.WalletConnected {
        return c.JSON(http.StatusConflict, echo.Map{"error": "Wallet is not connected."})
    }
    balances, err := h.Wallet.RequestBalance(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, balances)
}
