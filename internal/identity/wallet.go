package identity

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/rvra/ticketgate/internal/model"
    "github.com/rvra/ticketgate/internal/remote"
)

// WalletStatus is the environment state of the wallet agent.  NotInstalled
// and Disconnected are distinct, user-visible states rather than errors: the
// view layer renders "Get wallet" for one and "Connect" for the other.
type WalletStatus string

const (
    WalletNotInstalled WalletStatus = "not_installed"
    WalletDisconnected WalletStatus = "disconnected"
    WalletConnected    WalletStatus = "connected"
)

// WalletProvider is the injected-wallet variant.  The wallet agent is an
// external process (the browser-extension analog) that owns keys and asks
// the user for approval; the adapter talks to it over a local HTTP API.
// Connect requests a grant for the fixed service allow-list and backend
// host; the grant yields the wallet principal and a session credential the
// remote endpoint calls are issued under.  The adapter keeps no state of
// its own; the agent remembers its grants.
type WalletProvider struct {
    agentURL string   // wallet agent base URL
    host     string   // backend host the grant is scoped to
    allow    []string // service identifiers the grant covers
    anon     *remote.Client
    hc       *http.Client
}

func NewWalletProvider(agentURL, host string, allow []string, anon *remote.Client) *WalletProvider {
    return &WalletProvider{
        agentURL: strings.TrimRight(agentURL, "/"),
        host:     host,
        allow:    allow,
        anon:     anon,
        hc:       &http.Client{Timeout: 60 * time.Second}, // approval prompts are slow
    }
}

func (p *WalletProvider) Kind() Kind { return KindWallet }

type walletStatusResp struct {
    Connected bool `json:"connected"`
}

type walletConnectReq struct {
    Whitelist []string `json:"whitelist"`
    Host      string   `json:"host"`
}

type walletConnectResp struct {
    Principal string `json:"principal"`
    Token     string `json:"token"`
}

// Status probes the agent.  An unreachable agent or a 404 on the status
// route means no wallet is installed in this environment.
func (p *WalletProvider) Status(ctx context.Context) WalletStatus {
    var st walletStatusResp
    if err := p.call(ctx, http.MethodGet, "/api/v1/status", nil, &st); err != nil {
        return WalletNotInstalled
    }
    if st.Connected {
        return WalletConnected
    }
    return WalletDisconnected
}

// Connect asks the agent for a grant covering the configured allow-list and
// host.  The agent prompts the user; a denial surfaces as an error here.
func (p *WalletProvider) Connect(ctx context.Context) (model.Identity, remote.Endpoint, error) {
    var grant walletConnectResp
    req := walletConnectReq{Whitelist: p.allow, Host: p.host}
    if err := p.call(ctx, http.MethodPost, "/api/v1/connect", req, &grant); err != nil {
        return model.Identity{}, nil, fmt.Errorf("wallet connect: %w", err)
    }
    if grant.Principal == "" || grant.Token == "" {
        return model.Identity{}, nil, fmt.Errorf("wallet connect: agent returned empty grant")
    }
    return model.Identity{Principal: grant.Principal}, p.anon.WithCredential(grant.Token), nil
}

// Restore silently resumes an existing grant.  When the agent reports an
// already-connected state, re-requesting the same grant does not prompt the
// user; anything else is ErrNoSession.
func (p *WalletProvider) Restore(ctx context.Context) (model.Identity, remote.Endpoint, error) {
    if p.Status(ctx) != WalletConnected {
        return model.Identity{}, nil, ErrNoSession
    }
    id, ep, err := p.Connect(ctx)
    if err != nil {
        return model.Identity{}, nil, ErrNoSession
    }
    return id, ep, nil
}

// Disconnect asks the agent to forget the grant.  Best effort.
func (p *WalletProvider) Disconnect(ctx context.Context) error {
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    return p.call(ctx, http.MethodPost, "/api/v1/disconnect", nil, nil)
}

// Balance is one asset balance as reported by the agent.
type Balance struct {
    Symbol   string `json:"symbol"`
    Amount   uint64 `json:"amount"` // in base units
    Decimals int    `json:"decimals"`
}

// RequestBalance returns the wallet's asset balances.
func (p *WalletProvider) RequestBalance(ctx context.Context) ([]Balance, error) {
    var balances []Balance
    if err := p.call(ctx, http.MethodGet, "/api/v1/balance", nil, &balances); err != nil {
        return nil, fmt.Errorf("wallet balance: %w", err)
    }
    return balances, nil
}

type walletTransferReq struct {
    To     string `json:"to"`
    Amount uint64 `json:"amount"` // base units
    Memo   string `json:"memo"`
}

// CanTransfer reports whether the wallet is able to move funds right now:
// installed, connected, nothing more.
func (p *WalletProvider) CanTransfer(ctx context.Context) bool {
    return p.Status(ctx) == WalletConnected
}

// RequestTransfer moves the exact base-unit amount to the destination
// account.  The agent blocks on user approval; cancellation and rejection
// both come back as an error.
func (p *WalletProvider) RequestTransfer(ctx context.Context, to string, amountE8s uint64, memo string) error {
    req := walletTransferReq{To: to, Amount: amountE8s, Memo: memo}
    if err := p.call(ctx, http.MethodPost, "/api/v1/transfer", req, nil); err != nil {
        return fmt.Errorf("wallet transfer: %w", err)
    }
    return nil
}

func (p *WalletProvider) call(ctx context.Context, method, path string, body, out any) error {
    var rd io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil {
            return err
        }
        rd = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, method, p.agentURL+path, rd)
    if err != nil {
        return err
    }
    if body != nil {
        req.Header.Set("Content-Type", "application/json")
    }
    resp, err := p.hc.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
        msg := strings.TrimSpace(string(raw))
        if msg == "" {
            msg = resp.Status
        }
        return fmt.Errorf("agent %s: %s", path, msg)
    }
    if out == nil {
        return nil
    }
    return json.NewDecoder(resp.Body).Decode(out)
}
