package remote

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
)

// Client is the HTTP implementation of Endpoint.  A Client value is
// immutable: the anonymous client is built once from configuration and bound
// clients are derived copies carrying a credential.  All calls go to
// <host>/api/v1/service/<service>/... so a single gateway can front any
// service on the allow-list.
type Client struct {
    host    string // backend host URL, no trailing slash
    service string // target service identifier
    token   string // bearer credential; empty for the anonymous client
    hc      *http.Client
}

// NewClient returns the anonymous client for one backend service.
func NewClient(host, service string) *Client {
    return &Client{
        host:    strings.TrimRight(host, "/"),
        service: service,
        hc:      &http.Client{Timeout: 30 * time.Second},
    }
}

// WithCredential derives a bound client issuing calls under the given
// credential.  The receiver is left untouched.
func (c *Client) WithCredential(token string) *Client {
    bound := *c
    bound.token = token
    return &bound
}

func (c *Client) url(path string) string {
    return fmt.Sprintf("%s/api/v1/service/%s%s", c.host, c.service, path)
}

// do issues one call and decodes the response into out (when non-nil).
// Non-2xx responses are turned into classified errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
    var rd io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil {
            return fmt.Errorf("encode request: %w", err)
        }
        rd = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, method, c.url(path), rd)
    if err != nil {
        return err
    }
    if body != nil {
        req.Header.Set("Content-Type", "application/json")
    }
    if c.token != "" {
        req.Header.Set("Authorization", "Bearer "+c.token)
    }
    resp, err := c.hc.Do(req)
    if err != nil {
        return fmt.Errorf("call %s: %w", path, err)
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return rejectionError(resp)
    }
    if out == nil {
        return nil
    }
    if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
        return fmt.Errorf("decode %s response: %w", path, err)
    }
    return nil
}

// rejectionError extracts the backend's error payload.  The backend is an
// external contract: newer deployments return {"code","message"}, older ones
// a bare {"error"} string, so both shapes are accepted before Classify
// falls back to substring matching.
func rejectionError(resp *http.Response) error {
    raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
    var payload struct {
        Code    string `json:"code"`
        Message string `json:"message"`
        Error   string `json:"error"`
    }
    msg := strings.TrimSpace(string(raw))
    if err := json.Unmarshal(raw, &payload); err == nil {
        if payload.Message != "" {
            msg = payload.Message
        } else if payload.Error != "" {
            msg = payload.Error
        }
    }
    if msg == "" {
        msg = resp.Status
    }
    return Classify(payload.Code, msg)
}

// createEventReq wraps the remotely validated password with the payload.
type createEventReq struct {
    Password string         `json:"password"`
    Event    model.NewEvent `json:"event"`
}

func (c *Client) ListEvents(ctx context.Context) ([]model.Event, error) {
    var events []model.Event
    if err := c.do(ctx, http.MethodGet, "/events", nil, &events); err != nil {
        return nil, err
    }
    return events, nil
}

func (c *Client) MyTickets(ctx context.Context) ([]model.Ticket, error) {
    var tickets []model.Ticket
    if err := c.do(ctx, http.MethodGet, "/tickets", nil, &tickets); err != nil {
        return nil, err
    }
    return tickets, nil
}

func (c *Client) CreateEvent(ctx context.Context, password string, ev model.NewEvent) (model.Event, error) {
    var created model.Event
    err := c.do(ctx, http.MethodPost, "/events", createEventReq{Password: password, Event: ev}, &created)
    return created, err
}

func (c *Client) UpdateEvent(ctx context.Context, id uint64, ev model.NewEvent) (model.Event, error) {
    var updated model.Event
    err := c.do(ctx, http.MethodPut, fmt.Sprintf("/events/%d", id), ev, &updated)
    return updated, err
}

func (c *Client) DeleteEvent(ctx context.Context, id uint64) error {
    return c.do(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, nil)
}

func (c *Client) BuyTicket(ctx context.Context, eventID uint64) (model.Ticket, error) {
    var t model.Ticket
    err := c.do(ctx, http.MethodPost, fmt.Sprintf("/events/%d/tickets", eventID), nil, &t)
    return t, err
}

func (c *Client) DeleteTicket(ctx context.Context, ticketID string) error {
    return c.do(ctx, http.MethodDelete, "/tickets/"+ticketID, nil, nil)
}
