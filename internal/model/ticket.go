package model

// Ticket is a purchased ticket as minted by the remote backend.  All display
// fields are denormalized copies of the event at purchase time, so later
// edits to the event do not rewrite tickets already sold.  Tickets are only
// ever created remotely; the gateway never fabricates one.
type Ticket struct {
    ID       string `json:"id"` // "<event_id>-<mint timestamp>"
    EventID  uint64 `json:"event_id"`
    Title    string `json:"title"`
    Date     string `json:"date"`
    Time     string `json:"time"`
    City     string `json:"city"`
    Venue    string `json:"venue"`
    Category string `json:"category"`
    PriceUAH uint64 `json:"price_uah"`
    PriceE8s uint64 `json:"price_e8s"`
    QRCode   string `json:"qr_code"` // JSON payload rendered as a QR by the view layer
}
