// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketMintedEvent is published after a purchase completes and the backend
// has minted the ticket.  It carries enough denormalized detail for
// downstream consumers (audit log, notifications, analytics) without a
// follow-up read.
type TicketMintedEvent struct {
    TicketID     string `json:"ticket_id"`
    EventID      uint64 `json:"event_id"`
    Title        string `json:"title"`
    Principal    string `json:"principal"`
    PriceUAH     uint64 `json:"price_uah"`
    PriceE8s     uint64 `json:"price_e8s"`
    RealTransfer bool   `json:"real_transfer"`
    Memo         string `json:"memo"`
    MintedAt     string `json:"minted_at"`
}
