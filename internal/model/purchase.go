package model

import "fmt"

// PurchaseIntent captures one purchase attempt: the event being bought,
// whether a real ledger transfer should precede the mint, and a memo that
// ties the transfer to the attempt.  Intents are transient and never stored.
type PurchaseIntent struct {
    Event        Event
    RealTransfer bool
    Memo         string
}

// NewPurchaseIntent builds an intent with a memo of the form
// "rvra-<event_id>-<timestamp>".  The timestamp (caller-supplied, unix
// milliseconds) disambiguates repeated purchases of the same event.
func NewPurchaseIntent(ev Event, realTransfer bool, nowMillis int64) PurchaseIntent {
    return PurchaseIntent{
        Event:        ev,
        RealTransfer: realTransfer,
        Memo:         fmt.Sprintf("rvra-%d-%d", ev.ID, nowMillis),
    }
}
