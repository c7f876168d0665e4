package model

import "strings"

// Event is a marketplace listing as served by the remote backend.  Prices are
// carried in two denominations: a fiat display price and the ledger base
// unit (e8s, 1e-8 of the display currency).
//
// Fields:
//  ID          – backend-assigned identifier.
//  Title       – event name.
//  Date        – YYYY-MM-DD.
//  Time        – HH:mm.
//  City        – city the event takes place in.
//  Category    – free-form category label (Concert, Theater, ...).
//  Venue       – venue address line.
//  Image       – image URL.
//  Description – long description.
//  PriceUAH    – fiat display price.
//  PriceE8s    – ledger price in base units.
//  CreatedBy   – creator principal; nil for seeded catalog entries.
type Event struct {
    ID          uint64    `json:"id"`
    Title       string    `json:"title"`
    Date        string    `json:"date"`
    Time        string    `json:"time"`
    City        string    `json:"city"`
    Category    string    `json:"category"`
    Venue       string    `json:"venue"`
    Image       string    `json:"image"`
    Description string    `json:"description"`
    PriceUAH    uint64    `json:"price_uah"`
    PriceE8s    uint64    `json:"price_e8s"`
    CreatedBy   *Identity `json:"created_by,omitempty"`
}

// NewEvent carries the caller-supplied fields for a create or update.
type NewEvent struct {
    Title       string `json:"title"`
    Date        string `json:"date"`
    Time        string `json:"time"`
    City        string `json:"city"`
    Category    string `json:"category"`
    Venue       string `json:"venue"`
    Image       string `json:"image"`
    Description string `json:"description"`
    PriceUAH    uint64 `json:"price_uah"`
    PriceE8s    uint64 `json:"price_e8s"`
}

// CanEdit reports whether the given identity may edit or delete this event.
// Seeded events carry no creator and are editable by anyone; everything else
// requires the current principal to match the recorded creator.  The backend
// enforces the same rule on the actual mutation, so this is an affordance
// check only.
func (e Event) CanEdit(current Identity) bool {
    if e.CreatedBy == nil {
        return true
    }
    if current.Anonymous() {
        return false
    }
    return e.CreatedBy.Equal(current)
}

// Matches applies the browse filters: a free-text query against title and
// city, an exact category (empty or "All" matches everything) and an exact
// date.
func (e Event) Matches(query, category, date string) bool {
    if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
        if !strings.Contains(strings.ToLower(e.Title), q) &&
            !strings.Contains(strings.ToLower(e.City), q) {
            return false
        }
    }
    if category != "" && category != "All" && e.Category != category {
        return false
    }
    if date != "" && e.Date != date {
        return false
    }
    return true
}
