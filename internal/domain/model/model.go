// Package model contains the typed records read from the analytics store.
//
// All entities are produced by the upstream ingestion pipeline and are
// read-only here. Absent numeric fields decode to zero and absent string
// fields to the empty string; classification sites treat those as unknown.
package model

// Event is a photographed sports event (race or training session).
type Event struct {
	ID                string `json:"id"`
	Name              string `json:"event_name"`
	EventType         string `json:"event_type"` // "prova" or "treino"
	Sport             string `json:"sport"`
	Date              Date   `json:"event_date"`
	Location          string `json:"event_location"`
	TotalPhotos       int    `json:"total_photos"`
	TotalAthletesEst  int    `json:"total_athletes_estimated"`
}

// Person is an attendee identified in event photography. Gender is "M", "F",
// or empty when unknown; Age is zero when unknown.
type Person struct {
	ID      string `json:"person_id"`
	EventID string `json:"event_id"`
	Gender  string `json:"gender"`
	Age     int    `json:"age"`
}

// Item is a branded garment or accessory detected on a person. EventID is
// denormalized onto the item so event-scoped reads need no join.
type Item struct {
	ID          string `json:"item_id"`
	EventID     string `json:"event_id"`
	PersonID    string `json:"person_id"`
	Brand       string `json:"brand"`
	ProductType string `json:"product_type"`
}

// BrandSummaryRow is a precomputed per-event brand aggregate supplied by the
// store. SharePercent is relative to that single event only; cross-event
// shares are recomputed from the raw counts.
type BrandSummaryRow struct {
	EventID          string  `json:"event_id"`
	Brand            string  `json:"brand"`
	TotalItems       int     `json:"total_items"`
	PersonsWithBrand int     `json:"persons_with_brand"`
	SharePercent     float64 `json:"brand_share_percent"`
}

// ProductSummaryRow is the product-type counterpart of BrandSummaryRow.
type ProductSummaryRow struct {
	EventID      string  `json:"event_id"`
	ProductType  string  `json:"product_type"`
	TotalItems   int     `json:"total_items"`
	SharePercent float64 `json:"product_share_percent"`
}

// BrandActivityRow carries per-event brand totals together with the event
// date. It feeds the monthly time series.
type BrandActivityRow struct {
	EventID    string `json:"event_id"`
	EventDate  Date   `json:"event_date"`
	Brand      string `json:"brand"`
	TotalItems int    `json:"total_items"`
}
