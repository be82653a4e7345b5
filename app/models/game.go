package models

// Game is a read-only catalog entry owned by the data store. Prices are minor
// units (cents) in the row's currency.
type Game struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
}
