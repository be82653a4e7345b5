package models

import "encoding/json"

// PaymentRecord is one row of the append-only payment_history audit trail.
// Exactly one row is written per processed webhook event; rows are never
// updated or deleted.
type PaymentRecord struct {
	ID               string          `json:"id,omitempty"`
	UserID           string          `json:"user_id"`
	GameID           string          `json:"game_id"`
	PaymentSessionID string          `json:"payment_session_id"`
	PaymentIntentID  string          `json:"payment_intent_id,omitempty"`
	AmountCents      int64           `json:"amount_cents"`
	Currency         string          `json:"currency"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentStatus    string          `json:"payment_status"`
	RawPayload       json.RawMessage `json:"raw_payload,omitempty"`
}
