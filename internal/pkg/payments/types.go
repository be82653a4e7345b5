package payments

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventTypeCheckoutCompleted is the only event type that triggers
// reconciliation; every other type is acknowledged and dropped.
const EventTypeCheckoutCompleted = "checkout.session.completed"

// Event is the payment processor's signed notification envelope. It lives
// only for the duration of one webhook request. The inner object is kept as
// raw bytes so the audit trail stores exactly what the processor sent.
type Event struct {
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession decodes the event's inner object as a checkout session.
func (e *Event) CheckoutSession() (*CheckoutSession, error) {
	var session CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &session); err != nil {
		return nil, fmt.Errorf("invalid checkout session object: %w", err)
	}
	return &session, nil
}

// CheckoutSession is the processor-side payment flow instance echoed back in
// completion events. Metadata carries the domain identifiers attached at
// session creation; it is the only link back to our entities.
type CheckoutSession struct {
	ID                 string            `json:"id"`
	PaymentIntent      string            `json:"payment_intent"`
	AmountTotal        int64             `json:"amount_total"`
	Currency           string            `json:"currency"`
	PaymentMethodTypes []string          `json:"payment_method_types"`
	PaymentStatus      string            `json:"payment_status"`
	Metadata           map[string]string `json:"metadata"`
}

// UserID returns the user id carried in the session metadata, empty if absent.
func (s *CheckoutSession) UserID() string {
	return strings.TrimSpace(s.Metadata["user_id"])
}

// GameID returns the game id carried in the session metadata, empty if absent.
func (s *CheckoutSession) GameID() string {
	return strings.TrimSpace(s.Metadata["game_id"])
}

// PaymentMethods joins the session's payment method types for the audit row.
func (s *CheckoutSession) PaymentMethods() string {
	return strings.Join(s.PaymentMethodTypes, ",")
}

// ParseEvent decodes a verified raw webhook body into the event envelope.
// Callers must verify the signature over the same bytes first.
func ParseEvent(raw []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}
	return &event, nil
}
