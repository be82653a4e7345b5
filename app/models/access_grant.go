package models

import "time"

// AccessGrant is one user's license window for one game, table
// user_game_access. At most one logically current row exists per
// (user_id, game_id); renewals extend the existing row instead of inserting
// a duplicate. Rows are never deleted, only extended or reactivated.
type AccessGrant struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	GameID         string    `json:"game_id"`
	StartDate      time.Time `json:"start_date"`
	ExpirationDate time.Time `json:"expiration_date"`
	IsActive       bool      `json:"is_active"`
	PaymentID      string    `json:"payment_id"`
}

// NewAccessGrant builds the row inserted on a user's first successful payment
// for a game.
func NewAccessGrant(userID, gameID, paymentID string, now time.Time) *AccessGrant {
	return &AccessGrant{
		UserID:         userID,
		GameID:         gameID,
		StartDate:      now,
		ExpirationDate: now.AddDate(0, 1, 0),
		IsActive:       true,
		PaymentID:      paymentID,
	}
}

// ExtendedExpiration computes the expiration after crediting one more month.
// A renewal before expiry extends from the unused remainder; a renewal after
// expiry restarts from now.
func (g *AccessGrant) ExtendedExpiration(now time.Time) time.Time {
	base := now
	if g.ExpirationDate.After(now) {
		base = g.ExpirationDate
	}
	return base.AddDate(0, 1, 0)
}
