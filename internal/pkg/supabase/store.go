package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ManuelReschke/SaturnGames/app/models"
)

// GetGame fetches one catalog entry by id. Returns ErrNoRows for unknown ids.
func (c *Client) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	query := url.Values{}
	query.Set("id", "eq."+gameID)
	query.Set("select", "id,name,price_cents,currency")

	body, err := c.doREST(ctx, http.MethodGet, c.restURL("games", query), nil)
	if err != nil {
		return nil, err
	}

	var games []models.Game
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("supabase games response invalid: %w", err)
	}
	if len(games) == 0 {
		return nil, ErrNoRows
	}
	return &games[0], nil
}

// ListGames fetches the whole catalog for the storefront listing.
func (c *Client) ListGames(ctx context.Context) ([]models.Game, error) {
	query := url.Values{}
	query.Set("select", "id,name,price_cents,currency")
	query.Set("order", "name.asc")

	body, err := c.doREST(ctx, http.MethodGet, c.restURL("games", query), nil)
	if err != nil {
		return nil, err
	}

	var games []models.Game
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("supabase games response invalid: %w", err)
	}
	return games, nil
}

// FindAccessGrant looks up the current license row for a (user, game) pair.
// The store is expected to hold at most one logical row; if several come back
// the first one is authoritative. Returns ErrNoRows when none exists.
func (c *Client) FindAccessGrant(ctx context.Context, userID, gameID string) (*models.AccessGrant, error) {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)
	query.Set("game_id", "eq."+gameID)
	query.Set("select", "*")

	body, err := c.doREST(ctx, http.MethodGet, c.restURL("user_game_access", query), nil)
	if err != nil {
		return nil, err
	}

	var grants []models.AccessGrant
	if err := json.Unmarshal(body, &grants); err != nil {
		return nil, fmt.Errorf("supabase user_game_access response invalid: %w", err)
	}
	if len(grants) == 0 {
		return nil, ErrNoRows
	}
	return &grants[0], nil
}

// InsertAccessGrant creates the first license row for a (user, game) pair.
func (c *Client) InsertAccessGrant(ctx context.Context, grant *models.AccessGrant) error {
	payload, err := json.Marshal(map[string]interface{}{
		"user_id":         grant.UserID,
		"game_id":         grant.GameID,
		"start_date":      grant.StartDate.UTC().Format(time.RFC3339),
		"expiration_date": grant.ExpirationDate.UTC().Format(time.RFC3339),
		"is_active":       grant.IsActive,
		"payment_id":      grant.PaymentID,
	})
	if err != nil {
		return err
	}

	_, err = c.doREST(ctx, http.MethodPost, c.restURL("user_game_access", nil), payload)
	return err
}

// ExtendAccessGrant updates an existing license row after a successful
// payment: new expiration, reactivated, stamped with the paying session id.
// start_date is deliberately left untouched.
func (c *Client) ExtendAccessGrant(ctx context.Context, grantID string, expiration time.Time, paymentID string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"expiration_date": expiration.UTC().Format(time.RFC3339),
		"is_active":       true,
		"payment_id":      paymentID,
	})
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("id", "eq."+grantID)
	_, err = c.doREST(ctx, http.MethodPatch, c.restURL("user_game_access", query), payload)
	return err
}

// InsertPaymentRecord appends one audit row to payment_history.
func (c *Client) InsertPaymentRecord(ctx context.Context, record *models.PaymentRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	_, err = c.doREST(ctx, http.MethodPost, c.restURL("payment_history", nil), payload)
	return err
}

// HasPaymentRecord reports whether a payment_history row already exists for a
// checkout session id. Used to keep redelivered webhook events from crediting
// a second month.
func (c *Client) HasPaymentRecord(ctx context.Context, paymentSessionID string) (bool, error) {
	query := url.Values{}
	query.Set("payment_session_id", "eq."+paymentSessionID)
	query.Set("select", "id")
	query.Set("limit", "1")

	body, err := c.doREST(ctx, http.MethodGet, c.restURL("payment_history", query), nil)
	if err != nil {
		return false, err
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, fmt.Errorf("supabase payment_history response invalid: %w", err)
	}
	return len(rows) > 0, nil
}
