package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ManuelReschke/SaturnGames/app/models"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/config"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/supabase"
)

// StripeClient creates hosted checkout sessions against the Stripe REST API.
// The API base is configurable so tests can point it at a local server.
type StripeClient struct {
	SecretKey string
	APIBase   string
	BaseURL   string

	HTTPClient *http.Client
}

// NewStripeClient builds a client from the validated service configuration.
func NewStripeClient(cfg *config.Config) *StripeClient {
	return &StripeClient{
		SecretKey: cfg.StripeSecretKey,
		APIBase:   strings.TrimRight(cfg.StripeAPIBase, "/"),
		BaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// CreateCheckoutSession opens a one-time-payment checkout session for a game
// and returns its opaque id. The session metadata carries the user and game
// ids; the webhook reconciler has no other way back to our entities. Nothing
// is persisted here: a license is granted only on a confirmed payment event.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, user *supabase.AuthUser, game *models.Game) (string, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return "", errors.New("stripe secret key is not configured")
	}

	currency := strings.TrimSpace(game.Currency)
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.BaseURL+"/success.html?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", c.BaseURL+"/?canceled=1")
	form.Set("customer_email", user.Email)
	form.Set("metadata[user_id]", user.ID)
	form.Set("metadata[game_id]", game.ID)
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][product_data][name]", game.Name)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(game.PriceCents, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("allow_promotion_codes", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Retried initiation requests must not open a second session.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{Service: "stripe", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var session struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("stripe response invalid: %w", err)
	}
	if strings.TrimSpace(session.ID) == "" {
		return "", errors.New("stripe response missing session id")
	}
	return session.ID, nil
}
