package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuelReschke/SaturnGames/internal/pkg/config"
)

// ErrNoRows is returned when a filtered read matches nothing.
var ErrNoRows = errors.New("supabase: no rows")

// ErrInvalidToken is returned when the auth API rejects a user access token.
var ErrInvalidToken = errors.New("supabase: invalid access token")

// Client talks to a hosted Supabase backend: GoTrue for resolving user access
// tokens and PostgREST for row access. Reads and writes use the service role
// key; token resolution uses the anon key plus the user's bearer token.
type Client struct {
	BaseURL        string
	AnonKey        string
	ServiceRoleKey string

	HTTPClient *http.Client
}

// NewClient builds a client from the validated service configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL:        strings.TrimRight(cfg.SupabaseURL, "/"),
		AnonKey:        cfg.SupabaseAnonKey,
		ServiceRoleKey: cfg.SupabaseServiceRoleKey,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// restURL builds a PostgREST resource URL with equality filters encoded in
// the field=eq.value convention.
func (c *Client) restURL(table string, query url.Values) string {
	u := c.BaseURL + "/rest/v1/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doREST performs one PostgREST round-trip authenticated with the service
// role key and returns the response body for 2xx responses.
func (c *Client) doREST(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.ServiceRoleKey)
	req.Header.Set("Authorization", "Bearer "+c.ServiceRoleKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supabase %s %s failed: status=%d body=%s", method, rawURL, resp.StatusCode, string(body))
	}
	return body, nil
}
