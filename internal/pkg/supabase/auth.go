package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AuthUser is the identity GoTrue resolves a bearer token to.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// GetUser resolves a user access token against the auth API. Any rejection of
// the token surfaces as ErrInvalidToken; transport and server failures keep
// their own error.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase auth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supabase auth request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var user AuthUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("supabase auth response invalid: %w", err)
	}
	if strings.TrimSpace(user.ID) == "" {
		return nil, errors.New("supabase auth response missing user id")
	}
	return &user, nil
}
