package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SaturnGames/app/models"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/config"
)

type stubCatalog struct {
	games []models.Game
	err   error
}

func (s *stubCatalog) ListGames(ctx context.Context) ([]models.Game, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.games, nil
}

func TestHandleListGames(t *testing.T) {
	InitializeCatalogController(&stubCatalog{games: []models.Game{
		{ID: "game-1", Name: "Saturn Racer", PriceCents: 1999, Currency: "usd"},
		{ID: "game-2", Name: "Moon Miner", PriceCents: 999, Currency: "usd"},
	}})

	app := fiber.New()
	app.Get("/api/games", HandleListGames)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/games", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var games []models.Game
	require.NoError(t, json.Unmarshal(raw, &games))
	require.Len(t, games, 2)
	assert.Equal(t, "Saturn Racer", games[0].Name)
}

func TestHandleListGames_StoreFailure(t *testing.T) {
	InitializeCatalogController(&stubCatalog{err: errors.New("store down")})

	app := fiber.New()
	app.Get("/api/games", HandleListGames)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/games", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandleEnvJS(t *testing.T) {
	InitializeConfigController(&config.Config{
		BaseURL:              "https://saturngames.example",
		SupabaseURL:          "https://abc.supabase.co",
		SupabaseAnonKey:      "anon-key",
		StripePublishableKey: "pk_test_123",
		// Secrets must never leak into the client payload.
		SupabaseServiceRoleKey: "service-secret",
		StripeSecretKey:        "sk_secret",
		StripeWebhookSecret:    "whsec_secret",
	})

	app := fiber.New()
	app.Get("/env.js", HandleEnvJS)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/env.js", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/javascript")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "window.__ENV = ")
	assert.Contains(t, body, "pk_test_123")
	assert.Contains(t, body, "anon-key")
	assert.NotContains(t, body, "service-secret")
	assert.NotContains(t, body, "sk_secret")
	assert.NotContains(t, body, "whsec_secret")
}
