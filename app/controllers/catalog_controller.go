package controllers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SaturnGames/app/models"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/cache"
)

const (
	catalogCacheKey = "games:catalog"
	catalogCacheTTL = 60 * time.Second
)

// CatalogStore is the data-store surface the catalog endpoint reads from.
type CatalogStore interface {
	ListGames(ctx context.Context) ([]models.Game, error)
}

var catalogStore CatalogStore

// InitializeCatalogController wires the data store used by the catalog
// endpoint.
func InitializeCatalogController(store CatalogStore) {
	catalogStore = store
}

// HandleListGames returns the storefront catalog. Results are cached briefly
// so page loads do not hammer the data store.
func HandleListGames(c *fiber.Ctx) error {
	if catalogStore == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Service not configured"})
	}

	if cached, err := cache.Get(catalogCacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).SendString(cached)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	games, err := catalogStore.ListGames(ctx)
	if err != nil {
		log.Printf("catalog: failed to list games: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load games"})
	}

	if payload, err := json.Marshal(games); err == nil {
		_ = cache.Set(catalogCacheKey, string(payload), catalogCacheTTL)
	}

	return c.Status(fiber.StatusOK).JSON(games)
}
