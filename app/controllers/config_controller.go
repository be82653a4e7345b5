package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SaturnGames/internal/pkg/config"
)

var publicConfig *config.Config

// InitializeConfigController wires the configuration exposed to the static
// frontend.
func InitializeConfigController(cfg *config.Config) {
	publicConfig = cfg
}

// HandleEnvJS serves the public runtime configuration the static frontend
// bootstraps from. Only publishable values go out here; secrets never do.
func HandleEnvJS(c *fiber.Ctx) error {
	if publicConfig == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Service not configured"})
	}

	clientEnv := map[string]string{
		"SUPABASE_URL":           publicConfig.SupabaseURL,
		"SUPABASE_ANON_KEY":      publicConfig.SupabaseAnonKey,
		"STRIPE_PUBLISHABLE_KEY": publicConfig.StripePublishableKey,
		"BASE_URL":               publicConfig.BaseURL,
	}

	payload, err := json.Marshal(clientEnv)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render config"})
	}

	c.Set(fiber.HeaderContentType, "application/javascript; charset=utf-8")
	return c.SendString("window.__ENV = " + string(payload) + ";")
}
