package main

import (
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/SaturnGames/internal/pkg/cache"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/config"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/constants"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/env"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/router"
)

func main() {
	app, cfg := NewApplication()
	log.Fatal(app.Listen(cfg.ListenAddr()))
}

func NewApplication() (*fiber.App, *config.Config) {
	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	cache.SetupCache(cfg)

	app := fiber.New()

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	metricsAuth := basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "test"),
		},
	})
	app.Get(constants.MetricsRoute, metricsAuth, monitor.New())
	app.Get(constants.MetricsRoute+"/webhooks", metricsAuth, func(c *fiber.Ctx) error {
		totals, err := counter.WebhookEventTotals()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read counters"})
		}
		return c.Status(fiber.StatusOK).JSON(totals)
	})

	// SWAGGER / OPENAPI
	if basePath := findBasePath(); basePath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: basePath + "public/docs/v1/openapi.yml",
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app, cfg)

	return app, cfg
}

// findBasePath locates the project root so the OpenAPI document can be served
// both from the repo root and from cmd/saturngames.
func findBasePath() string {
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/saturngames to project root
		"../../../", // Fallback
	}
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			return path
		}
	}
	log.Print("openapi document not found, swagger UI disabled")
	return ""
}
