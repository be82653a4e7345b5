package router

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/SaturnGames/app/controllers"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/cache"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/constants"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIGroupRoute, limiter.New(limiterConfig()))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	api.Get(constants.GamesRoute, controllers.HandleListGames)
	api.Post(constants.CheckoutRoute, controllers.HandleCreateCheckoutSession)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

// limiterConfig backs the rate limiter with redis when the cache is up, so
// limits hold across instances. Without it the limiter falls back to its
// in-memory storage.
func limiterConfig() limiter.Config {
	cacheClient := cache.GetClient()
	if cacheClient == nil {
		return limiter.Config{}
	}

	host := "localhost"
	port := 6379
	if h, p, err := net.SplitHostPort(cacheClient.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	// Database 1 keeps limiter counters out of the cache keyspace.
	storage := redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: cacheClient.Options().Password,
		Database: 1,
		Reset:    false,
	})

	return limiter.Config{Storage: storage}
}
