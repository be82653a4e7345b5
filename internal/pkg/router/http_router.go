package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SaturnGames/app/controllers"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/constants"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Processor callback. No limiter in front of this route.
	app.Post(constants.WebhookRoute, controllers.HandleStripeWebhook)

	// Public runtime config for the static frontend.
	app.Get(constants.EnvJSRoute, controllers.HandleEnvJS)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
