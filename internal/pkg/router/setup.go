package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SaturnGames/app/controllers"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/cache"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/config"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/payments"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/supabase"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires the service graph and registers all routes. The webhook
// route is installed by HttpRouter outside any rate limiter: processor
// redeliveries must always get through.
func InstallRouter(app *fiber.App, cfg *config.Config) {
	store := supabase.NewClient(cfg)
	stripe := payments.NewStripeClient(cfg)
	svc := payments.NewService(store, stripe, lockerOrNil())

	controllers.InitializeCheckoutController(svc)
	controllers.InitializeWebhookController(svc, cfg.StripeWebhookSecret)
	controllers.InitializeCatalogController(store)
	controllers.InitializeConfigController(cfg)

	setup(app, NewHttpRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

// lockerOrNil keeps the service usable when no cache backend is configured.
func lockerOrNil() payments.Locker {
	if l := cache.NewLocker(); l != nil {
		return l
	}
	return nil
}
