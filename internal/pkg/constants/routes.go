package constants

// Static route constants
const (
	WebhookRoute  = "/webhook"
	EnvJSRoute    = "/env.js"
	APIGroupRoute = "/api"
	GamesRoute    = "/games"
	CheckoutRoute = "/create-checkout-session"
	MetricsRoute  = "/metrics"
)
