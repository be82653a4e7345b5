package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config is the explicit configuration object for the whole service. It is
// loaded and validated once at startup; request handlers never read the
// environment themselves.
type Config struct {
	AppHost string `env:"APP_HOST" envDefault:"localhost"`
	AppPort string `env:"APP_PORT" envDefault:"4000"`

	// BaseURL is the public origin of this deployment, used to build the
	// Stripe success/cancel redirect URLs.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:4000" validate:"required,url"`

	SupabaseURL            string `env:"SUPABASE_URL" validate:"required,url"`
	SupabaseAnonKey        string `env:"SUPABASE_ANON_KEY" validate:"required"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY" validate:"required"`

	StripeSecretKey      string `env:"STRIPE_SECRET_KEY" validate:"required"`
	StripeWebhookSecret  string `env:"STRIPE_WEBHOOK_SECRET" validate:"required"`
	StripePublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`
	StripeAPIBase        string `env:"STRIPE_API_BASE" envDefault:"https://api.stripe.com" validate:"required,url"`

	CacheHost string `env:"CACHE_HOST" envDefault:"localhost"`
	CachePort string `env:"CACHE_PORT" envDefault:"6379"`
}

// Load parses the process environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.SupabaseURL = strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	cfg.StripeAPIBase = strings.TrimRight(strings.TrimSpace(cfg.StripeAPIBase), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags. Kept separate from Load so tests can
// validate hand-built configs.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ListenAddr returns the host:port the fiber app binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}
